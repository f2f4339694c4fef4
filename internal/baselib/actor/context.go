package actor

import (
	"context"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// Ambient state lives at two layers (spec §4.7). Go has no direct analogue
// of Rust's thread_local!/task_local! macros (see akio/src/context.rs); the
// idiomatic Go realization is to carry both layers as context.Context
// values, composed: the worker-scoped layer is attached once when a worker's
// event loop starts, and the per-invocation layer is attached fresh by the
// cell before each Receive call, overriding nothing from the worker layer.

type workerCtxKey struct{}
type invocationCtxKey struct{}

// workerAmbient holds the thread-local-equivalent layer: the scheduler and
// system handles visible to any code running on a given worker.
type workerAmbient struct {
	scheduler *Scheduler
	system    *System
}

// invocationAmbient holds the task-local-equivalent layer: the identity of
// the cell currently executing a handler and the sender of the message being
// processed. It is cleared (by simply not propagating it) at the end of each
// Receive call, so it never leaks into unrelated work scheduled from within a
// handler.
type invocationAmbient struct {
	self   BaseActorRef
	sender BaseActorRef
}

// withWorkerContext attaches the worker-scoped ambient layer.
func withWorkerContext(
	ctx context.Context, sched *Scheduler, sys *System,
) context.Context {
	return context.WithValue(ctx, workerCtxKey{}, &workerAmbient{
		scheduler: sched,
		system:    sys,
	})
}

// withInvocationContext attaches the per-invocation ambient layer for the
// duration of a single handler call.
func withInvocationContext(
	ctx context.Context, self, sender BaseActorRef,
) context.Context {
	return context.WithValue(ctx, invocationCtxKey{}, &invocationAmbient{
		self:   self,
		sender: sender,
	})
}

// nullRef is returned by Sender/Self when no ambient context is present
// (i.e. the call happens outside a handler). It exists only for safe
// logging and comparisons; Tell/Ask on it are not meaningful since it is
// never registered in any registry.
type nullRef struct{}

func (nullRef) ID() string   { return "" }
func (nullRef) Exists() bool { return false }

var _ BaseActorRef = nullRef{}

// SystemFromContext returns the System associated with the current ambient
// context, or nil and false if called outside any worker.
func SystemFromContext(ctx context.Context) (*System, bool) {
	if w, ok := ctx.Value(workerCtxKey{}).(*workerAmbient); ok && w.system != nil {
		return w.system, true
	}
	return nil, false
}

// SchedulerFromContext returns the Scheduler running the current worker, or
// false if called outside any worker.
func SchedulerFromContext(ctx context.Context) (*Scheduler, bool) {
	if w, ok := ctx.Value(workerCtxKey{}).(*workerAmbient); ok && w.scheduler != nil {
		return w.scheduler, true
	}
	return nil, false
}

// Self returns the currently executing cell's own reference, or a null
// reference if called outside a handler.
func Self(ctx context.Context) BaseActorRef {
	if i, ok := ctx.Value(invocationCtxKey{}).(*invocationAmbient); ok && i.self != nil {
		return i.self
	}
	return nullRef{}
}

// Sender returns the sender of the message currently being handled, or a
// null reference if called outside a handler or if the message had no
// sender bound.
func Sender(ctx context.Context) BaseActorRef {
	if i, ok := ctx.Value(invocationCtxKey{}).(*invocationAmbient); ok && i.sender != nil {
		return i.sender
	}
	return nullRef{}
}

// Execute schedules fn as a deferred task and returns a Future for its
// result, per spec §4.7's execute(future) entry point. It runs fn on its own
// goroutine rather than occupying the calling cell, matching spec §5's
// suspension-point model: the cell that requested the work remains Idle and
// free to process further messages while fn runs.
func Execute[T any](ctx context.Context, fn func() fn.Result[T]) Future[T] {
	promise := NewPromise[T]()

	go func() {
		promise.Complete(fn())
	}()

	return promise.Future()
}
