package actor

import (
	"context"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// reference is the concrete ActorRef implementation: a weak, clonable handle
// to a Cell (spec §4.3). It never owns the cell; once the cell terminates,
// every operation on a reference degrades to target-gone semantics. Cloning
// a reference is just copying this small struct, which is O(1) per spec.
type reference[M Message, R any] struct {
	cell *Cell[M, R]
}

var _ ActorRef[Message, any] = (*reference[Message, any])(nil)

// ID returns the cell's identifier.
func (r *reference[M, R]) ID() string {
	return r.cell.key.id
}

// Exists probes the weak pointer: false once the cell has terminated.
func (r *reference[M, R]) Exists() bool {
	return !r.cell.isTerminated()
}

// Tell sends a message without waiting for a response (spec §4.3's send).
// The current sender is taken from ambient context, falling back to a null
// reference when called outside a handler.
func (r *reference[M, R]) Tell(ctx context.Context, msg M) {
	if r.cell.isTerminated() {
		log.DebugS(ctx, "tell dropped, target gone",
			"cell_id", r.cell.key.String(),
			"msg_type", msg.MessageType())
		return
	}

	env := envelope[M, R]{
		message:   msg,
		callerCtx: ctx,
		sender:    Self(ctx),
	}

	if !r.cell.enqueue(env) {
		log.DebugS(ctx, "tell dropped, enqueue failed",
			"cell_id", r.cell.key.String(),
			"msg_type", msg.MessageType())
	}
}

// Ask sends a message and returns a Future for the response (spec §4.3's
// request). If the target is already gone, the future resolves immediately
// with ErrTargetGone.
func (r *reference[M, R]) Ask(ctx context.Context, msg M) Future[R] {
	promise := NewPromise[R]()

	if r.cell.isTerminated() {
		promise.Complete(fn.Err[R](ErrTargetGone))
		return promise.Future()
	}

	env := envelope[M, R]{
		message:   msg,
		promise:   promise,
		callerCtx: ctx,
		sender:    Self(ctx),
	}

	if !r.cell.enqueue(env) {
		promise.Complete(fn.Err[R](ErrTargetGone))
	}

	return promise.Future()
}

// Stop enqueues a Stop system message and returns a Future that resolves
// once the cell has fully terminated (spec §4.3's stop). Calling Stop on an
// already-terminated cell resolves the returned future immediately.
func (r *reference[M, R]) Stop(ctx context.Context) Future[struct{}] {
	stopSink := NewPromise[struct{}]()

	env := envelope[M, R]{
		system:    true,
		stopSink:  stopSink,
		callerCtx: ctx,
	}

	if !r.cell.enqueueSystem(env) {
		// Already terminated (or mailbox already closed): resolve
		// immediately rather than leaving the caller hanging.
		stopSink.Complete(fn.Ok(struct{}{}))
	}

	return stopSink.Future()
}
