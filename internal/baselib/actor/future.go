package actor

import (
	"context"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// futureImpl is the concrete Future implementation backing promiseImpl. It is
// completed at most once: the done channel is closed exactly once by
// Complete, and every subsequent read of result is safe without further
// synchronization because the close happens-before any receive on done.
type futureImpl[T any] struct {
	mu       sync.Mutex
	once     sync.Once
	done     chan struct{}
	result   fn.Result[T]
	complete bool
}

func newFutureImpl[T any]() *futureImpl[T] {
	return &futureImpl[T]{done: make(chan struct{})}
}

// Await blocks until the result is available or ctx is cancelled.
func (f *futureImpl[T]) Await(ctx context.Context) fn.Result[T] {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.result

	case <-ctx.Done():
		return fn.Err[T](ctx.Err())
	}
}

// ThenApply returns a new Future that resolves to fn(T) once the original
// resolves, or to ctx's error if ctx is cancelled first.
func (f *futureImpl[T]) ThenApply(
	ctx context.Context, apply func(T) T,
) Future[T] {
	next := newFutureImpl[T]()

	go func() {
		result := f.Await(ctx)
		result.WhenOk(func(v T) {
			next.complete2(fn.Ok(apply(v)))
		})
		result.WhenErr(func(err error) {
			next.complete2(fn.Err[T](err))
		})
	}()

	return next
}

// OnComplete registers fn to run when the future resolves, or immediately
// with ctx's error if ctx is cancelled before resolution.
func (f *futureImpl[T]) OnComplete(ctx context.Context, cb func(fn.Result[T])) {
	go func() {
		cb(f.Await(ctx))
	}()
}

// complete2 sets the result exactly once; later calls are no-ops. Named to
// avoid colliding with promiseImpl.Complete, which this backs.
func (f *futureImpl[T]) complete2(result fn.Result[T]) bool {
	set := false
	f.once.Do(func() {
		f.mu.Lock()
		f.result = result
		f.complete = true
		f.mu.Unlock()
		close(f.done)
		set = true
	})
	return set
}

// promiseImpl is the concrete Promise implementation. It wraps a futureImpl
// and exposes the write side.
type promiseImpl[T any] struct {
	future *futureImpl[T]
}

// NewPromise creates a fresh, uncompleted Promise/Future pair.
func NewPromise[T any]() Promise[T] {
	return &promiseImpl[T]{future: newFutureImpl[T]()}
}

func (p *promiseImpl[T]) Future() Future[T] {
	return p.future
}

func (p *promiseImpl[T]) Complete(result fn.Result[T]) bool {
	return p.future.complete2(result)
}
