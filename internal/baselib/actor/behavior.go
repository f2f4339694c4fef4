package actor

import (
	"context"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// FunctionBehavior adapts a plain function into an ActorBehavior, avoiding
// the ceremony of declaring a named type for simple or test actors.
type FunctionBehavior[M Message, R any] struct {
	fn func(ctx context.Context, msg M) fn.Result[R]
}

// NewFunctionBehavior wraps fn as an ActorBehavior.
func NewFunctionBehavior[M Message, R any](
	receive func(ctx context.Context, msg M) fn.Result[R],
) ActorBehavior[M, R] {
	return &FunctionBehavior[M, R]{fn: receive}
}

// Receive implements ActorBehavior.
func (f *FunctionBehavior[M, R]) Receive(
	ctx context.Context, msg M,
) fn.Result[R] {
	return f.fn(ctx, msg)
}

// StartStopBehavior wraps a FunctionBehavior-style receive function together
// with optional OnStart/OnStop hooks, for tests and examples that want
// lifecycle callbacks without declaring a dedicated type.
type StartStopBehavior[M Message, R any] struct {
	*FunctionBehavior[M, R]

	start func(ctx context.Context) error
	stop  func(ctx context.Context) error
}

// NewStartStopBehavior wraps receive, start and stop into a single
// ActorBehavior that also implements Starter and Stoppable. Either hook may
// be nil.
func NewStartStopBehavior[M Message, R any](
	receive func(ctx context.Context, msg M) fn.Result[R],
	start func(ctx context.Context) error,
	stop func(ctx context.Context) error,
) ActorBehavior[M, R] {
	return &StartStopBehavior[M, R]{
		FunctionBehavior: &FunctionBehavior[M, R]{fn: receive},
		start:            start,
		stop:             stop,
	}
}

// OnStart implements Starter.
func (s *StartStopBehavior[M, R]) OnStart(ctx context.Context) error {
	if s.start == nil {
		return nil
	}
	return s.start(ctx)
}

// OnStop implements Stoppable.
func (s *StartStopBehavior[M, R]) OnStop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	return s.stop(ctx)
}
