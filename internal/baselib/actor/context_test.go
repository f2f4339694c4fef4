package actor

import (
	"context"
	"testing"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

// TestSelfAndSenderOutsideHandlerAreNull verifies Self/Sender degrade to a
// harmless null reference when called outside any handler invocation.
func TestSelfAndSenderOutsideHandlerAreNull(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	require.Equal(t, "", Self(ctx).ID())
	require.False(t, Self(ctx).Exists())

	require.Equal(t, "", Sender(ctx).ID())
	require.False(t, Sender(ctx).Exists())
}

// TestSystemFromContextOutsideWorkerIsAbsent verifies SystemFromContext and
// SchedulerFromContext report absence for a bare context.
func TestSystemFromContextOutsideWorkerIsAbsent(t *testing.T) {
	t.Parallel()

	_, ok := SystemFromContext(context.Background())
	require.False(t, ok)

	_, ok = SchedulerFromContext(context.Background())
	require.False(t, ok)
}

// TestHandlerSeesSelfAndSender verifies that within a running cell's
// handler, Self resolves to the cell's own reference and Sender resolves to
// whoever sent the message, per the per-invocation ambient layer that
// withInvocationContext attaches around each handler invocation.
func TestHandlerSeesSelfAndSender(t *testing.T) {
	t.Parallel()

	var observedSelf, observedSender string

	target := NewCell(CellConfig[testMessage, int]{
		ActorType: "test",
		ID:        "target",
		Behavior: NewFunctionBehavior(
			func(ctx context.Context, msg testMessage) fn.Result[int] {
				observedSelf = Self(ctx).ID()
				observedSender = Sender(ctx).ID()
				return fn.Ok(msg.value)
			},
		),
	})

	senderCell := NewCell(CellConfig[testMessage, int]{
		ActorType: "test", ID: "sender", Behavior: echoBehavior{},
	})

	target.enqueue(envelope[testMessage, int]{
		message: testMessage{value: 1},
		sender:  senderCell.Ref(),
	})
	target.RunBatch(context.Background(), 10)

	require.Equal(t, "target", observedSelf)
	require.Equal(t, "sender", observedSender)
}

// TestExecuteRunsOffCell verifies Execute runs fn on its own goroutine and
// resolves the returned future with its result.
func TestExecuteRunsOffCell(t *testing.T) {
	t.Parallel()

	future := Execute(context.Background(), func() fn.Result[int] {
		return fn.Ok(99)
	})

	val, err := future.Await(context.Background()).Unpack()
	require.NoError(t, err)
	require.Equal(t, 99, val)
}
