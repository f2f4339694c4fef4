package actor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

// pingPongBall is the message bounced back and forth in the ping-pong
// scenario; Count decrements with every hop.
type pingPongBall struct {
	BaseMessage
	Count int
}

func (b pingPongBall) MessageType() string { return "scenario.ball" }

// pingPongBehavior bounces the ball back to whichever reference last sent
// it, decrementing Count, and reports each hop through rallies.
type pingPongBehavior struct {
	rallies *atomic.Int64
}

func (b pingPongBehavior) Receive(
	ctx context.Context, msg pingPongBall,
) fn.Result[struct{}] {
	b.rallies.Add(1)

	if msg.Count <= 0 {
		return fn.Ok(struct{}{})
	}

	peer, ok := Sender(ctx).(TellOnlyRef[pingPongBall])
	if ok {
		peer.Tell(ctx, pingPongBall{Count: msg.Count - 1})
	}

	return fn.Ok(struct{}{})
}

// TestScenarioPingPong verifies spec §8's literal ping-pong scenario: two
// actors exchange 1,000 messages each way, for 2,000 rallies total after
// quiescence.
func TestScenarioPingPong(t *testing.T) {
	t.Parallel()

	sys := newTestSystem(t)

	var rallies atomic.Int64
	behavior := pingPongBehavior{rallies: &rallies}

	ping := MustSpawn[pingPongBall, struct{}](sys, "rally", "ping", behavior)
	pong := MustSpawn[pingPongBall, struct{}](sys, "rally", "pong", behavior)

	sendCtx := withInvocationContext(context.Background(), ping, nullRef{})
	pong.Tell(sendCtx, pingPongBall{Count: 1999})

	require.Eventually(t, func() bool {
		return rallies.Load() == 2000
	}, 5*time.Second, time.Millisecond)
}

// echoRequest is the message used by the echo scenario.
type echoRequest struct {
	BaseMessage
	Text string
}

func (r echoRequest) MessageType() string { return "scenario.echo" }

// TestScenarioEcho verifies spec §8's echo scenario: actor E handling
// Echo(s) -> s, with request(Echo("hi")) resolving to "hi".
func TestScenarioEcho(t *testing.T) {
	t.Parallel()

	sys := newTestSystem(t)

	echoer := MustSpawn[echoRequest, string](sys, "echo", "e", NewFunctionBehavior(
		func(ctx context.Context, msg echoRequest) fn.Result[string] {
			return fn.Ok(msg.Text)
		},
	))

	result, err := echoer.Ask(context.Background(), echoRequest{Text: "hi"}).
		Await(context.Background()).Unpack()
	require.NoError(t, err)
	require.Equal(t, "hi", result)
}

// skynetPoke is the message used by the skynet tree-spawning scenario.
type skynetPoke struct {
	BaseMessage
	N uint64
}

func (p skynetPoke) MessageType() string { return "scenario.poke" }

// skynetResult carries a leaf or subtree sum back to whoever asked.
type skynetResult struct {
	BaseMessage
	Sum uint64
}

func (r skynetResult) MessageType() string { return "scenario.skynet-result" }

const scenarioSkynetLeaf = 100000

// skynetBehavior implements spec §8's skynet scenario: on Poke(n), either
// reply with n (n >= leaf threshold) or spawn 10 children with ids
// 10n+1..10n+10, ask each, sum the results, and add n. The recursive asking
// runs off the cell via Execute so a deep chain of pending asks never
// starves the fixed worker pool; the final reply goes to whichever sender
// the ask-bridge supplied, mirroring the production skynet command.
type skynetBehavior struct {
	sys *System
}

func (b *skynetBehavior) Receive(
	ctx context.Context, msg skynetPoke,
) fn.Result[struct{}] {
	sender, ok := Sender(ctx).(TellOnlyRef[skynetResult])
	if !ok {
		return fn.Ok(struct{}{})
	}

	if msg.N >= scenarioSkynetLeaf {
		sender.Tell(ctx, skynetResult{Sum: msg.N})
		return fn.Ok(struct{}{})
	}

	Execute(ctx, func() fn.Result[struct{}] {
		futures := make([]Future[skynetResult], 10)
		for i := 0; i < 10; i++ {
			childID := msg.N*10 + uint64(i) + 1
			child := MustSpawn[skynetPoke, struct{}](
				b.sys, "skynet-scenario", uuid.NewString(),
				&skynetBehavior{sys: b.sys},
			)
			futures[i] = Ask[skynetPoke, skynetResult](
				context.Background(), b.sys, child, skynetPoke{N: childID},
			)
		}

		var sum uint64
		for _, f := range futures {
			result, err := f.Await(context.Background()).Unpack()
			if err == nil {
				sum += result.Sum
			}
		}
		sum += msg.N

		sender.Tell(context.Background(), skynetResult{Sum: sum})
		return fn.Ok(struct{}{})
	})

	return fn.Ok(struct{}{})
}

// TestScenarioSkynet verifies the skynet-10^5 fan-out/fan-in scenario:
// Poke(0) resolves to a raw fan-in total of 500,000,500,000, matching
// akio/src/bin/skynet.rs's SkynetActor::poke at the same leaf threshold.
// That program's main() reports val-1,000,000 (499,999,500,000); see
// DESIGN.md's Open Question resolutions for the full reconciliation.
func TestScenarioSkynet(t *testing.T) {
	t.Parallel()

	sys := newTestSystem(t)

	root := MustSpawn[skynetPoke, struct{}](
		sys, "skynet-scenario", "root", &skynetBehavior{sys: sys},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := Ask[skynetPoke, skynetResult](ctx, sys, root, skynetPoke{N: 0}).
		Await(ctx).Unpack()
	require.NoError(t, err)
	require.Equal(t, uint64(500000500000), result.Sum)
	require.Equal(t, uint64(499999500000), result.Sum-1_000_000)
}

// telephoneMsg is the message broadcast down the telephone-chain scenario.
type telephoneMsg struct {
	BaseMessage
	Text string
}

func (m telephoneMsg) MessageType() string { return "scenario.telephone" }

// telephoneBehavior forwards the same message to at most one child and
// counts how many times it has observed a broadcast.
type telephoneBehavior struct {
	sys      *System
	maxDepth int
	depth    int
	counter  *atomic.Int64
	mu       *sync.Mutex
	child    TellOnlyRef[telephoneMsg]
}

func (b *telephoneBehavior) Receive(
	ctx context.Context, msg telephoneMsg,
) fn.Result[struct{}] {
	b.counter.Add(1)

	b.mu.Lock()
	child := b.child
	if child == nil && b.depth < b.maxDepth {
		child = MustSpawn[telephoneMsg, struct{}](
			b.sys, "telephone-scenario",
			uuid.NewString(), &telephoneBehavior{
				sys: b.sys, maxDepth: b.maxDepth,
				depth: b.depth + 1, counter: b.counter, mu: b.mu,
			},
		)
		b.child = child
	}
	b.mu.Unlock()

	if child != nil {
		child.Tell(ctx, msg)
	}

	return fn.Ok(struct{}{})
}

// TestScenarioTelephoneChain verifies spec §8's telephone-chain scenario:
// broadcasting Message("yo") down a root-spawns-child-spawns-child chain
// reaches every descendant exactly once.
func TestScenarioTelephoneChain(t *testing.T) {
	t.Parallel()

	sys := newTestSystem(t)

	var counter atomic.Int64
	var mu sync.Mutex

	const depth = 10
	root := MustSpawn[telephoneMsg, struct{}](
		sys, "telephone-scenario", "root", &telephoneBehavior{
			sys: sys, maxDepth: depth, counter: &counter, mu: &mu,
		},
	)

	root.Tell(context.Background(), telephoneMsg{Text: "yo"})

	require.Eventually(t, func() bool {
		return counter.Load() == depth+1
	}, 5*time.Second, time.Millisecond)
}

// TestScenarioStopWithPending verifies spec §8's stop-with-pending scenario:
// an actor receives 5 messages then Stop; the handler executes exactly those
// 5 before termination, and on-stop runs exactly once.
func TestScenarioStopWithPending(t *testing.T) {
	t.Parallel()

	sys := newTestSystem(t)

	var mu sync.Mutex
	var processed []int
	var stopCount atomic.Int64

	behavior := NewStartStopBehavior(
		func(ctx context.Context, msg testMessage) fn.Result[int] {
			mu.Lock()
			processed = append(processed, msg.value)
			mu.Unlock()
			return fn.Ok(msg.value)
		},
		nil,
		func(ctx context.Context) error {
			stopCount.Add(1)
			return nil
		},
	)

	ref := MustSpawn[testMessage, int](sys, "stop-scenario", "five", behavior)

	for i := 0; i < 5; i++ {
		ref.Tell(context.Background(), testMessage{value: i})
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ref.Stop(stopCtx).Await(stopCtx)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{0, 1, 2, 3, 4}, processed)
	require.Equal(t, int64(1), stopCount.Load())
}

// TestScenarioDeadReferenceSend verifies spec §8's dead-reference-send
// scenario: a request against a reference whose cell has already stopped
// resolves with target-gone.
func TestScenarioDeadReferenceSend(t *testing.T) {
	t.Parallel()

	sys := newTestSystem(t)

	ref := MustSpawn[testMessage, int](sys, "dead-scenario", "gone", echoBehavior{})

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ref.Stop(stopCtx).Await(stopCtx)

	result := ref.Ask(context.Background(), testMessage{value: 1}).
		Await(context.Background())
	require.True(t, result.IsErr())

	_, err := result.Unpack()
	require.ErrorIs(t, err, ErrTargetGone)
}
