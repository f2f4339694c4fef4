package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kphelps/akio/internal/baselib/actor"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/spf13/cobra"
)

// Ball is volleyed back and forth between two cells in the ping-pong
// scenario, grounded on akio/src/bin/ping_pong.rs's PingActor/PongActor
// exchanging Ping/Pong messages by ambient sender.
type Ball struct {
	actor.BaseMessage
	Label string
	Count int
}

// MessageType implements actor.Message.
func (Ball) MessageType() string { return "pingpong.ball" }

// rallyBehavior bounces a Ball back to its own peer, decrementing Count,
// until it reaches zero.
type rallyBehavior struct {
	name string
	peer actor.TellOnlyRef[Ball]
	done chan struct{}
}

// Receive implements actor.ActorBehavior.
func (b *rallyBehavior) Receive(
	ctx context.Context, msg Ball,
) fn.Result[struct{}] {
	fmt.Printf("%s: %s (count=%d)\n", b.name, msg.Label, msg.Count)

	if msg.Count <= 0 {
		close(b.done)
		return fn.Ok(struct{}{})
	}

	b.peer.Tell(ctx, Ball{Label: msg.Label, Count: msg.Count - 1})
	return fn.Ok(struct{}{})
}

var pingPongRounds int

var pingPongCmd = &cobra.Command{
	Use:   "pingpong",
	Short: "Bounce a message between two cells a fixed number of times",
	RunE:  runPingPong,
}

func init() {
	pingPongCmd.Flags().IntVar(
		&pingPongRounds, "rounds", 5, "number of round trips",
	)
}

func runPingPong(cmd *cobra.Command, args []string) error {
	sys := newSystem()
	ctx := context.Background()

	pongDone := make(chan struct{})
	pongBehavior := &rallyBehavior{name: "pong", done: pongDone}
	pongRef, err := actor.Spawn[Ball, struct{}](
		sys, "pingpong", uuid.NewString(), pongBehavior,
	)
	if err != nil {
		return err
	}

	pingDone := make(chan struct{})
	pingBehavior := &rallyBehavior{name: "ping", peer: pongRef, done: pingDone}
	pingRef, err := actor.Spawn[Ball, struct{}](
		sys, "pingpong", uuid.NewString(), pingBehavior,
	)
	if err != nil {
		return err
	}
	pongBehavior.peer = pingRef

	pingRef.Tell(ctx, Ball{Label: "ping", Count: pingPongRounds * 2})

	select {
	case <-pingDone:
	case <-pongDone:
	case <-time.After(10 * time.Second):
		return fmt.Errorf("ping-pong scenario timed out")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return sys.Shutdown(shutdownCtx)
}
