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

// ChainMsg drives the telephone-chain scenario, grounded on
// akio/src/bin/child_spawner.rs's TelephoneActor: a "spawn" message grows a
// chain of children one link at a time, and a "message" is printed and
// forwarded down the whole chain.
type ChainMsg struct {
	actor.BaseMessage
	Kind  string
	Depth uint64
	Text  string
}

// MessageType implements actor.Message.
func (ChainMsg) MessageType() string { return "telephone.chain" }

// linkBehavior holds the single child spawned at this link, if any.
type linkBehavior struct {
	sys   *actor.System
	name  string
	child actor.TellOnlyRef[ChainMsg]
}

// Receive implements actor.ActorBehavior.
func (b *linkBehavior) Receive(
	ctx context.Context, msg ChainMsg,
) fn.Result[struct{}] {
	switch msg.Kind {
	case "spawn":
		if msg.Depth == 0 {
			return fn.Ok(struct{}{})
		}
		childName := fmt.Sprintf("%s.%d", b.name, msg.Depth)
		child := actor.MustSpawn[ChainMsg, struct{}](
			b.sys, "telephone", uuid.NewString(),
			&linkBehavior{sys: b.sys, name: childName},
		)
		b.child = child
		child.Tell(ctx, ChainMsg{Kind: "spawn", Depth: msg.Depth - 1})

	case "message":
		fmt.Printf("%s: %s\n", b.name, msg.Text)
		if b.child != nil {
			b.child.Tell(ctx, msg)
		}
	}

	return fn.Ok(struct{}{})
}

var telephoneDepth uint64

var telephoneCmd = &cobra.Command{
	Use:   "telephone",
	Short: "Build a chain of cells and pass a message down the line",
	RunE:  runTelephone,
}

func init() {
	telephoneCmd.Flags().Uint64Var(
		&telephoneDepth, "depth", 10, "length of the chain",
	)
}

func runTelephone(cmd *cobra.Command, args []string) error {
	sys := newSystem()
	ctx := context.Background()

	root := actor.MustSpawn[ChainMsg, struct{}](
		sys, "telephone", uuid.NewString(),
		&linkBehavior{sys: sys, name: "link.0"},
	)

	root.Tell(ctx, ChainMsg{Kind: "spawn", Depth: telephoneDepth})

	// The chain grows asynchronously; give it a moment to finish spawning
	// before the message race down the line.
	time.Sleep(100 * time.Millisecond)

	root.Tell(ctx, ChainMsg{Kind: "message", Text: "Yo"})

	time.Sleep(100 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return sys.Shutdown(shutdownCtx)
}
