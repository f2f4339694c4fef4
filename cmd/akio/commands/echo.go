package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kphelps/akio/internal/baselib/actor"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/spf13/cobra"
)

// EchoMsg asks an echo cell to uppercase some text.
type EchoMsg struct {
	actor.BaseMessage
	Text string
}

// MessageType implements actor.Message.
func (EchoMsg) MessageType() string { return "echo.request" }

var echoCmd = &cobra.Command{
	Use:   "echo [text]",
	Short: "Ask a single cell to uppercase the given text",
	Args:  cobra.ExactArgs(1),
	RunE:  runEcho,
}

func runEcho(cmd *cobra.Command, args []string) error {
	sys := newSystem()
	ctx := context.Background()

	behavior := actor.NewFunctionBehavior(
		func(ctx context.Context, msg EchoMsg) fn.Result[string] {
			return fn.Ok(strings.ToUpper(msg.Text))
		},
	)

	ref, err := actor.Spawn[EchoMsg, string](
		sys, "echo", uuid.NewString(), behavior,
	)
	if err != nil {
		return err
	}

	askCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := ref.Ask(askCtx, EchoMsg{Text: args[0]}).Await(askCtx).Unpack()
	if err != nil {
		return err
	}
	fmt.Println(result)

	shutdownCtx, cancel2 := context.WithTimeout(ctx, 5*time.Second)
	defer cancel2()
	return sys.Shutdown(shutdownCtx)
}
