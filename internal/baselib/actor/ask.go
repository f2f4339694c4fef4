package actor

import (
	"context"

	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// NewAskBridge spawns the ephemeral cell described in spec §4.4: a
// throw-away actor of message type Reply that captures exactly one message,
// completes the returned future with it, then stops itself. Any further
// message delivered to the bridge (a duplicate reply, a retry) is dropped
// once the cell has terminated, exactly like any other reference to a gone
// cell.
//
// The bridge is rooted in sys, not in the caller, per akio/src/ask_actor.rs:
// its lifetime is governed by the scheduler, not by whichever cell happens
// to initiate the ask.
func NewAskBridge[Reply Message](sys *System) (TellOnlyRef[Reply], Future[Reply]) {
	promise := NewPromise[Reply]()

	var bridgeRef ActorRef[Reply, struct{}]
	behavior := NewFunctionBehavior(func(
		ctx context.Context, msg Reply,
	) fn.Result[struct{}] {
		promise.Complete(fn.Ok(msg))
		bridgeRef.Stop(context.Background())
		return fn.Ok(struct{}{})
	})

	bridgeRef = MustSpawn[Reply, struct{}](
		sys, "ask-bridge", uuid.NewString(), behavior,
	)

	return bridgeRef, promise.Future()
}

// Ask performs a request against target using the ask-bridge pattern: it
// sends req to target with the bridge as the ambient sender, so a handler
// written to "reply to the current sender" (rather than to fulfill an
// ActorRef.Ask promise directly) can still participate in a request/response
// exchange (spec §4.4).
func Ask[Req Message, Reply Message](
	ctx context.Context, sys *System, target TellOnlyRef[Req], req Req,
) Future[Reply] {
	bridgeRef, future := NewAskBridge[Reply](sys)

	sendCtx := withInvocationContext(ctx, bridgeRef, nullRef{})
	target.Tell(sendCtx, req)

	return future
}
