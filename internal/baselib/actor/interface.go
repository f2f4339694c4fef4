package actor

import (
	"context"
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// ErrTargetGone indicates that a reference's weak pointer could not be
// upgraded because the target cell has already been destroyed.
var ErrTargetGone = fmt.Errorf("actor: target gone")

// ErrAlreadyRegistered indicates a spawn was attempted with an identifier
// already in use for that actor type. Per spec this is a programmer error,
// not a recoverable condition to silently paper over with an overwrite.
var ErrAlreadyRegistered = fmt.Errorf("actor: identifier already registered")

// ErrStoppedMidRequest indicates that a cell received Stop while one or more
// requests were still pending a response; those response-sinks are dropped.
var ErrStoppedMidRequest = fmt.Errorf("actor: cell stopped with request pending")

// ErrServiceKeyTypeMismatch indicates that a registration attempt failed
// because the service key name is already registered with a different message
// or response type.
var ErrServiceKeyTypeMismatch = fmt.Errorf("service key type mismatch")

// BaseMessage is a helper struct that can be embedded in message types defined
// outside the actor package to satisfy the Message interface's unexported
// messageMarker method.
type BaseMessage struct{}

// messageMarker implements the unexported method for the Message interface,
// allowing types that embed BaseMessage to satisfy the Message interface.
func (BaseMessage) messageMarker() {}

// Message is a sealed interface for actor messages. Actors will receive
// messages conforming to this interface. The interface is "sealed" by the
// unexported messageMarker method, meaning only types that can satisfy it
// (e.g., by embedding BaseMessage or being in the same package) can be Messages.
type Message interface {
	// messageMarker is a private method that makes this a sealed interface
	// (see BaseMessage for embedding).
	messageMarker()

	// MessageType returns the type name of the message for
	// routing/filtering.
	MessageType() string
}

// PriorityMessage is an extension of the Message interface for messages that
// carry a priority level. The core mailbox does not use this (system and user
// messages share one FIFO, see spec §4.1); it exists for callers layering a
// priority lane on top.
type PriorityMessage interface {
	Message

	// Priority returns the processing priority of this message (higher =
	// more important).
	Priority() int
}

// Future represents the result of an asynchronous computation. It allows
// consumers to wait for the result (Await), apply transformations upon
// completion (ThenApply), or register a callback to be executed when the
// result is available (OnComplete).
type Future[T any] interface {
	// Await blocks until the result is available or the context is
	// cancelled, then returns it.
	Await(ctx context.Context) fn.Result[T]

	// ThenApply registers a function to transform the result of a future.
	// The original future is not modified, a new instance of the future is
	// returned. If the passed context is cancelled while waiting for the
	// original future to complete, the new future will complete with the
	// context's error.
	ThenApply(ctx context.Context, fn func(T) T) Future[T]

	// OnComplete registers a function to be called when the result of the
	// future is ready. If the passed context is cancelled before the future
	// completes, the callback function will be invoked with the context's
	// error.
	OnComplete(ctx context.Context, fn func(fn.Result[T]))
}

// Promise is an interface that allows for the completion of an associated
// Future. It provides a way to set the result of an asynchronous operation.
// The producer of an asynchronous result uses a Promise to set the outcome,
// while consumers use the associated Future to retrieve it.
type Promise[T any] interface {
	// Future returns the Future interface associated with this Promise.
	// Consumers can use this to Await the result or register callbacks.
	Future() Future[T]

	// Complete attempts to set the result of the future. It returns true if
	// this call successfully set the result (i.e., it was the first to
	// complete it), and false if the future had already been completed.
	Complete(result fn.Result[T]) bool
}

// BaseActorRef is a non-generic base interface for all actor references. This
// enables stronger typing in data structures that store heterogeneous actor
// references, such as the Receptionist's registration map. All ActorRef
// instances implement this interface.
type BaseActorRef interface {
	// ID returns the unique identifier for this actor.
	ID() string

	// Exists reports whether the underlying cell is still alive. A
	// reference can outlive its cell; once the cell terminates, Exists
	// returns false for the rest of this reference's life.
	Exists() bool
}

// TellOnlyRef is a reference to an actor that only supports "tell" operations.
// This is useful for scenarios where only fire-and-forget message passing is
// needed, or to restrict capabilities.
type TellOnlyRef[M Message] interface {
	BaseActorRef

	// Tell sends a message without waiting for a response. If the target
	// cell is gone, the message is dropped and logged at debug level.
	Tell(ctx context.Context, msg M)
}

// ActorRef is a reference to an actor that supports both "tell" and "ask"
// operations. It embeds TellOnlyRef and adds the Ask method for
// request-response interactions.
type ActorRef[M Message, R any] interface {
	TellOnlyRef[M]

	// Ask sends a message and returns a Future for the response. The
	// Future resolves with the actor's reply, or with ErrTargetGone if
	// the cell was already dead when the message was sent.
	Ask(ctx context.Context, msg M) Future[R]

	// Stop enqueues a Stop system message and returns a Future that
	// resolves once the cell has fully terminated.
	Stop(ctx context.Context) Future[struct{}]
}

// ActorBehavior defines the logic for how an actor processes incoming messages.
// It is a strategy interface that encapsulates the actor's reaction to messages.
type ActorBehavior[M Message, R any] interface {
	// Receive processes a message and returns a Result. The provided
	// context merges the cell's lifecycle context with the caller's
	// request context where applicable (ask operations), and carries the
	// ambient self/sender context described in spec §4.7.
	Receive(ctx context.Context, msg M) fn.Result[R]
}

// Starter is an optional interface that ActorBehavior implementations can
// implement to run setup logic before the first user message is processed
// (spec §3's on-start callback).
type Starter interface {
	// OnStart is invoked once, before the cell processes its first user
	// message.
	OnStart(ctx context.Context) error
}

// Stoppable is an optional interface that ActorBehavior implementations can
// implement to perform cleanup when the actor is stopping (spec §3's on-stop
// callback). This is useful for releasing external resources such as
// database connections, file handles, or network listeners that the
// behavior manages.
type Stoppable interface {
	// OnStop is called after the cell processes the Stop system message,
	// before it is deregistered from the system. The provided context has
	// a deadline for cleanup operations.
	OnStop(ctx context.Context) error
}

// SystemContext defines the minimal interface for system capabilities needed
// by actors and service keys. This narrow interface enables dependency
// injection and unit testing without requiring a full System instance.
type SystemContext interface {
	// Receptionist returns the system's receptionist for actor discovery.
	Receptionist() *Receptionist

	// DeadLetters returns a reference to the dead letter actor for
	// undeliverable messages.
	DeadLetters() ActorRef[Message, any]
}
