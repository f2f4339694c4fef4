package actor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"golang.org/x/sync/errgroup"
)

// SystemConfig configures a System.
type SystemConfig struct {
	Scheduler SchedulerConfig
}

// DefaultSystemConfig returns sane defaults.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{Scheduler: DefaultSchedulerConfig()}
}

// registryEntry is the non-generic facet of a registered cell, erasing the
// cell's M/R type parameters so heterogeneous actor types can share one
// registry map (spec §3's Registry).
type registryEntry struct {
	cell schedulable
	stop func(ctx context.Context) Future[struct{}]
}

// System is the top-level container described in spec §4.6: it starts the
// scheduler, owns the cell registry, runs a guardian/root actor, and exposes
// startup/shutdown hooks. Grounded on the teacher's ActorSystem
// (registry-snapshot-then-stop Shutdown, receptionist, dead letter office),
// generalized to a compound (actor-type, id) registry key and with a
// guardian actor added — present in every akio/src/bin/*.rs example but
// absent from the teacher.
type System struct {
	cfg       SystemConfig
	scheduler *Scheduler

	mu       sync.RWMutex
	registry map[cellKey]*registryEntry

	receptionist *Receptionist
	deadLetters  ActorRef[Message, any]
	guardian     ActorRef[*guardianTask, struct{}]

	stopOnce sync.Once
	doneCh   chan struct{}
}

// guardianTask wraps a closure sent to the guardian (spec §4.6, §6: "closure
// runs inside the root actor after start").
type guardianTask struct {
	BaseMessage
	fn func(ctx context.Context)
}

// MessageType implements Message.
func (*guardianTask) MessageType() string { return "system.guardian-task" }

// NewSystem constructs a System, starts its scheduler, and spawns the dead
// letter office and guardian actors.
func NewSystem(cfg SystemConfig) *System {
	sys := &System{
		cfg:          cfg,
		registry:     make(map[cellKey]*registryEntry),
		receptionist: newReceptionist(),
		doneCh:       make(chan struct{}),
	}

	sys.scheduler = NewScheduler(cfg.Scheduler)
	sys.scheduler.Start(sys)

	deadLetterBehavior := NewFunctionBehavior(
		func(ctx context.Context, msg Message) fn.Result[any] {
			log.WarnS(ctx, "message undelivered", nil,
				"msg_type", msg.MessageType())
			return fn.Err[any](fmt.Errorf(
				"message undeliverable: %s", msg.MessageType()))
		},
	)
	deadLetterRef, err := spawnInternal[Message, any](
		sys, "system", "dead-letters", deadLetterBehavior, nil,
	)
	if err != nil {
		panic(err)
	}
	sys.deadLetters = deadLetterRef

	guardianBehavior := NewFunctionBehavior(
		func(ctx context.Context, msg *guardianTask) fn.Result[struct{}] {
			msg.fn(ctx)
			return fn.Ok(struct{}{})
		},
	)
	guardianRef, err := spawnInternal[*guardianTask, struct{}](
		sys, "system", "guardian", guardianBehavior, sys.deadLetters,
	)
	if err != nil {
		panic(err)
	}
	sys.guardian = guardianRef

	return sys
}

// NewDefaultSystem constructs a System with DefaultSystemConfig.
func NewDefaultSystem() *System {
	return NewSystem(DefaultSystemConfig())
}

// Receptionist returns the system's receptionist for actor discovery,
// implementing SystemContext.
func (sys *System) Receptionist() *Receptionist {
	return sys.receptionist
}

// DeadLetters returns the dead letter office reference, implementing
// SystemContext.
func (sys *System) DeadLetters() ActorRef[Message, any] {
	return sys.deadLetters
}

var _ SystemContext = (*System)(nil)

// OnStartup sends fn to the guardian, so it runs inside the actor runtime
// under a valid ambient context from the very first message (spec §4.6,
// §6).
func (sys *System) OnStartup(fn func(ctx context.Context)) {
	sys.guardian.Tell(context.Background(), &guardianTask{fn: fn})
}

// spawnInternal is the shared implementation behind Spawn and the system's
// own bootstrap spawns (dead letters, guardian), which need to bypass the
// DLO not-yet-existing chicken-and-egg problem.
func spawnInternal[M Message, R any](
	sys *System, actorType, id string, behavior ActorBehavior[M, R],
	dlo ActorRef[Message, any],
) (ActorRef[M, R], error) {
	key := cellKey{actorType: actorType, id: id}

	sys.mu.Lock()
	if _, exists := sys.registry[key]; exists {
		sys.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, key)
	}

	cell := NewCell(CellConfig[M, R]{
		ActorType: actorType,
		ID:        id,
		Behavior:  behavior,
		System:    sys,
		Scheduler: sys.scheduler,
		DLO:       dlo,
	})

	ref := cell.Ref()
	sys.registry[key] = &registryEntry{
		cell: cell,
		stop: func(ctx context.Context) Future[struct{}] {
			return ref.Stop(ctx)
		},
	}
	sys.mu.Unlock()

	log.DebugS(context.Background(), "cell registered",
		"cell_id", key.String())

	return ref, nil
}

// Spawn registers a new cell under (actorType, id) and returns its typed
// reference (spec §6's spawn(identifier, actor-value) -> typed-reference).
// It is a package-level generic function because Go methods cannot carry
// their own type parameters.
func Spawn[M Message, R any](
	sys *System, actorType, id string, behavior ActorBehavior[M, R],
) (ActorRef[M, R], error) {
	return spawnInternal(sys, actorType, id, behavior, sys.deadLetters)
}

// MustSpawn is like Spawn but panics on error. spec §7 recommends treating
// already-registered identifiers as a programmer error rather than a
// silent overwrite.
func MustSpawn[M Message, R any](
	sys *System, actorType, id string, behavior ActorBehavior[M, R],
) ActorRef[M, R] {
	ref, err := Spawn(sys, actorType, id, behavior)
	if err != nil {
		panic(err)
	}
	return ref
}

// Get returns a live reference for (actorType, id), or (_, false) if no such
// cell is currently registered (spec §4.6's get, §7's unknown-actor: a
// lookup miss is absence, never an error).
func Get[M Message, R any](
	sys *System, actorType, id string,
) (ActorRef[M, R], bool) {
	sys.mu.RLock()
	entry, exists := sys.registry[cellKey{actorType: actorType, id: id}]
	sys.mu.RUnlock()

	if !exists {
		var zero ActorRef[M, R]
		return zero, false
	}

	cell, ok := entry.cell.(*Cell[M, R])
	if !ok {
		var zero ActorRef[M, R]
		return zero, false
	}

	return cell.Ref(), true
}

// deregister removes key from the registry. Called by a Cell once it has
// fully terminated.
func (sys *System) deregister(key cellKey) {
	sys.mu.Lock()
	delete(sys.registry, key)
	sys.mu.Unlock()
}

// Start blocks until Stop is called (spec §4.6's start(): "blocks on a
// shutdown signal").
func (sys *System) Start() {
	<-sys.doneCh
}

// Stop signals the done-channel and joins the scheduler on a helper
// goroutine, returning without waiting for the workers to exit (spec §4.6's
// stop()). Safe to call more than once.
func (sys *System) Stop() {
	sys.stopOnce.Do(func() {
		close(sys.doneCh)
	})
	go sys.scheduler.Join()
}

// Shutdown stops every registered cell and waits for them to terminate, or
// until ctx expires, then calls Stop. This generalizes the
// teacher's ActorSystem.Shutdown (snapshot-then-stop-then-wait) to the
// compound registry and wires golang.org/x/sync/errgroup for the bounded,
// concurrent wait.
func (sys *System) Shutdown(ctx context.Context) error {
	sys.mu.Lock()
	entries := make([]*registryEntry, 0, len(sys.registry))
	for _, e := range sys.registry {
		entries = append(entries, e)
	}
	sys.mu.Unlock()

	log.InfoS(ctx, "system shutting down", "num_cells", len(entries))

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		stop := e.stop
		g.Go(func() error {
			result := stop(gctx).Await(gctx)
			_, err := result.Unpack()
			return err
		})
	}

	err := g.Wait()

	sys.Stop()

	if err != nil {
		log.ErrorS(ctx, "system shutdown incomplete", err)
	} else {
		log.InfoS(ctx, "system shutdown completed")
	}

	return err
}

// WaitQuiescent is a small test/demo helper that polls the registry until
// only the system's own bootstrap cells (dead-letters, guardian) remain, or
// the timeout elapses. It is not part of the core contract; it lets a test
// or demo observe quiescence without sleeping arbitrary durations.
func (sys *System) WaitQuiescent(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		sys.mu.RLock()
		n := len(sys.registry)
		sys.mu.RUnlock()

		if n <= 2 {
			return true
		}

		time.Sleep(time.Millisecond)
	}
	return false
}
