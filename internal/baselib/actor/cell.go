package actor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// cellStatus is the Idle/Scheduled/Terminated state machine described in
// spec §3 and §4.2.
type cellStatus int

const (
	statusIdle cellStatus = iota
	statusScheduled
	statusTerminated
)

func (s cellStatus) String() string {
	switch s {
	case statusIdle:
		return "idle"
	case statusScheduled:
		return "scheduled"
	case statusTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// cellKey identifies a cell by the (actor-type, identifier) compound key
// described in spec §3's Registry definition.
type cellKey struct {
	actorType string
	id        string
}

func (k cellKey) String() string {
	return fmt.Sprintf("%s/%s", k.actorType, k.id)
}

// schedulable is the non-generic facet of Cell the scheduler operates
// against, mirroring the teacher's BaseActorRef/stoppable split that erases
// generics for storage in heterogeneous collections (here: a worker's
// inbox, which must carry cells of many different M/R instantiations).
type schedulable interface {
	CellID() string
	RunBatch(ctx context.Context, max int) (processed int, terminated bool)
	FinalizeBatch() bool
}

// mergeContexts creates a context that cancels when either parent cancels,
// preserving the earlier of the two deadlines. Grounded on the teacher's
// actor.go mergeContexts, used here to let an Ask caller's deadline cancel
// message processing without requiring the cell itself to be torn down.
func mergeContexts(
	ctx1, ctx2 context.Context,
) (context.Context, context.CancelFunc) {
	deadline1, hasDeadline1 := ctx1.Deadline()
	deadline2, hasDeadline2 := ctx2.Deadline()

	base := ctx1
	if hasDeadline2 && (!hasDeadline1 || deadline2.Before(deadline1)) {
		base = ctx2
	}

	merged, cancel := context.WithCancel(base)

	go func() {
		select {
		case <-ctx1.Done():
			cancel()
		case <-ctx2.Done():
			cancel()
		case <-merged.Done():
		}
	}()

	return merged, cancel
}

// CellConfig configures a new Cell.
type CellConfig[M Message, R any] struct {
	ActorType      string
	ID             string
	Behavior       ActorBehavior[M, R]
	System         *System
	Scheduler      *Scheduler
	DLO            ActorRef[Message, any]
	CleanupTimeout time.Duration
}

// Cell owns one actor instance, its mailbox, and its lifecycle status; it
// serializes handler execution (spec §4.2). Unlike the teacher's Actor (one
// goroutine blocked in a receive loop per actor), a Cell owns no goroutine
// of its own — it is driven cooperatively by whichever scheduler worker
// currently holds it, per spec §4.5.
type Cell[M Message, R any] struct {
	key      cellKey
	behavior ActorBehavior[M, R]
	mailbox  Mailbox[M, R]
	system   *System
	sched    *Scheduler
	dlo      ActorRef[Message, any]

	cleanupTimeout time.Duration

	mu      sync.Mutex
	status  cellStatus
	started bool

	ref *reference[M, R]
}

// NewCell constructs a Cell in the Idle state. It does not submit the cell
// to the scheduler; that happens on first enqueue.
func NewCell[M Message, R any](cfg CellConfig[M, R]) *Cell[M, R] {
	timeout := cfg.CleanupTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	c := &Cell[M, R]{
		key: cellKey{
			actorType: cfg.ActorType,
			id:        cfg.ID,
		},
		behavior:       cfg.Behavior,
		mailbox:        NewMailbox[M, R](),
		system:         cfg.System,
		sched:          cfg.Scheduler,
		dlo:            cfg.DLO,
		cleanupTimeout: timeout,
	}
	c.ref = &reference[M, R]{cell: c}

	return c
}

// CellID implements schedulable.
func (c *Cell[M, R]) CellID() string {
	return c.key.String()
}

// Ref returns the ActorRef for this cell.
func (c *Cell[M, R]) Ref() ActorRef[M, R] {
	return c.ref
}

// TellRef returns a TellOnlyRef for this cell.
func (c *Cell[M, R]) TellRef() TellOnlyRef[M] {
	return c.ref
}

func (c *Cell[M, R]) isTerminated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == statusTerminated
}

// enqueue pushes env and, if the cell was Idle, transitions it to Scheduled
// and submits it to the scheduler (spec §4.2's enqueue contract).
func (c *Cell[M, R]) enqueue(env envelope[M, R]) bool {
	c.mu.Lock()
	if c.status == statusTerminated {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	if !c.mailbox.Push(env) {
		return false
	}

	c.maybeSchedule()
	return true
}

// enqueueSystem pushes a system envelope (currently only Stop); admitted
// unless the cell is already terminated, per spec §4.2.
func (c *Cell[M, R]) enqueueSystem(env envelope[M, R]) bool {
	c.mu.Lock()
	if c.status == statusTerminated {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	if !c.mailbox.PushSystem(env) {
		return false
	}

	c.maybeSchedule()
	return true
}

// maybeSchedule performs the Idle -> Scheduled transition and, if it fired,
// submits the cell to the scheduler. Holding c.mu across both the status
// check/set and FinalizeBatch's symmetric check/set is what prevents a
// message from being stranded between a worker deciding the mailbox is
// empty and a concurrent enqueue deciding the cell is already scheduled.
func (c *Cell[M, R]) maybeSchedule() {
	c.mu.Lock()
	wasIdle := c.status == statusIdle
	if wasIdle {
		c.status = statusScheduled
	}
	c.mu.Unlock()

	if wasIdle && c.sched != nil {
		c.sched.submit(c)
	}
}

// RunBatch implements schedulable: it executes up to max messages, binding
// ambient context per message, and returns the count processed plus whether
// the cell terminated during this batch (spec §4.2).
func (c *Cell[M, R]) RunBatch(
	ctx context.Context, max int,
) (processed int, terminated bool) {
	if !c.started {
		c.started = true
		if starter, ok := c.behavior.(Starter); ok {
			startCtx := withInvocationContext(ctx, c.ref, nullRef{})
			if err := starter.OnStart(startCtx); err != nil {
				log.WarnS(ctx, "cell OnStart failed", err,
					"cell_id", c.key.String())
			}
		}
	}

	for i := 0; i < max; i++ {
		env, ok := c.mailbox.Pop()
		if !ok {
			return processed, false
		}

		if env.system {
			c.terminate(ctx, env.stopSink)
			return processed, true
		}

		processed++

		if c.processOne(ctx, env) {
			// Handler panicked; the cell is terminated.
			return processed, true
		}
	}

	return processed, false
}

// processOne invokes the behavior for a single envelope, recovering from a
// panic at the batch boundary per spec §7 ("a panicking handler must not
// poison other cells"). It returns true if the cell was terminated due to a
// panic.
func (c *Cell[M, R]) processOne(
	ctx context.Context, env envelope[M, R],
) (panicked bool) {
	sender := env.sender
	if sender == nil {
		sender = nullRef{}
	}

	procCtx := withInvocationContext(ctx, c.ref, sender)

	var cancel context.CancelFunc
	if env.promise != nil && env.callerCtx != nil {
		procCtx, cancel = mergeContexts(procCtx, env.callerCtx)
	} else {
		cancel = func() {}
	}
	defer cancel()

	result, recovered := c.safeReceive(procCtx, env.message)
	if recovered != nil {
		log.ErrorS(ctx, "cell handler panicked, terminating cell",
			fmt.Errorf("%v", recovered), "cell_id", c.key.String())

		c.terminate(ctx, nil)
		if env.promise != nil {
			env.promise.Complete(fn.Err[R](ErrTargetGone))
		}
		return true
	}

	if env.promise != nil {
		env.promise.Complete(result)
	}

	return false
}

func (c *Cell[M, R]) safeReceive(
	ctx context.Context, msg M,
) (result fn.Result[R], recovered any) {
	defer func() {
		recovered = recover()
	}()

	result = c.behavior.Receive(ctx, msg)
	return result, nil
}

// FinalizeBatch implements schedulable: under the same lock used by
// maybeSchedule, it sets the cell Idle if the mailbox drained empty during
// the batch, or reports that the cell must be re-submitted (spec §4.2).
func (c *Cell[M, R]) FinalizeBatch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == statusTerminated {
		return false
	}

	if c.mailbox.IsEmpty() {
		c.status = statusIdle
		return false
	}

	return true
}

// terminate transitions the cell to Terminated, drains remaining messages to
// the dead letter office, runs OnStop, deregisters from the system, and
// fulfills stopSink if provided, along with any further Stop sinks that were
// still queued.
func (c *Cell[M, R]) terminate(ctx context.Context, stopSink Promise[struct{}]) {
	c.mu.Lock()
	c.status = statusTerminated
	c.mu.Unlock()

	c.mailbox.Close()

	drained := 0
	var pendingStops []Promise[struct{}]
	for env := range c.mailbox.Drain() {
		if env.system {
			// A second Stop queued behind the one being processed
			// resolves together with it once termination completes.
			if env.stopSink != nil {
				pendingStops = append(pendingStops, env.stopSink)
			}
			continue
		}

		drained++

		if c.dlo != nil {
			c.dlo.Tell(context.Background(), env.message)
		}

		if env.promise != nil {
			env.promise.Complete(fn.Err[R](ErrStoppedMidRequest))
		}
	}

	if stoppable, ok := c.behavior.(Stoppable); ok {
		stopCtx, cancel := context.WithTimeout(
			context.Background(), c.cleanupTimeout,
		)
		if err := stoppable.OnStop(stopCtx); err != nil {
			log.WarnS(ctx, "cell OnStop failed", err,
				"cell_id", c.key.String())
		}
		cancel()
	}

	if c.system != nil {
		c.system.deregister(c.key)
	}

	if stopSink != nil {
		stopSink.Complete(fn.Ok(struct{}{}))
	}
	for _, sink := range pendingStops {
		sink.Complete(fn.Ok(struct{}{}))
	}

	log.DebugS(ctx, "cell terminated",
		"cell_id", c.key.String(), "drained_messages", drained)
}
