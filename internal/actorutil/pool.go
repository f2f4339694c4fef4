package actorutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kphelps/akio/internal/baselib/actor"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Pool distributes messages across multiple actor instances using
// round-robin scheduling. This enables horizontal scaling of actor
// workloads by spreading requests across a set of worker cells, all spawned
// under the same System.
type Pool[M actor.Message, R any] struct {
	// id is the identifier for this pool.
	id string

	// actors holds the pooled actor references for message sending.
	actors []actor.ActorRef[M, R]

	// next is the atomic counter for round-robin selection.
	next atomic.Uint64
}

// PoolConfig holds configuration for creating a new actor pool.
type PoolConfig[M actor.Message, R any] struct {
	// ID is the identifier for the pool. Members are spawned under the
	// actor type "pool:<ID>", each with its index as its cell identifier.
	ID string

	// System is the runtime the pool's cells are spawned into.
	System *actor.System

	// Size is the number of actor instances to create.
	Size int

	// Factory creates a new actor behavior for each pool member.
	Factory func(idx int) actor.ActorBehavior[M, R]
}

// NewPool creates a pool with the specified number of actor instances,
// each spawned under cfg.System as its own cell.
func NewPool[M actor.Message, R any](
	cfg PoolConfig[M, R],
) *Pool[M, R] {
	if cfg.Size <= 0 {
		cfg.Size = 1
	}

	p := &Pool[M, R]{
		id:     cfg.ID,
		actors: make([]actor.ActorRef[M, R], cfg.Size),
	}

	actorType := fmt.Sprintf("pool:%s", cfg.ID)
	for i := 0; i < cfg.Size; i++ {
		behavior := cfg.Factory(i)
		ref := actor.MustSpawn[M, R](
			cfg.System, actorType, fmt.Sprintf("%d", i), behavior,
		)
		p.actors[i] = ref
	}

	return p
}

// ID returns the identifier for this pool.
func (p *Pool[M, R]) ID() string {
	return p.id
}

// Ask sends a message to the next actor in round-robin order and returns a
// Future for the response.
func (p *Pool[M, R]) Ask(ctx context.Context, msg M) actor.Future[R] {
	idx := p.next.Add(1) % uint64(len(p.actors))
	return p.actors[idx].Ask(ctx, msg)
}

// Tell sends a fire-and-forget message to the next actor in round-robin order.
func (p *Pool[M, R]) Tell(ctx context.Context, msg M) {
	idx := p.next.Add(1) % uint64(len(p.actors))
	p.actors[idx].Tell(ctx, msg)
}

// Broadcast sends a message to ALL actors in the pool. This is useful for
// cache invalidation, configuration updates, or graceful shutdown signals.
func (p *Pool[M, R]) Broadcast(ctx context.Context, msg M) {
	for _, a := range p.actors {
		a.Tell(ctx, msg)
	}
}

// BroadcastAsk sends a message to all actors and returns a slice of Futures.
// This is useful when you need responses from all actors in the pool.
func (p *Pool[M, R]) BroadcastAsk(ctx context.Context, msg M) []actor.Future[R] {
	futures := make([]actor.Future[R], len(p.actors))
	for i, a := range p.actors {
		futures[i] = a.Ask(ctx, msg)
	}
	return futures
}

// Size returns the number of actors in the pool.
func (p *Pool[M, R]) Size() int {
	return len(p.actors)
}

// Actors returns a copy of the actor references in the pool.
func (p *Pool[M, R]) Actors() []actor.ActorRef[M, R] {
	actors := make([]actor.ActorRef[M, R], len(p.actors))
	copy(actors, p.actors)
	return actors
}

// Stop asks every member of the pool to stop and waits, up to 5 seconds,
// for all of them to terminate.
func (p *Pool[M, R]) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	futures := make([]actor.Future[struct{}], len(p.actors))
	for i, a := range p.actors {
		futures[i] = a.Stop(ctx)
	}

	for _, f := range futures {
		f.Await(ctx)
	}
}

// PoolRef wraps a Pool to implement the ActorRef interface directly.
// This allows a pool to be used anywhere an ActorRef is expected.
type PoolRef[M actor.Message, R any] struct {
	pool *Pool[M, R]
}

// NewPoolRef creates an ActorRef wrapper around a pool.
func NewPoolRef[M actor.Message, R any](
	pool *Pool[M, R],
) actor.ActorRef[M, R] {
	return &PoolRef[M, R]{pool: pool}
}

// ID returns the pool's identifier.
func (pr *PoolRef[M, R]) ID() string {
	return pr.pool.ID()
}

// Exists reports whether the pool has at least one live member.
func (pr *PoolRef[M, R]) Exists() bool {
	for _, a := range pr.pool.Actors() {
		if a.Exists() {
			return true
		}
	}
	return false
}

// Tell sends a message to the pool (round-robin).
func (pr *PoolRef[M, R]) Tell(ctx context.Context, msg M) {
	pr.pool.Tell(ctx, msg)
}

// Ask sends a message to the pool (round-robin) and returns a Future.
func (pr *PoolRef[M, R]) Ask(ctx context.Context, msg M) actor.Future[R] {
	return pr.pool.Ask(ctx, msg)
}

// Stop stops every member of the wrapped pool.
func (pr *PoolRef[M, R]) Stop(ctx context.Context) actor.Future[struct{}] {
	pr.pool.Stop()
	promise := actor.NewPromise[struct{}]()
	promise.Complete(fn.Ok(struct{}{}))
	return promise.Future()
}

// Ensure PoolRef implements ActorRef.
var _ actor.ActorRef[actor.Message, any] = (*PoolRef[actor.Message, any])(nil)
