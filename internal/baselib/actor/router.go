package actor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// ServiceKey names a family of actors that share a message/response shape,
// discoverable through the Receptionist without either side needing to know
// a concrete identifier (spec §4.6's "a key for a logical service").
type ServiceKey[M Message, R any] struct {
	name string
}

// NewServiceKey constructs a ServiceKey. Two keys with the same name and
// type parameters refer to the same service family.
func NewServiceKey[M Message, R any](name string) ServiceKey[M, R] {
	return ServiceKey[M, R]{name: name}
}

// Name returns the key's logical name.
func (k ServiceKey[M, R]) Name() string {
	return k.name
}

// Receptionist is a type-erased, name-keyed index of live actor references,
// adapted from the teacher's system.go Receptionist. Members register
// themselves voluntarily; nothing here owns a member's lifecycle.
type Receptionist struct {
	mu      sync.RWMutex
	members map[string][]any
}

func newReceptionist() *Receptionist {
	return &Receptionist{members: make(map[string][]any)}
}

// RegisterWithReceptionist adds ref as a member of key's service family.
func RegisterWithReceptionist[M Message, R any](
	r *Receptionist, key ServiceKey[M, R], ref ActorRef[M, R],
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[key.name] = append(r.members[key.name], ref)
}

// FindInReceptionist returns every live member of key's service family,
// filtering out references whose cell has since terminated.
func FindInReceptionist[M Message, R any](
	r *Receptionist, key ServiceKey[M, R],
) []ActorRef[M, R] {
	r.mu.RLock()
	raw := r.members[key.name]
	r.mu.RUnlock()

	out := make([]ActorRef[M, R], 0, len(raw))
	for _, v := range raw {
		ref, ok := v.(ActorRef[M, R])
		if ok && ref.Exists() {
			out = append(out, ref)
		}
	}
	return out
}

// UnregisterFromReceptionist removes ref from key's service family.
func UnregisterFromReceptionist[M Message, R any](
	r *Receptionist, key ServiceKey[M, R], ref ActorRef[M, R],
) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.members[key.name]
	kept := existing[:0]
	for _, v := range existing {
		member, ok := v.(ActorRef[M, R])
		if ok && member.ID() == ref.ID() {
			continue
		}
		kept = append(kept, v)
	}
	r.members[key.name] = kept
}

// Router is a round-robin ActorRef over a service family's current members,
// re-resolved from the Receptionist on every send so it always reflects
// live membership. Grounded on internal/actorutil/pool.go's round-robin
// counter idiom, generalized from a fixed slice of actors to a dynamically
// discovered set.
type Router[M Message, R any] struct {
	receptionist *Receptionist
	key          ServiceKey[M, R]
	counter      atomic.Uint64
}

// NewRouter constructs a Router over key's membership in receptionist.
func NewRouter[M Message, R any](
	receptionist *Receptionist, key ServiceKey[M, R],
) *Router[M, R] {
	return &Router[M, R]{receptionist: receptionist, key: key}
}

var _ ActorRef[Message, any] = (*Router[Message, any])(nil)

func (rt *Router[M, R]) next() (ActorRef[M, R], bool) {
	members := FindInReceptionist(rt.receptionist, rt.key)
	if len(members) == 0 {
		var zero ActorRef[M, R]
		return zero, false
	}

	idx := rt.counter.Add(1) - 1
	return members[idx%uint64(len(members))], true
}

// ID returns a synthetic identifier naming the routed service.
func (rt *Router[M, R]) ID() string {
	return "router/" + rt.key.name
}

// Exists reports whether the service family currently has any live member.
func (rt *Router[M, R]) Exists() bool {
	return len(FindInReceptionist(rt.receptionist, rt.key)) > 0
}

// Tell forwards msg to the next member in round-robin order, or logs and
// drops it if the service family is currently empty.
func (rt *Router[M, R]) Tell(ctx context.Context, msg M) {
	member, ok := rt.next()
	if !ok {
		log.DebugS(ctx, "router has no members, message dropped",
			"service_key", rt.key.name)
		return
	}
	member.Tell(ctx, msg)
}

// Ask forwards msg to the next member in round-robin order. If the service
// family is currently empty, the returned future resolves immediately with
// ErrTargetGone.
func (rt *Router[M, R]) Ask(ctx context.Context, msg M) Future[R] {
	member, ok := rt.next()
	if !ok {
		promise := NewPromise[R]()
		promise.Complete(fn.Err[R](ErrTargetGone))
		return promise.Future()
	}
	return member.Ask(ctx, msg)
}

// Stop is a no-op on a Router: the router itself owns no cell, only a view
// over its members' lifecycles. The returned future resolves immediately.
func (rt *Router[M, R]) Stop(context.Context) Future[struct{}] {
	promise := NewPromise[struct{}]()
	promise.Complete(fn.Ok(struct{}{}))
	return promise.Future()
}
