package backend

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Registry holds the ordered set of adapters, keyed by network identifier.
//
// It has two lifecycle states: while initializing, Register is allowed and
// lookups take a lock; after Freeze the set is immutable for the process
// lifetime and all reads are lock-free. The transition is one-way.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	order    []string
	frozen   atomic.Bool
}

// NewRegistry returns an empty registry in the initializing state.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register binds an adapter under its network identifier. It fails with
// ErrDuplicateBackend if the identifier is already bound, keeping the first
// binding, and with ErrRegistryFrozen once the registry is serving.
func (r *Registry) Register(a Adapter) error {
	network := a.Network()
	if r.frozen.Load() {
		return fmt.Errorf("register %q: %w", network, ErrRegistryFrozen)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.adapters[network]; ok {
		return fmt.Errorf("network %q: %w", network, ErrDuplicateBackend)
	}

	r.adapters[network] = a
	r.order = append(r.order, network)
	return nil
}

// Freeze transitions the registry to the serving state. Irreversible.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

// Frozen reports whether the registry has transitioned to serving.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Resolve returns the adapter bound to a network, or ErrUnsupportedBackend.
func (r *Registry) Resolve(network string) (Adapter, error) {
	if !r.frozen.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}

	a, ok := r.adapters[network]
	if !ok {
		return nil, fmt.Errorf("network %q: %w", network, ErrUnsupportedBackend)
	}
	return a, nil
}

// Networks returns the registered network identifiers in registration order.
func (r *Registry) Networks() []string {
	if !r.frozen.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
