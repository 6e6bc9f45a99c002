package reg

import (
	"context"
	"fmt"
	"sync"

	"github.com/aweston/reg-kit/internal/errors"
)

// Registry maps service keys to registrations and owns the cache of Singleton
// instances.
//
// All registrations must happen before the Registry is first used for
// resolution; registering after the first resolution is unsupported.
//
// A Registry is an owned value: collaborators that need resolution hold a
// *Registry, or a [*Scope] begun from one. There is no ambient process-wide
// registry.
type Registry struct {
	descriptors map[any][]*descriptor
	descMu      sync.RWMutex
	singletons  *flightCache
	closers     []Closer
	closersMu   sync.Mutex
	closedMu    sync.RWMutex
	closed      bool
}

var _ Resolver = (*Registry)(nil)

// NewRegistry creates an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[any][]*descriptor),
		singletons:  newFlightCache(),
	}
}

// Register registers a factory for the given service key with the given
// [Lifetime].
//
// Service keys must be comparable. Registering a key that is already
// registered does not fail: registrations for a key accumulate in order, the
// most recent one wins for [Registry.Resolve], and all of them are visible to
// [Registry.ResolveAll].
//
// Available options:
//   - [WithCloseFunc] sets a custom close function for resolved instances.
//   - [IgnoreCloser] leaves the lifecycle of resolved instances to the caller.
func (r *Registry) Register(key any, factory Factory, lifetime Lifetime, opts ...RegisterOption) error {
	r.closedMu.RLock()
	defer r.closedMu.RUnlock()

	if r.closed {
		return errors.Wrapf(ErrRegistryClosed, "reg.Registry.Register %s", keyString(key))
	}

	d, err := newFactoryDescriptor(key, factory, lifetime, opts...)
	if err != nil {
		return errors.Wrapf(err, "reg.Registry.Register %s", keyString(key))
	}

	r.add(d)
	return nil
}

// RegisterInstance registers a pre-built Singleton for the given service key.
// The instance is returned verbatim on every resolution, never recreated.
//
// Instances are not closed by the Registry by default; use [WithCloser] or
// [WithCloseFunc] to opt in.
func (r *Registry) RegisterInstance(key any, instance any, opts ...RegisterOption) error {
	r.closedMu.RLock()
	defer r.closedMu.RUnlock()

	if r.closed {
		return errors.Wrapf(ErrRegistryClosed, "reg.Registry.RegisterInstance %s", keyString(key))
	}

	d, err := newInstanceDescriptor(key, instance, opts...)
	if err != nil {
		return errors.Wrapf(err, "reg.Registry.RegisterInstance %s", keyString(key))
	}

	r.add(d)

	// The instance already exists, so its closer is collected now rather than
	// on first resolution.
	if c := d.CloserFor(instance); c != nil {
		r.addCloser(c)
	}

	return nil
}

func (r *Registry) add(d *descriptor) {
	r.descMu.Lock()
	r.descriptors[d.key] = append(r.descriptors[d.key], d)
	r.descMu.Unlock()
}

// lookup returns the most recent registration for the key, or nil.
func (r *Registry) lookup(key any) *descriptor {
	r.descMu.RLock()
	defer r.descMu.RUnlock()

	ds := r.descriptors[key]
	if len(ds) == 0 {
		return nil
	}
	return ds[len(ds)-1]
}

// lookupAll returns every registration for the key in registration order.
func (r *Registry) lookupAll(key any) []*descriptor {
	r.descMu.RLock()
	defer r.descMu.RUnlock()

	ds := r.descriptors[key]
	if len(ds) == 0 {
		return nil
	}

	out := make([]*descriptor, len(ds))
	copy(out, ds)
	return out
}

// Contains returns true if the Registry has a registration for the given key.
func (r *Registry) Contains(key any) bool {
	r.descMu.RLock()
	defer r.descMu.RUnlock()

	_, found := r.descriptors[key]
	return found
}

// Resolve resolves a service without a scope.
//
// Only Singleton and Transient services can be resolved this way; resolving a
// Scoped service, directly or as a dependency, fails with [ErrNoScope]. Use
// [Registry.BeginScope] and [Scope.Resolve] for scoped resolution.
func (r *Registry) Resolve(ctx context.Context, key any) (any, error) {
	r.closedMu.RLock()
	defer r.closedMu.RUnlock()

	if r.closed {
		return nil, errors.Wrapf(ErrRegistryClosed, "reg.Registry.Resolve %s", keyString(key))
	}

	return newResolver(r, nil).resolveKey(ctx, key)
}

// ResolveAll resolves every registration for the key, in registration order.
//
// Like [Registry.Resolve], this is scope-less resolution.
func (r *Registry) ResolveAll(ctx context.Context, key any) ([]any, error) {
	r.closedMu.RLock()
	defer r.closedMu.RUnlock()

	if r.closed {
		return nil, errors.Wrapf(ErrRegistryClosed, "reg.Registry.ResolveAll %s", keyString(key))
	}

	return newResolver(r, nil).resolveAllKey(ctx, key)
}

// BeginScope begins a new unit-of-work scope.
//
// The scope must be ended with [Scope.End] when the unit of work completes.
func (r *Registry) BeginScope() (*Scope, error) {
	r.closedMu.RLock()
	defer r.closedMu.RUnlock()

	if r.closed {
		return nil, errors.Wrap(ErrRegistryClosed, "reg.Registry.BeginScope")
	}

	return newScope(r), nil
}

// Close closes the Registry and the instances it owns.
//
// Instances are closed in the reverse order they were created. This matters
// because of dependencies. Errors from closing instances are joined together.
//
// Close returns an error if called more than once.
func (r *Registry) Close(ctx context.Context) error {
	r.closedMu.Lock()
	defer r.closedMu.Unlock()

	if r.closed {
		return errors.Wrap(ErrRegistryClosed, "reg.Registry.Close: closed already")
	}
	r.closed = true

	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return errors.Wrap(err, "reg.Registry.Close")
	}

	return nil
}

func (r *Registry) addCloser(c Closer) {
	r.closersMu.Lock()
	r.closers = append(r.closers, c)
	r.closersMu.Unlock()
}

func keyString(key any) string {
	return fmt.Sprintf("%v", key)
}
