package reg

import (
	"context"

	"github.com/aweston/reg-kit/internal/errors"
)

// Resolver resolves services by key. It is implemented by [*Registry],
// [*Scope], and by the resolver handed to a [Factory] during construction.
//
// The resolver handed to a factory carries the scope and the resolution stack
// of the resolution that invoked the factory: dependencies requested from it
// follow the same lifetime rules, and requesting a key that is already under
// construction fails with [ErrCycleDetected].
type Resolver interface {
	// Resolve returns an instance for the given service key.
	Resolve(ctx context.Context, key any) (any, error)

	// ResolveAll returns an instance for every registration of the given
	// service key, in registration order.
	ResolveAll(ctx context.Context, key any) ([]any, error)

	// Contains returns true if a service is registered for the given key.
	Contains(key any) bool
}

// Resolve resolves a service from the [Resolver] and asserts it to type T.
func Resolve[T any](ctx context.Context, r Resolver, key any) (T, error) {
	var zero T

	anyVal, err := r.Resolve(ctx, key)
	if err != nil {
		return zero, err
	}

	val, ok := anyVal.(T)
	if !ok {
		return zero, errors.Errorf("resolve %s: unexpected instance type %T", keyString(key), anyVal)
	}

	return val, nil
}

// MustResolve resolves a service from the [Resolver] and asserts it to type T.
//
// If the service cannot be resolved, this function will panic.
func MustResolve[T any](ctx context.Context, r Resolver, key any) T {
	val, err := Resolve[T](ctx, r, key)
	if err != nil {
		panic(err)
	}
	return val
}

// resolver carries the state of one resolution chain.
type resolver struct {
	reg      *Registry
	scope    *Scope // nil for registry-level resolution
	visiting visitor
}

var _ Resolver = (*resolver)(nil)

func newResolver(reg *Registry, scope *Scope) *resolver {
	return &resolver{
		reg:      reg,
		scope:    scope,
		visiting: make(visitor),
	}
}

func (rv *resolver) Resolve(ctx context.Context, key any) (any, error) {
	return rv.resolveKey(ctx, key)
}

func (rv *resolver) ResolveAll(ctx context.Context, key any) ([]any, error) {
	return rv.resolveAllKey(ctx, key)
}

func (rv *resolver) Contains(key any) bool {
	return rv.reg.Contains(key)
}

func (rv *resolver) resolveKey(ctx context.Context, key any) (any, error) {
	d := rv.reg.lookup(key)
	if d == nil {
		return nil, errors.Wrapf(ErrServiceNotRegistered, "resolve %s", keyString(key))
	}

	return rv.resolveDescriptor(ctx, d)
}

func (rv *resolver) resolveAllKey(ctx context.Context, key any) ([]any, error) {
	ds := rv.reg.lookupAll(key)
	if len(ds) == 0 {
		return nil, errors.Wrapf(ErrServiceNotRegistered, "resolve %s", keyString(key))
	}

	vals := make([]any, len(ds))
	for i, d := range ds {
		val, err := rv.resolveDescriptor(ctx, d)
		if err != nil {
			return nil, err
		}
		vals[i] = val
	}

	return vals, nil
}

func (rv *resolver) resolveDescriptor(ctx context.Context, d *descriptor) (any, error) {
	// Check context for errors
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Throw an error if this key is already on the resolution stack
	if !rv.visiting.enter(d.key) {
		return nil, errors.Wrapf(ErrCycleDetected, "resolve %s", keyString(d.key))
	}
	defer rv.visiting.leave(d.key)

	switch d.lifetime {
	case Transient:
		return rv.construct(ctx, d)

	case Scoped:
		if rv.scope == nil {
			return nil, errors.Wrapf(ErrNoScope, "resolve %s", keyString(d.key))
		}

		return rv.scope.instances.do(d, func() (any, error) {
			return rv.construct(ctx, d)
		})

	default: // Singleton
		if d.factory == nil {
			// Pre-built instance, returned verbatim.
			return d.value, nil
		}

		return rv.reg.singletons.do(d, func() (any, error) {
			return rv.construct(ctx, d)
		})
	}
}

// construct invokes the factory and hands the instance's Closer to its owner:
// the registry for Singleton and scope-less resolutions, the active scope
// otherwise.
//
// Factory errors are returned to the caller unmodified.
func (rv *resolver) construct(ctx context.Context, d *descriptor) (any, error) {
	val, err := d.New(ctx, rv)
	if err != nil {
		return nil, err
	}

	if c := d.CloserFor(val); c != nil {
		if d.lifetime == Singleton || rv.scope == nil {
			rv.reg.addCloser(c)
		} else {
			rv.scope.addCloser(c)
		}
	}

	return val, nil
}

// visitor tracks the service keys on the current resolution stack.
type visitor map[any]struct{}

func (v visitor) enter(key any) bool {
	if _, exists := v[key]; exists {
		return false
	}

	v[key] = struct{}{}
	return true
}

func (v visitor) leave(key any) {
	delete(v, key)
}
