package reg

import (
	"context"

	"github.com/aweston/reg-kit/internal/errors"
)

// Factory creates an instance of a service.
//
// A factory declares its own dependencies by requesting them from the provided
// [Resolver] during construction. The resolver carries the scope and the
// resolution stack of the resolution that invoked the factory, so nested
// resolutions honor the lifetime rules without special-casing.
type Factory func(ctx context.Context, r Resolver) (any, error)

// descriptor is an immutable registration record for a service key.
type descriptor struct {
	key           any
	lifetime      Lifetime
	factory       Factory // nil for instance registrations
	value         any     // pre-built instance for RegisterInstance
	closerFactory closerFactory
}

func newFactoryDescriptor(key any, factory Factory, lifetime Lifetime, opts ...RegisterOption) (*descriptor, error) {
	if key == nil {
		return nil, errors.New("key is nil")
	}
	if factory == nil {
		return nil, errors.New("factory is nil")
	}
	if err := lifetime.validate(); err != nil {
		return nil, err
	}

	d := &descriptor{
		key:      key,
		lifetime: lifetime,
		factory:  factory,
		// Instances created by a factory are closed by default if they
		// implement a compatible Close method.
		closerFactory: getCloser,
	}

	if err := applyOptions(d, opts); err != nil {
		return nil, err
	}

	return d, nil
}

func newInstanceDescriptor(key any, instance any, opts ...RegisterOption) (*descriptor, error) {
	if key == nil {
		return nil, errors.New("key is nil")
	}
	if instance == nil {
		return nil, errors.New("instance is nil")
	}

	// Pre-built instances are not closed by default. The caller owns the
	// value unless WithCloser or WithCloseFunc opts in.
	d := &descriptor{
		key:      key,
		lifetime: Singleton,
		value:    instance,
	}

	if err := applyOptions(d, opts); err != nil {
		return nil, err
	}

	return d, nil
}

// New creates a new instance of the service.
func (d *descriptor) New(ctx context.Context, r Resolver) (any, error) {
	if d.factory == nil {
		return d.value, nil
	}
	return d.factory(ctx, r)
}

// CloserFor returns a Closer for the instance, or nil if the instance should
// not be closed by its owner.
func (d *descriptor) CloserFor(val any) Closer {
	if val == nil || d.closerFactory == nil {
		return nil
	}
	return d.closerFactory(val)
}

// RegisterOption is used to configure a service registration when calling
// [Registry.Register] or [Registry.RegisterInstance].
type RegisterOption interface {
	applyDescriptor(*descriptor) error
}

type registerOption func(*descriptor) error

func (o registerOption) applyDescriptor(d *descriptor) error {
	return o(d)
}

// Apply registration options and join any errors together.
func applyOptions(d *descriptor, opts []RegisterOption) error {
	var errs []error
	for _, o := range opts {
		if err := o.applyDescriptor(d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
