package reg

import (
	"context"

	"github.com/aweston/reg-kit/internal/errors"
)

// Closer is used to close a service instance when its owner is closed:
// the [Registry] for Singleton instances, the [Scope] for instances created
// within it.
//
// If a resolved instance implements Closer, or one of the other compatible
// method signatures, its Close method is called when the owner is closed:
//
//	Close(context.Context) error
//	Close(context.Context)
//	Close() error
//	Close()
//
// See related options:
//   - [WithCloser]
//   - [IgnoreCloser]
//   - [WithCloseFunc]
type Closer interface {
	Close(ctx context.Context) error
}

type closerFactory func(val any) Closer

// WithCloser closes instances of the service when their owner is closed, if
// they implement [Closer] or a compatible Close method signature.
//
// This is the default for factory registrations. Instances registered with
// [Registry.RegisterInstance] are not closed by default; use this option to
// opt in.
func WithCloser() RegisterOption {
	return registerOption(func(d *descriptor) error {
		d.closerFactory = getCloser
		return nil
	})
}

// IgnoreCloser leaves the lifecycle of the service's instances to the caller,
// even if they implement [Closer] or a compatible Close method signature.
//
// This is useful when an instance outlives the scope that resolved it.
func IgnoreCloser() RegisterOption {
	return registerOption(func(d *descriptor) error {
		d.closerFactory = nil
		return nil
	})
}

// WithCloseFunc sets a custom function to call when closing the service's
// instances.
//
// This is useful when a service has a method named Shutdown or Stop instead
// of Close, or when a pre-built instance registered with
// [Registry.RegisterInstance] should be closed by the Registry.
//
// Example:
//
//	reg.WithCloseFunc(func(ctx context.Context, s *http.Server) error {
//		return s.Shutdown(ctx)
//	})
func WithCloseFunc[T any](f func(context.Context, T) error) RegisterOption {
	return registerOption(func(d *descriptor) error {
		d.closerFactory = func(val any) Closer {
			t, ok := val.(T)
			if !ok {
				return closeFunc(func(context.Context) error {
					return errors.Errorf("close: instance type %T is not assignable to close func", val)
				})
			}

			return closeFunc(func(ctx context.Context) error {
				return f(ctx, t)
			})
		}
		return nil
	})
}

// getCloser returns the Closer interface if the given value implements it,
// or any of the compatible Close method signatures.
func getCloser(val any) Closer {
	switch c := val.(type) {
	case Closer:
		return c
	case closerWithContextNoError:
		return closerWithContextNoErrorWrapper{c}
	case closerNoContextWithError:
		return closerNoContextWithErrorWrapper{c}
	case closerNoContextNoError:
		return closerNoContextNoErrorWrapper{c}

	default:
		return nil
	}
}

type closerWithContextNoError interface {
	Close(ctx context.Context)
}

type closerNoContextWithError interface {
	Close() error
}

type closerNoContextNoError interface {
	Close()
}

type closerWithContextNoErrorWrapper struct {
	c closerWithContextNoError
}

func (w closerWithContextNoErrorWrapper) Close(ctx context.Context) error {
	w.c.Close(ctx)
	return nil
}

type closerNoContextWithErrorWrapper struct {
	c closerNoContextWithError
}

func (w closerNoContextWithErrorWrapper) Close(context.Context) error {
	return w.c.Close()
}

type closerNoContextNoErrorWrapper struct {
	c closerNoContextNoError
}

func (w closerNoContextNoErrorWrapper) Close(context.Context) error {
	w.c.Close()
	return nil
}

type closeFunc func(context.Context) error

func (f closeFunc) Close(ctx context.Context) error {
	return f(ctx)
}
