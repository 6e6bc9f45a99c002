// Package regcontext stores a [reg.Scope] on a [context.Context] so it can be
// carried through a unit of work.
package regcontext

import (
	"context"

	"github.com/aweston/reg-kit"
	"github.com/aweston/reg-kit/internal/errors"
)

type scopeContextKey struct{}

// WithScope returns a new [context.Context] that carries the provided
// [*reg.Scope].
func WithScope(ctx context.Context, s *reg.Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// Scope returns the [*reg.Scope] stored on the [context.Context], if present.
func Scope(ctx context.Context) *reg.Scope {
	if s, ok := ctx.Value(scopeContextKey{}).(*reg.Scope); ok {
		return s
	}
	return nil
}

// Resolve resolves a service from the [*reg.Scope] stored on the
// [context.Context].
func Resolve[T any](ctx context.Context, key any) (T, error) {
	s := Scope(ctx)
	if s == nil {
		var zero T
		return zero, errors.Errorf("resolve %v from context: scope not found on context", key)
	}

	val, err := reg.Resolve[T](ctx, s, key)
	return val, errors.Wrap(err, "resolve from context")
}

// MustResolve resolves a service from the [*reg.Scope] stored on the
// [context.Context].
//
// If the service cannot be resolved, this function will panic.
func MustResolve[T any](ctx context.Context, key any) T {
	val, err := Resolve[T](ctx, key)
	if err != nil {
		panic(err)
	}
	return val
}
