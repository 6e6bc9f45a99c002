package reg

import (
	"errors"
)

var (
	// ErrServiceNotRegistered is returned when a service key has no registration.
	ErrServiceNotRegistered = errors.New("service not registered")

	// ErrCycleDetected is returned when resolving a chain of factories revisits
	// a service key that is already under construction on the current
	// resolution stack.
	ErrCycleDetected = errors.New("dependency cycle detected")

	// ErrNoScope is returned when a Scoped service is resolved without a scope.
	ErrNoScope = errors.New("scoped service requires a scope")

	// ErrScopeEnded is returned when resolving against a [Scope] that has
	// already ended.
	ErrScopeEnded = errors.New("scope ended")

	// ErrRegistryClosed is returned when using a [Registry] that has been closed.
	ErrRegistryClosed = errors.New("registry closed")
)
