package reg

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/aweston/reg-kit/internal/errors"
)

// Scope is a bounded resolution context, typically one per inbound unit of
// work. Scoped instances are created at most once per scope and shared by
// every resolution within it.
//
// A scope begins with [Registry.BeginScope] and ends with [Scope.End]; ending
// the scope closes the instances created within it and releases them. Scopes
// never share mutable state with each other.
type Scope struct {
	id        uuid.UUID
	reg       *Registry
	instances *flightCache
	closers   []Closer
	closersMu sync.Mutex
	endedMu   sync.RWMutex
	ended     bool
}

var _ Resolver = (*Scope)(nil)

func newScope(r *Registry) *Scope {
	return &Scope{
		id:        uuid.New(),
		reg:       r,
		instances: newFlightCache(),
	}
}

// ID returns the unique identity of the scope.
func (s *Scope) ID() uuid.UUID {
	return s.id
}

// Resolve resolves a service against this scope.
//
// This will return an error if the scope has ended.
func (s *Scope) Resolve(ctx context.Context, key any) (any, error) {
	s.endedMu.RLock()
	defer s.endedMu.RUnlock()

	if s.ended {
		return nil, errors.Wrapf(ErrScopeEnded, "reg.Scope.Resolve %s", keyString(key))
	}

	return newResolver(s.reg, s).resolveKey(ctx, key)
}

// ResolveAll resolves every registration for the key against this scope, in
// registration order.
func (s *Scope) ResolveAll(ctx context.Context, key any) ([]any, error) {
	s.endedMu.RLock()
	defer s.endedMu.RUnlock()

	if s.ended {
		return nil, errors.Wrapf(ErrScopeEnded, "reg.Scope.ResolveAll %s", keyString(key))
	}

	return newResolver(s.reg, s).resolveAllKey(ctx, key)
}

// Contains returns true if a service is registered for the given key.
func (s *Scope) Contains(key any) bool {
	return s.reg.Contains(key)
}

// End ends the scope and closes the instances created within it.
//
// Instances are closed in the reverse order they were created. This matters
// because of dependencies. Errors from closing instances are joined together.
//
// End waits for in-flight resolutions on this scope to complete, and returns
// an error if called more than once.
func (s *Scope) End(ctx context.Context) error {
	s.endedMu.Lock()
	defer s.endedMu.Unlock()

	if s.ended {
		return errors.Wrap(ErrScopeEnded, "reg.Scope.End: ended already")
	}
	s.ended = true

	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return errors.Wrap(err, "reg.Scope.End")
	}

	return nil
}

func (s *Scope) addCloser(c Closer) {
	s.closersMu.Lock()
	s.closers = append(s.closers, c)
	s.closersMu.Unlock()
}
