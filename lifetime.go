package reg

import "fmt"

// Lifetime specifies how often a service's factory is invoked when the
// service is resolved.
//
// Available lifetimes:
//   - [Transient] specifies that a new instance is created for every resolution.
//   - [Scoped] specifies that an instance is created once per [Scope].
//   - [Singleton] specifies that an instance is created once per [Registry].
type Lifetime uint8

const (
	// Transient specifies that a new instance is created for every resolution.
	// Transient instances are never cached.
	Transient Lifetime = iota

	// Scoped specifies that an instance is created once per [Scope] and shared
	// by every resolution within that scope.
	Scoped

	// Singleton specifies that an instance is created at most once per
	// [Registry] and shared by every resolution, across all scopes.
	Singleton
)

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "Transient"
	case Scoped:
		return "Scoped"
	case Singleton:
		return "Singleton"
	default:
		return fmt.Sprintf("Unknown Lifetime %d", uint8(l))
	}
}

func (l Lifetime) validate() error {
	if l > Singleton {
		return fmt.Errorf("invalid lifetime %s", l)
	}
	return nil
}
