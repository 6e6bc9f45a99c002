package reg

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// flight is the result of a single construction, published to callers that
// raced the winner.
type flight struct {
	val  any
	err  error
	done chan struct{}
}

func newFlight() *flight {
	return &flight{done: make(chan struct{})}
}

func (f *flight) set(val any, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

func (f *flight) wait() (any, error) {
	<-f.done
	return f.val, f.err
}

// flightCache caches one instance per registration.
//
// Concurrent first resolutions of the same registration result in exactly one
// construction; the losers block until the winner publishes the instance.
type flightCache struct {
	m *xsync.MapOf[*descriptor, *flight]
}

func newFlightCache() *flightCache {
	return &flightCache{m: xsync.NewMapOf[*descriptor, *flight]()}
}

// do returns the cached instance for d, constructing it with fn if needed.
//
// A failed construction is not cached: the entry is removed before the error
// is published, so a later resolution starts over with a fresh construction.
func (c *flightCache) do(d *descriptor, fn func() (any, error)) (any, error) {
	f := newFlight()
	winner, loaded := c.m.LoadOrStore(d, f)
	if loaded {
		return winner.wait()
	}

	val, err := fn()
	if err != nil {
		c.m.Delete(d)
		f.set(nil, err)
		return nil, err
	}

	f.set(val, nil)
	return val, nil
}
