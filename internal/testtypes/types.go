package testtypes

import (
	"context"
	"sync"
)

// Service keys shared by the test suites.
const (
	KeyA = "service-a"
	KeyB = "service-b"
	KeyC = "service-c"
	KeyD = "service-d"
)

type InterfaceA interface {
	A()
	Close(ctx context.Context) error
}

type InterfaceB interface {
	B()
	Close(ctx context.Context)
}

type InterfaceC interface {
	C()
	Close() error
}

type InterfaceD interface {
	D()
	Close()
}

// The structs carry a field so that every allocation has a distinct address
// and instance-identity assertions are meaningful.

type StructA struct {
	Tag any
}

func (*StructA) A()                          {}
func (*StructA) Close(context.Context) error { return nil }

type StructB struct {
	Tag any
}

func (*StructB) B()                    {}
func (*StructB) Close(context.Context) {}

type StructC struct {
	Tag any
}

func (*StructC) C()           {}
func (*StructC) Close() error { return nil }

type StructD struct {
	Tag any
}

func (*StructD) D()     {}
func (*StructD) Close() {}

// CloseRecorder records the order in which instances are closed.
type CloseRecorder struct {
	mu    sync.Mutex
	order []string
}

func (r *CloseRecorder) Record(name string) {
	r.mu.Lock()
	r.order = append(r.order, name)
	r.mu.Unlock()
}

func (r *CloseRecorder) Order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// NamedCloser reports its Close to a CloseRecorder.
type NamedCloser struct {
	Name string
	Rec  *CloseRecorder
}

func (c *NamedCloser) Close(context.Context) error {
	c.Rec.Record(c.Name)
	return nil
}
