package testutil

import (
	"context"
	"sync"

	"github.com/vk/wardengo/internal/container"
	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/route"
)

// SimpleModule is a test helper for building a feature module out of a
// map of handler functions, without a dedicated type per test.
type SimpleModule struct {
	ModuleName string
	Handlers   map[string]handler.Func
	Services   map[string]any
}

// Name implements the handler.Module interface.
func (m *SimpleModule) Name() string {
	return m.ModuleName
}

// Register implements the handler.Module interface.
func (m *SimpleModule) Register(r *handler.Registry) {
	for ref, fn := range m.Handlers {
		r.Register(ref, fn)
	}
}

// RegisterServices implements the handler.ServiceProvider interface.
// Every service is registered as a ready instance.
func (m *SimpleModule) RegisterServices(c *container.Container) error {
	for name, svc := range m.Services {
		c.RegisterInstance(name, svc)
	}
	return nil
}

// NoopHandler returns a handler that accepts the dispatch and does
// nothing. Useful when a test needs valid routes but no behavior.
func NoopHandler() handler.Func {
	return func(context.Context, *handler.Context) error { return nil }
}

// Call is one recorded handler invocation.
type Call struct {
	Ref    string
	Kind   route.Kind
	Route  string
	Params map[string]any
}

// Recorder captures handler invocations so tests can assert on what was
// dispatched, in order, with which parameters.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

// Handler returns a handler function that records its invocations under
// ref and succeeds.
func (rec *Recorder) Handler(ref string) handler.Func {
	return func(_ context.Context, call *handler.Context) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.calls = append(rec.calls, Call{
			Ref:    ref,
			Kind:   call.Kind,
			Route:  call.Route,
			Params: call.Params,
		})
		return nil
	}
}

// Calls returns the recorded invocations in arrival order.
func (rec *Recorder) Calls() []Call {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]Call, len(rec.calls))
	copy(out, rec.calls)
	return out
}

// Refs returns just the handler references, in arrival order.
func (rec *Recorder) Refs() []string {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]string, len(rec.calls))
	for i, c := range rec.calls {
		out[i] = c.Ref
	}
	return out
}

// Count returns how many times ref was invoked.
func (rec *Recorder) Count(ref string) int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	n := 0
	for _, c := range rec.calls {
		if c.Ref == ref {
			n++
		}
	}
	return n
}
