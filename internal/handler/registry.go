package handler

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/wardengo/internal/handlerid"
)

// Registry holds all the registered handler functions, keyed by their
// canonical `module.handler` reference.
//
// Registration happens during startup wiring on one goroutine; after that
// the registry is read-only, which is why lookups need no locking.
type Registry struct {
	all map[string]Func
}

// New creates and initializes an empty Registry.
func New() *Registry {
	return &Registry{
		all: make(map[string]Func),
	}
}

// Register registers a Go function under a handler reference. A malformed
// reference, a duplicate, or a nil function is a wiring bug and panics.
func (r *Registry) Register(ref string, fn Func) {
	if _, err := handlerid.Parse(ref); err != nil {
		panic(fmt.Sprintf("handler registration: %v", err))
	}
	if fn == nil {
		panic(fmt.Sprintf("handler %q registered with nil function", ref))
	}
	if _, exists := r.all[ref]; exists {
		panic(fmt.Sprintf("handler with name '%s' already registered", ref))
	}
	slog.Debug("Registering handler.", "name", ref)
	r.all[ref] = fn
}

// Lookup returns the function behind a handler reference.
func (r *Registry) Lookup(ref string) (Func, bool) {
	fn, ok := r.all[ref]
	return fn, ok
}

// Names returns every registered reference, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.all))
	for name := range r.all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered handlers.
func (r *Registry) Count() int {
	return len(r.all)
}
