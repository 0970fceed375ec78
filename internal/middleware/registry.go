package middleware

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"

	"github.com/vk/wardengo/internal/pipeline"
)

// nameRegex constrains middleware names to the shape route files use in
// their middlewares lists.
var nameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Registry maps middleware names to implementations.
//
// Registration happens during startup wiring on one goroutine; after that
// the registry is read-only, which is why lookups need no locking.
type Registry struct {
	all map[string]pipeline.Middleware
}

// NewRegistry creates and initializes an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		all: make(map[string]pipeline.Middleware),
	}
}

// Register adds a named middleware. A malformed name, a duplicate, or a
// nil middleware is a wiring bug and panics.
func (r *Registry) Register(name string, mw pipeline.Middleware) {
	if !nameRegex.MatchString(name) {
		panic(fmt.Sprintf("middleware registration: invalid name %q", name))
	}
	if mw == nil {
		panic(fmt.Sprintf("middleware %q registered with nil function", name))
	}
	if _, exists := r.all[name]; exists {
		panic(fmt.Sprintf("middleware with name '%s' already registered", name))
	}
	slog.Debug("Registering middleware.", "name", name)
	r.all[name] = mw
}

// Lookup returns the middleware behind a name.
func (r *Registry) Lookup(name string) (pipeline.Middleware, bool) {
	mw, ok := r.all[name]
	return mw, ok
}

// Has reports whether a named middleware is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.all[name]
	return ok
}

// Chain resolves a route's middleware name list, in order. Route files are
// user input, so an unknown name is an error for the loader to report, not
// a panic.
func (r *Registry) Chain(names []string) ([]pipeline.Middleware, error) {
	if len(names) == 0 {
		return nil, nil
	}
	chain := make([]pipeline.Middleware, 0, len(names))
	for _, name := range names {
		mw, ok := r.all[name]
		if !ok {
			return nil, fmt.Errorf("unknown middleware %q", name)
		}
		chain = append(chain, mw)
	}
	return chain, nil
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.all))
	for name := range r.all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered middlewares.
func (r *Registry) Count() int {
	return len(r.all)
}
