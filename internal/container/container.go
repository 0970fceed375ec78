package container

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Factory builds one service. The container it receives is scoped to the
// current resolution chain, so nested Get calls from inside a factory are
// what cycle detection watches.
type Factory func(c *Container) (any, error)

// entry is a resolved or in-flight singleton. done is closed once value
// and err are final.
type entry struct {
	done  chan struct{}
	value any
	err   error
}

// state is the shared heart of a container; every Container handle for one
// logical container points at the same state.
type state struct {
	mu        sync.Mutex
	factories map[string]Factory
	entries   map[string]*entry
}

// Container resolves registered services. The zero value is not usable;
// create one with New. Handles returned to factories carry the resolution
// path and must not be retained past the factory call.
type Container struct {
	st *state
	// path is the chain of names currently under construction in this
	// resolution, outermost first. Empty on the root handle.
	path []string
}

// New creates an empty container.
func New() *Container {
	return &Container{st: &state{
		factories: make(map[string]Factory),
		entries:   make(map[string]*entry),
	}}
}

// Register stores a lazy factory for name. Registering a name twice or
// passing a nil factory is a wiring bug and panics.
func (c *Container) Register(name string, factory Factory) {
	if name == "" {
		panic("container: service name cannot be empty")
	}
	if factory == nil {
		panic(fmt.Sprintf("container: nil factory for service %q", name))
	}

	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	if c.registeredLocked(name) {
		panic(fmt.Sprintf("container: service %q already registered", name))
	}
	slog.Debug("Registering service factory.", "name", name)
	c.st.factories[name] = factory
}

// RegisterInstance stores a ready singleton for name. Same duplicate rules
// as Register.
func (c *Container) RegisterInstance(name string, value any) {
	if name == "" {
		panic("container: service name cannot be empty")
	}

	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	if c.registeredLocked(name) {
		panic(fmt.Sprintf("container: service %q already registered", name))
	}
	slog.Debug("Registering service instance.", "name", name)
	e := &entry{done: make(chan struct{}), value: value}
	close(e.done)
	c.st.entries[name] = e
}

func (c *Container) registeredLocked(name string) bool {
	if _, ok := c.st.factories[name]; ok {
		return true
	}
	_, ok := c.st.entries[name]
	return ok
}

// Get resolves name. The first call runs the factory; concurrent callers
// wait for that one result, and every later call returns the cached value.
// A failed factory is not cached, so a later Get retries it.
//
// Cycles are detected within one resolution chain. ValidateAll at startup
// exercises every chain on a single goroutine, which is what surfaces every
// cycle before concurrent traffic exists.
func (c *Container) Get(name string) (any, error) {
	if slices.Contains(c.path, name) {
		return nil, &CircularDependencyError{Path: append(append([]string{}, c.path...), name)}
	}

	c.st.mu.Lock()
	if e, ok := c.st.entries[name]; ok {
		c.st.mu.Unlock()
		<-e.done
		if e.err != nil {
			return nil, e.err
		}
		return e.value, nil
	}

	factory, ok := c.st.factories[name]
	if !ok {
		c.st.mu.Unlock()
		return nil, &ServiceNotFoundError{Name: name}
	}

	// Claim the build before releasing the lock so exactly one caller
	// runs the factory; everyone else waits on done.
	e := &entry{done: make(chan struct{})}
	c.st.entries[name] = e
	c.st.mu.Unlock()

	scoped := &Container{st: c.st, path: append(append([]string{}, c.path...), name)}
	value, err := factory(scoped)
	if err != nil {
		err = fmt.Errorf("resolving service %q: %w", name, err)
		value = nil

		// Failed builds are not cached; the next Get retries the factory.
		c.st.mu.Lock()
		delete(c.st.entries, name)
		c.st.mu.Unlock()
	}

	e.value = value
	e.err = err
	close(e.done)

	return value, err
}

// MustGet is Get for services the caller has already validated.
func (c *Container) MustGet(name string) any {
	v, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Resolve resolves every name and returns them in one map. Each dotted
// name additionally appears under its final dot-segment, unless an earlier
// name in the same call already claimed that key; later claims are skipped
// for the short key only, never for the full name.
func (c *Container) Resolve(names []string) (map[string]any, error) {
	out := make(map[string]any, len(names))
	for _, name := range names {
		v, err := c.Get(name)
		if err != nil {
			return nil, err
		}
		out[name] = v

		if idx := strings.LastIndexByte(name, '.'); idx >= 0 && idx+1 < len(name) {
			short := name[idx+1:]
			if _, taken := out[short]; !taken {
				out[short] = v
			}
		}
	}
	return out, nil
}

// ValidationIssue is one failed resolution from ValidateAll.
type ValidationIssue struct {
	Service string
	Err     error
}

// ValidateAll resolves every registered name, collecting failures instead
// of stopping at the first. Successful resolutions stay cached, so a clean
// ValidateAll doubles as startup warming: dispatch-time Gets after it are
// cache hits.
func (c *Container) ValidateAll() []ValidationIssue {
	var issues []ValidationIssue
	for _, name := range c.Names() {
		if _, err := c.Get(name); err != nil {
			issues = append(issues, ValidationIssue{Service: name, Err: err})
		}
	}
	return issues
}

// Names returns every registered service name, sorted.
func (c *Container) Names() []string {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	names := make([]string, 0, len(c.st.factories)+len(c.st.entries))
	seen := make(map[string]struct{})
	for name := range c.st.factories {
		names = append(names, name)
		seen[name] = struct{}{}
	}
	for name := range c.st.entries {
		if _, ok := seen[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered, resolved or not.
func (c *Container) Has(name string) bool {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	return c.registeredLocked(name)
}

// Clear drops every registration and cached singleton. Meant for test
// isolation, not for live reconfiguration.
func (c *Container) Clear() {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	c.st.factories = make(map[string]Factory)
	c.st.entries = make(map[string]*entry)
}
