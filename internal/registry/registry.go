package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vk/wardengo/internal/route"
)

// Registry holds the live routes for a single application instance.
type Registry struct {
	mu         sync.RWMutex
	commands   map[string]*route.Command
	components map[route.ComponentType][]*route.Component
	events     map[string][]*route.Event
	tasks      map[string]*route.Task
}

// New creates and initializes an empty Registry.
func New() *Registry {
	return &Registry{
		commands:   make(map[string]*route.Command),
		components: make(map[route.ComponentType][]*route.Component),
		events:     make(map[string][]*route.Event),
		tasks:      make(map[string]*route.Task),
	}
}

// Register adds every route in file. The batch is checked first and applied
// only if no route collides with an existing key or with another route in
// the batch, so a failed Register leaves the store untouched.
func (r *Registry) Register(file *route.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkCollisionsLocked(file, ""); err != nil {
		return err
	}
	r.insertLocked(file)
	return nil
}

// UnregisterModule removes every route owned by module across all stores,
// pruning event lists left empty. It returns how many routes were removed.
func (r *Registry) UnregisterModule(module string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unregisterModuleLocked(module)
}

// ReplaceModule swaps every route owned by module for the routes in file
// inside one critical section. Collisions with other modules' routes are
// detected before anything is removed, so a failed replace leaves the old
// set fully live.
func (r *Registry) ReplaceModule(module string, file *route.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkCollisionsLocked(file, module); err != nil {
		return err
	}
	r.unregisterModuleLocked(module)
	r.insertLocked(file)
	return nil
}

// checkCollisionsLocked verifies every key the file wants is free, treating
// keys owned by ignoreModule as free (they are about to be replaced), and
// rejects duplicates within the batch itself.
func (r *Registry) checkCollisionsLocked(file *route.File, ignoreModule string) error {
	seen := make(map[string]struct{})
	claim := func(key string) error {
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate %s in one batch", key)
		}
		seen[key] = struct{}{}
		return nil
	}

	for _, c := range file.Commands {
		if err := claim("command " + c.Name); err != nil {
			return err
		}
		if existing, ok := r.commands[c.Name]; ok && existing.Module != ignoreModule {
			return fmt.Errorf("command %q already registered by module %q", c.Name, existing.Module)
		}
	}
	for _, c := range file.Components {
		if err := claim(string(c.Type) + " " + c.Source); err != nil {
			return err
		}
		for _, existing := range r.components[c.Type] {
			if existing.Source == c.Source && existing.Module != ignoreModule {
				return fmt.Errorf("%s pattern %q already registered by module %q", c.Type, c.Source, existing.Module)
			}
		}
	}
	for _, e := range file.Events {
		if err := claim("event route " + e.Name); err != nil {
			return err
		}
		for _, list := range r.events {
			for _, existing := range list {
				if existing.Name == e.Name && existing.Module != ignoreModule {
					return fmt.Errorf("event route %q already registered by module %q", e.Name, existing.Module)
				}
			}
		}
	}
	for _, t := range file.Tasks {
		if err := claim("task " + t.Name); err != nil {
			return err
		}
		if existing, ok := r.tasks[t.Name]; ok && existing.Module != ignoreModule {
			return fmt.Errorf("task %q already registered by module %q", t.Name, existing.Module)
		}
	}
	return nil
}

func (r *Registry) insertLocked(file *route.File) {
	for _, c := range file.Commands {
		r.commands[c.Name] = c
	}
	for _, c := range file.Components {
		r.components[c.Type] = append(r.components[c.Type], c)
	}
	touched := make(map[string]struct{})
	for _, e := range file.Events {
		r.events[e.Event] = append(r.events[e.Event], e)
		touched[e.Event] = struct{}{}
	}
	// Keep each touched list ordered by priority, highest first. The sort
	// is stable, so routes sharing a priority stay in insertion order.
	for event := range touched {
		list := r.events[event]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority > list[j].Priority
		})
	}
	for _, t := range file.Tasks {
		r.tasks[t.Name] = t
	}
}

func (r *Registry) unregisterModuleLocked(module string) int {
	removed := 0

	for name, c := range r.commands {
		if c.Module == module {
			delete(r.commands, name)
			removed++
		}
	}
	for typ, list := range r.components {
		kept := list[:0]
		for _, c := range list {
			if c.Module == module {
				removed++
				continue
			}
			kept = append(kept, c)
		}
		if len(kept) == 0 {
			delete(r.components, typ)
		} else {
			r.components[typ] = kept
		}
	}
	for event, list := range r.events {
		kept := list[:0]
		for _, e := range list {
			if e.Module == module {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(r.events, event)
		} else {
			r.events[event] = kept
		}
	}
	for name, t := range r.tasks {
		if t.Module == module {
			delete(r.tasks, name)
			removed++
		}
	}

	return removed
}
