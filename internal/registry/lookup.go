package registry

import (
	"sort"

	"github.com/vk/wardengo/internal/route"
)

// FindCommand returns the command config for name. With a non-empty
// subcommand it returns the nested subcommand config instead; a missing
// subcommand is a miss even when the group exists.
func (r *Registry) FindCommand(name, subcommand string) (*route.Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, ok := r.commands[name]
	if !ok {
		return nil, false
	}
	if subcommand == "" {
		return cmd, true
	}
	return cmd.Subcommand(subcommand)
}

// FindComponent matches customID against the patterns of one component
// namespace in registration order and returns the first hit with its
// extracted values.
func (r *Registry) FindComponent(typ route.ComponentType, customID string) (*route.Component, map[string]any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, comp := range r.components[typ] {
		if values, ok := comp.Pattern.Extract(customID); ok {
			return comp, values, true
		}
	}
	return nil, nil, false
}

// FindEvents returns the subscriptions for one gateway event, highest
// priority first. The returned slice is the caller's to keep; later
// registry mutations do not affect it.
func (r *Registry) FindEvents(event string) []*route.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.events[event]
	if len(list) == 0 {
		return nil
	}
	out := make([]*route.Event, len(list))
	copy(out, list)
	return out
}

// FindTask returns the task config for name.
func (r *Registry) FindTask(name string) (*route.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[name]
	return t, ok
}

// Tasks returns every registered task, sorted by name.
func (r *Registry) Tasks() []*route.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*route.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RemoveEventRoute removes the uniquely-named event subscription, pruning
// its list when empty. Used to retire one-shot subscriptions after their
// first successful run.
func (r *Registry) RemoveEventRoute(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for event, list := range r.events {
		for i, e := range list {
			if e.Name != name {
				continue
			}
			list = append(list[:i], list[i+1:]...)
			if len(list) == 0 {
				delete(r.events, event)
			} else {
				r.events[event] = list
			}
			return true
		}
	}
	return false
}

// Counts reports how many routes each kind holds. Events and tasks count
// individual subscriptions; commands count groups, not subcommands.
func (r *Registry) Counts() map[route.Kind]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[route.Kind]int{
		route.KindCommand:   len(r.commands),
		route.KindComponent: 0,
		route.KindEvent:     0,
		route.KindTask:      len(r.tasks),
	}
	for _, list := range r.components {
		counts[route.KindComponent] += len(list)
	}
	for _, list := range r.events {
		counts[route.KindEvent] += len(list)
	}
	return counts
}
