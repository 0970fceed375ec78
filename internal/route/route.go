// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the route structs, the atomic units a module contributes
// to the kernel. Each struct is the parsed form of one block in a module's
// .hcl route files.
//
// Why four separate structs instead of one Route with a Kind field?
//
// Commands, components, events and tasks are matched, stored and dispatched
// by different rules: commands by exact name, components by compiled pattern
// in declaration order, events by name with priority ordering, tasks by
// schedule. Separate structs let each store and each dispatch path consume
// exactly the fields it needs, and make an invalid combination (a command
// with a pattern, an event with a cooldown) unrepresentable instead of a
// runtime check.
//
// Why does every struct embed Meta?
//
// Hot reload replaces all routes of one module in a single swap. The Meta
// block records which module and file a route came from and the generation
// it was loaded under, which is what lets the registry evict exactly the
// routes of the module being replaced and lets in-flight dispatches detect
// they are running against a stale generation.
package route

import (
	"time"

	"github.com/vk/wardengo/internal/pattern"
)

// Meta ties a route back to its origin.
type Meta struct {
	// Module is the owning module's name, e.g. "moderation".
	Module string
	// SourceFile is the .hcl file the route was parsed from.
	SourceFile string
	// Generation is the module load counter at parse time.
	Generation int
}

// Command is an application command routed by its exact name. A command
// with Subcommands is a group: the group itself is not invocable unless it
// also carries a Handler, and each subcommand is a full Command one level
// deep with no further nesting.
type Command struct {
	Meta

	Name        string
	Description string
	// Handler is the dotted handler id, e.g. "moderation.warn". The Go
	// function behind it is registered separately and resolved at dispatch.
	// May be empty on a group with subcommands.
	Handler string

	Subcommands []*Command

	// Middlewares names extra per-route middleware, appended after the
	// global chain in declaration order.
	Middlewares []string
	// Inject lists the service names resolved into the handler context.
	Inject []string
	// Permissions the invoking member must hold; empty means everyone.
	Permissions []string
	// Cooldown is the minimum interval between invocations per user.
	// Zero disables the cooldown gate.
	Cooldown time.Duration
	// MaxConcurrent caps simultaneous executions of this command across
	// all users. Zero means unlimited.
	MaxConcurrent int
	// ResourceKey serializes the command against others sharing the key.
	ResourceKey string
	// GuildOnly rejects invocations outside a guild (i.e. in DMs).
	GuildOnly bool
	// Ephemeral asks the dispatcher to make replies visible only to the
	// invoking user, including the failure fallback reply.
	Ephemeral bool
}

// Subcommand returns the named subcommand, if any.
func (c *Command) Subcommand(name string) (*Command, bool) {
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			return sub, true
		}
	}
	return nil, false
}

// IsGroup reports whether the command is a group of subcommands.
func (c *Command) IsGroup() bool {
	return len(c.Subcommands) > 0
}

// ComponentType separates the three component namespaces. Matching never
// crosses namespaces: a button pattern cannot shadow a modal's.
type ComponentType string

const (
	ComponentButton     ComponentType = "button"
	ComponentSelectMenu ComponentType = "select_menu"
	ComponentModal      ComponentType = "modal"
)

// ComponentTypes lists the namespaces in a fixed order.
func ComponentTypes() []ComponentType {
	return []ComponentType{ComponentButton, ComponentSelectMenu, ComponentModal}
}

// Component is a message-component route matched by pattern against the
// component's custom id.
type Component struct {
	Meta

	// Type is the component namespace the pattern lives in.
	Type ComponentType
	// Name identifies the route in logs and metrics; it carries no
	// matching semantics.
	Name string
	// Source is the pattern template as written in the route file.
	Source string
	// Pattern is the compiled form of Source. Populated by LoadFile.
	Pattern *pattern.Pattern
	Handler string

	Middlewares []string
	Inject      []string
	Permissions []string
	Cooldown    time.Duration
	// TTL rejects interactions with components older than this. Zero
	// means no age limit.
	TTL time.Duration
}

// Event subscribes a handler to a gateway event.
type Event struct {
	Meta

	// Event is the platform event name, e.g. "guild_member_add".
	Event string
	// Name distinguishes multiple subscriptions to the same event.
	Name    string
	Handler string
	Inject  []string

	// Priority orders handlers for one event, highest first. Handlers
	// sharing a priority run in declaration order.
	Priority int
	// Once unsubscribes the route after its first successful run.
	Once bool
}

// Task runs a handler on a fixed interval.
type Task struct {
	Meta

	Name    string
	Handler string
	Inject  []string

	// Every is the interval between runs.
	Every time.Duration
	// RunOnStart fires the task immediately on module load instead of
	// waiting out the first interval.
	RunOnStart bool
}

// File aggregates every route parsed from one .hcl file.
type File struct {
	Commands   []*Command
	Components []*Component
	Events     []*Event
	Tasks      []*Task
}

// Merge appends the routes of other into f.
func (f *File) Merge(other *File) {
	if other == nil {
		return
	}
	f.Commands = append(f.Commands, other.Commands...)
	f.Components = append(f.Components, other.Components...)
	f.Events = append(f.Events, other.Events...)
	f.Tasks = append(f.Tasks, other.Tasks...)
}

// Len returns the total route count across all kinds.
func (f *File) Len() int {
	return len(f.Commands) + len(f.Components) + len(f.Events) + len(f.Tasks)
}

// Handlers returns the dotted handler ids referenced by any route in the
// file, in first-appearance order. The loader checks each against the
// handler registry before a module goes live.
func (f *File) Handlers() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(h string) {
		if _, ok := seen[h]; ok {
			return
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	for _, c := range f.Commands {
		if c.Handler != "" {
			add(c.Handler)
		}
		for _, sub := range c.Subcommands {
			add(sub.Handler)
		}
	}
	for _, c := range f.Components {
		add(c.Handler)
	}
	for _, e := range f.Events {
		add(e.Handler)
	}
	for _, tk := range f.Tasks {
		add(tk.Handler)
	}
	return out
}
