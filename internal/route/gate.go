// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file gives the four route structs one face the pipeline and the
// standard middlewares can consume.
//
// Why a Route interface plus a Gate struct?
//
// Middlewares run on every kind of dispatch, but the structs behind them
// differ: a task has no permissions, an event has no cooldown. The Route
// interface carries the identity every middleware wants for logging and
// metrics, and Gate flattens the enforcement knobs into one value with
// zeroes where a kind has no such knob, so a middleware reads one field
// instead of type-switching over four structs.
package route

import "time"

// Gate bundles the enforcement attributes a route can declare. Zero values
// mean "no constraint".
type Gate struct {
	Permissions   []string
	Cooldown      time.Duration
	MaxConcurrent int
	ResourceKey   string
	GuildOnly     bool
	TTL           time.Duration
}

// Route is the kind-independent view of one registered route.
type Route interface {
	RouteKind() Kind
	RouteName() string
	OwnerModule() string
	// HandlerRef is the dotted handler reference, empty on a command
	// group without its own handler.
	HandlerRef() string
	InjectNames() []string
	MiddlewareNames() []string
	Gate() Gate
}

func (c *Command) RouteKind() Kind           { return KindCommand }
func (c *Command) RouteName() string         { return c.Name }
func (c *Command) OwnerModule() string       { return c.Module }
func (c *Command) HandlerRef() string        { return c.Handler }
func (c *Command) InjectNames() []string     { return c.Inject }
func (c *Command) MiddlewareNames() []string { return c.Middlewares }
func (c *Command) Gate() Gate {
	return Gate{
		Permissions:   c.Permissions,
		Cooldown:      c.Cooldown,
		MaxConcurrent: c.MaxConcurrent,
		ResourceKey:   c.ResourceKey,
		GuildOnly:     c.GuildOnly,
	}
}

func (c *Component) RouteKind() Kind           { return KindComponent }
func (c *Component) RouteName() string         { return c.Name }
func (c *Component) OwnerModule() string       { return c.Module }
func (c *Component) HandlerRef() string        { return c.Handler }
func (c *Component) InjectNames() []string     { return c.Inject }
func (c *Component) MiddlewareNames() []string { return c.Middlewares }
func (c *Component) Gate() Gate {
	return Gate{
		Permissions: c.Permissions,
		Cooldown:    c.Cooldown,
		TTL:         c.TTL,
	}
}

func (e *Event) RouteKind() Kind           { return KindEvent }
func (e *Event) RouteName() string         { return e.Name }
func (e *Event) OwnerModule() string       { return e.Module }
func (e *Event) HandlerRef() string        { return e.Handler }
func (e *Event) InjectNames() []string     { return e.Inject }
func (e *Event) MiddlewareNames() []string { return nil }
func (e *Event) Gate() Gate                { return Gate{} }

func (t *Task) RouteKind() Kind           { return KindTask }
func (t *Task) RouteName() string         { return t.Name }
func (t *Task) OwnerModule() string       { return t.Module }
func (t *Task) HandlerRef() string        { return t.Handler }
func (t *Task) InjectNames() []string     { return t.Inject }
func (t *Task) MiddlewareNames() []string { return nil }
func (t *Task) Gate() Gate                { return Gate{} }
