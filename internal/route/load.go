// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file owns the translation from .hcl route files to the structs in
// route.go.
//
// Why decode into intermediate hcl* structs first?
//
// The gohcl decode target dictates the file format: labels, attribute names,
// which attributes are required. Keeping those structs private and separate
// from the public route structs means the file format can evolve (or grow an
// alternative format) without every consumer of a Command or Task changing,
// and it gives the conversion step a natural place to parse durations,
// compile patterns and stamp origin metadata.
package route

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclRouteFile represents the top-level structure of a route file for
// decoding. The three component namespaces are distinct block types sharing
// one body shape.
type hclRouteFile struct {
	Commands    []*hclCommand   `hcl:"command,block"`
	Buttons     []*hclComponent `hcl:"button,block"`
	SelectMenus []*hclComponent `hcl:"select_menu,block"`
	Modals      []*hclComponent `hcl:"modal,block"`
	Events      []*hclEvent     `hcl:"event,block"`
	Tasks       []*hclTask      `hcl:"task,block"`
}

type hclCommand struct {
	Name          string           `hcl:"name,label"`
	Description   string           `hcl:"description,optional"`
	Handler       string           `hcl:"handler,optional"`
	Subcommands   []*hclSubcommand `hcl:"subcommand,block"`
	Middlewares   []string         `hcl:"middlewares,optional"`
	Inject        []string         `hcl:"inject,optional"`
	Permissions   []string         `hcl:"permissions,optional"`
	Cooldown      string           `hcl:"cooldown,optional"`
	MaxConcurrent int              `hcl:"max_concurrent,optional"`
	ResourceKey   string           `hcl:"resource_key,optional"`
	GuildOnly     bool             `hcl:"guild_only,optional"`
	Ephemeral     bool             `hcl:"ephemeral,optional"`
}

// hclSubcommand is one level below a command; nesting stops here.
type hclSubcommand struct {
	Name          string   `hcl:"name,label"`
	Description   string   `hcl:"description,optional"`
	Handler       string   `hcl:"handler"`
	Middlewares   []string `hcl:"middlewares,optional"`
	Inject        []string `hcl:"inject,optional"`
	Permissions   []string `hcl:"permissions,optional"`
	Cooldown      string   `hcl:"cooldown,optional"`
	MaxConcurrent int      `hcl:"max_concurrent,optional"`
	ResourceKey   string   `hcl:"resource_key,optional"`
	Ephemeral     bool     `hcl:"ephemeral,optional"`
}

type hclComponent struct {
	Name        string   `hcl:"name,label"`
	Pattern     string   `hcl:"pattern"`
	Handler     string   `hcl:"handler"`
	Middlewares []string `hcl:"middlewares,optional"`
	Inject      []string `hcl:"inject,optional"`
	Permissions []string `hcl:"permissions,optional"`
	Cooldown    string   `hcl:"cooldown,optional"`
	TTL         string   `hcl:"ttl,optional"`
}

type hclEvent struct {
	Event    string   `hcl:"event,label"`
	Name     string   `hcl:"name,label"`
	Handler  string   `hcl:"handler"`
	Inject   []string `hcl:"inject,optional"`
	Priority int      `hcl:"priority,optional"`
	Once     bool     `hcl:"once,optional"`
}

type hclTask struct {
	Name       string   `hcl:"name,label"`
	Handler    string   `hcl:"handler"`
	Inject     []string `hcl:"inject,optional"`
	Every      string   `hcl:"every"`
	RunOnStart bool     `hcl:"run_on_start,optional"`
}

// LoadFile parses and validates a single route file. Every returned route
// carries meta with SourceFile filled in.
func LoadFile(path string, meta Meta, parser *hclparse.Parser) (*File, error) {
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse route file %s: %w", path, diags)
	}

	var parsed hclRouteFile
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode route file %s: %w", path, diags)
	}

	meta.SourceFile = path
	out := &File{}

	for _, c := range parsed.Commands {
		cmd, err := newCommandFromHCL(c, meta)
		if err != nil {
			return nil, &ConfigError{File: path, Block: fmt.Sprintf("command %q", c.Name), Err: err}
		}
		out.Commands = append(out.Commands, cmd)
	}
	componentBlocks := []struct {
		typ    ComponentType
		blocks []*hclComponent
	}{
		{ComponentButton, parsed.Buttons},
		{ComponentSelectMenu, parsed.SelectMenus},
		{ComponentModal, parsed.Modals},
	}
	for _, group := range componentBlocks {
		for _, c := range group.blocks {
			comp, err := newComponentFromHCL(c, group.typ, meta)
			if err != nil {
				return nil, &ConfigError{File: path, Block: fmt.Sprintf("%s %q", group.typ, c.Name), Err: err}
			}
			out.Components = append(out.Components, comp)
		}
	}
	for _, e := range parsed.Events {
		ev, err := newEventFromHCL(e, meta)
		if err != nil {
			return nil, &ConfigError{File: path, Block: fmt.Sprintf("event %q %q", e.Event, e.Name), Err: err}
		}
		out.Events = append(out.Events, ev)
	}
	for _, tk := range parsed.Tasks {
		task, err := newTaskFromHCL(tk, meta)
		if err != nil {
			return nil, &ConfigError{File: path, Block: fmt.Sprintf("task %q", tk.Name), Err: err}
		}
		out.Tasks = append(out.Tasks, task)
	}

	return out, nil
}

func newCommandFromHCL(c *hclCommand, meta Meta) (*Command, error) {
	cooldown, err := parseOptionalDuration(c.Cooldown, "cooldown")
	if err != nil {
		return nil, err
	}

	cmd := &Command{
		Meta:          meta,
		Name:          c.Name,
		Description:   c.Description,
		Handler:       c.Handler,
		Middlewares:   c.Middlewares,
		Inject:        c.Inject,
		Permissions:   c.Permissions,
		Cooldown:      cooldown,
		MaxConcurrent: c.MaxConcurrent,
		ResourceKey:   c.ResourceKey,
		GuildOnly:     c.GuildOnly,
		Ephemeral:     c.Ephemeral,
	}
	for _, s := range c.Subcommands {
		sub, err := newSubcommandFromHCL(s, meta)
		if err != nil {
			return nil, fmt.Errorf("subcommand %q: %w", s.Name, err)
		}
		cmd.Subcommands = append(cmd.Subcommands, sub)
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func newSubcommandFromHCL(s *hclSubcommand, meta Meta) (*Command, error) {
	cooldown, err := parseOptionalDuration(s.Cooldown, "cooldown")
	if err != nil {
		return nil, err
	}

	return &Command{
		Meta:          meta,
		Name:          s.Name,
		Description:   s.Description,
		Handler:       s.Handler,
		Middlewares:   s.Middlewares,
		Inject:        s.Inject,
		Permissions:   s.Permissions,
		Cooldown:      cooldown,
		MaxConcurrent: s.MaxConcurrent,
		ResourceKey:   s.ResourceKey,
		Ephemeral:     s.Ephemeral,
	}, nil
}

func newComponentFromHCL(c *hclComponent, typ ComponentType, meta Meta) (*Component, error) {
	cooldown, err := parseOptionalDuration(c.Cooldown, "cooldown")
	if err != nil {
		return nil, err
	}
	ttl, err := parseOptionalDuration(c.TTL, "ttl")
	if err != nil {
		return nil, err
	}

	comp := &Component{
		Meta:        meta,
		Type:        typ,
		Name:        c.Name,
		Source:      c.Pattern,
		Handler:     c.Handler,
		Middlewares: c.Middlewares,
		Inject:      c.Inject,
		Permissions: c.Permissions,
		Cooldown:    cooldown,
		TTL:         ttl,
	}
	if err := comp.Compile(); err != nil {
		return nil, err
	}
	if err := comp.Validate(); err != nil {
		return nil, err
	}
	return comp, nil
}

func newEventFromHCL(e *hclEvent, meta Meta) (*Event, error) {
	ev := &Event{
		Meta:     meta,
		Event:    e.Event,
		Name:     e.Name,
		Handler:  e.Handler,
		Inject:   e.Inject,
		Priority: e.Priority,
		Once:     e.Once,
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return ev, nil
}

func newTaskFromHCL(t *hclTask, meta Meta) (*Task, error) {
	every, err := time.ParseDuration(t.Every)
	if err != nil {
		return nil, fmt.Errorf("invalid every: %w", err)
	}

	task := &Task{
		Meta:       meta,
		Name:       t.Name,
		Handler:    t.Handler,
		Inject:     t.Inject,
		Every:      every,
		RunOnStart: t.RunOnStart,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

func parseOptionalDuration(raw, field string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	return d, nil
}
