// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file holds the per-block validation rules the loader applies before a
// route is allowed near the registry. Everything checked here is a static
// property of the route file, so a module that loads cleanly can only fail
// later for runtime reasons, never for shape.
package route

import (
	"fmt"
	"regexp"

	"github.com/vk/wardengo/internal/handlerid"
	"github.com/vk/wardengo/internal/pattern"
	"github.com/vk/wardengo/internal/platform"
)

// commandNameRegex follows the platform's slash-command naming rules:
// lowercase, digits, '_' and '-', at most 32 characters.
var commandNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)

// identRegex covers the route names used for logging and lookup only.
var identRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Validate checks the command's static shape, subcommands included.
func (c *Command) Validate() error {
	if !commandNameRegex.MatchString(c.Name) {
		return fmt.Errorf("invalid command name %q", c.Name)
	}
	if c.Handler == "" && !c.IsGroup() {
		return fmt.Errorf("command %q needs a handler or subcommands", c.Name)
	}
	if c.Handler != "" {
		if err := validateHandler(c.Handler); err != nil {
			return err
		}
	}
	if err := validatePermissions(c.Permissions); err != nil {
		return err
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative")
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("max_concurrent must not be negative")
	}

	seen := make(map[string]struct{}, len(c.Subcommands))
	for _, sub := range c.Subcommands {
		if _, dup := seen[sub.Name]; dup {
			return fmt.Errorf("duplicate subcommand %q", sub.Name)
		}
		seen[sub.Name] = struct{}{}
		if sub.IsGroup() {
			return fmt.Errorf("subcommand %q: nesting stops at one level", sub.Name)
		}
		if err := sub.Validate(); err != nil {
			return fmt.Errorf("subcommand %q: %w", sub.Name, err)
		}
	}
	return nil
}

// Compile populates Pattern from Source.
func (c *Component) Compile() error {
	p, err := pattern.Compile(c.Source)
	if err != nil {
		return err
	}
	c.Pattern = p
	return nil
}

// Validate checks the component's static shape. Compile must have run.
func (c *Component) Validate() error {
	switch c.Type {
	case ComponentButton, ComponentSelectMenu, ComponentModal:
	default:
		return fmt.Errorf("invalid component type %q", c.Type)
	}
	if !identRegex.MatchString(c.Name) {
		return fmt.Errorf("invalid component route name %q", c.Name)
	}
	if c.Pattern == nil {
		return fmt.Errorf("component %q has no compiled pattern", c.Name)
	}
	if err := validateHandler(c.Handler); err != nil {
		return err
	}
	if err := validatePermissions(c.Permissions); err != nil {
		return err
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative")
	}
	if c.TTL < 0 {
		return fmt.Errorf("ttl must not be negative")
	}
	return nil
}

// Validate checks the event subscription's static shape.
func (e *Event) Validate() error {
	if !platform.KnownEvent(e.Event) {
		return fmt.Errorf("unknown gateway event %q", e.Event)
	}
	if !identRegex.MatchString(e.Name) {
		return fmt.Errorf("invalid event route name %q", e.Name)
	}
	return validateHandler(e.Handler)
}

// Validate checks the task's static shape.
func (t *Task) Validate() error {
	if !identRegex.MatchString(t.Name) {
		return fmt.Errorf("invalid task name %q", t.Name)
	}
	if t.Every <= 0 {
		return fmt.Errorf("every must be positive")
	}
	return validateHandler(t.Handler)
}

func validateHandler(ref string) error {
	if _, err := handlerid.Parse(ref); err != nil {
		return fmt.Errorf("invalid handler reference: %w", err)
	}
	return nil
}

func validatePermissions(names []string) error {
	if _, err := platform.ParsePermissions(names); err != nil {
		return err
	}
	return nil
}
