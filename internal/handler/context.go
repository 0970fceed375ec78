package handler

import (
	"context"
	"fmt"

	"github.com/vk/wardengo/internal/platform"
	"github.com/vk/wardengo/internal/route"
	"github.com/zclconf/go-cty/cty"
)

// Func is the signature every registered handler implements. The context
// carries cancellation and the request-scoped logger; call carries
// everything else.
type Func func(ctx context.Context, call *Context) error

// Context is the request-scoped view a handler gets of one dispatch.
type Context struct {
	// Event is the inbound gateway event that triggered the dispatch.
	// Task runs synthesize an event with only ID, Name and ReceivedAt set.
	Event *platform.Event

	// Kind and Route identify the matched route; Module is its owner.
	Kind   route.Kind
	Route  string
	Module string

	// Params holds the typed values extracted by the route's pattern for
	// components, or the interaction's option values for commands.
	Params map[string]any

	// Services is the container.Resolve result for the route's inject
	// list: full names plus short aliases.
	Services map[string]any

	// Settings is the owning module's manifest settings block.
	Settings map[string]cty.Value

	// Session is the outbound platform surface.
	Session platform.Session

	// Ephemeral mirrors the route config; Reply honors it.
	Ephemeral bool
}

// Reply answers the triggering interaction.
func (c *Context) Reply(ctx context.Context, content string) error {
	if c.Event == nil || c.Event.Interaction == nil {
		return fmt.Errorf("route %s.%s: no interaction to reply to", c.Module, c.Route)
	}
	return c.Session.Reply(ctx, c.Event.Interaction, platform.Message{
		Content:   content,
		Ephemeral: c.Ephemeral,
	})
}

// Send posts a plain message to a channel.
func (c *Context) Send(ctx context.Context, channelID, content string) error {
	return c.Session.Send(ctx, channelID, platform.Message{Content: content})
}

// ParamString returns a string parameter by name.
func (c *Context) ParamString(name string) (string, bool) {
	v, ok := c.Params[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ParamInt returns an int parameter by name.
func (c *Context) ParamInt(name string) (int, bool) {
	v, ok := c.Params[name]
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

// Service returns a resolved service by name (full or alias).
func (c *Context) Service(name string) (any, bool) {
	v, ok := c.Services[name]
	return v, ok
}

// SettingString reads a string setting, falling back when absent or not a
// string.
func (c *Context) SettingString(name, fallback string) string {
	v, ok := c.Settings[name]
	if !ok || v.Type() != cty.String || v.IsNull() {
		return fallback
	}
	return v.AsString()
}

// SettingInt reads an integer setting.
func (c *Context) SettingInt(name string, fallback int) int {
	v, ok := c.Settings[name]
	if !ok || v.Type() != cty.Number || v.IsNull() {
		return fallback
	}
	n, _ := v.AsBigFloat().Int64()
	return int(n)
}

// SettingBool reads a boolean setting.
func (c *Context) SettingBool(name string, fallback bool) bool {
	v, ok := c.Settings[name]
	if !ok || v.Type() != cty.Bool || v.IsNull() {
		return fallback
	}
	return v.True()
}

// SettingStringList reads a list-of-strings setting. Absent, mistyped or
// partially mistyped values fall back.
func (c *Context) SettingStringList(name string, fallback []string) []string {
	v, ok := c.Settings[name]
	if !ok || v.IsNull() || !v.CanIterateElements() {
		return fallback
	}
	var out []string
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		if ev.Type() != cty.String || ev.IsNull() {
			return fallback
		}
		out = append(out, ev.AsString())
	}
	return out
}
