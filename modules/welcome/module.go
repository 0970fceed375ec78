// Package welcome greets arriving members and waves departing ones off.
// It keeps no state: everything it says comes from its module settings.
package welcome

import (
	"context"
	"strings"

	"github.com/vk/wardengo/internal/ctxlog"
	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/platform"
)

// Module implements the handler.Module interface for this package.
type Module struct{}

// Name ties the handlers to the welcome module directory.
func (m *Module) Name() string {
	return "welcome"
}

// Register registers the greeting handlers with the kernel.
func (m *Module) Register(r *handler.Registry) {
	r.Register("welcome.greet", m.greet)
	r.Register("welcome.farewell", m.farewell)
}

// greet posts the configured greeting when a member joins.
func (m *Module) greet(ctx context.Context, call *handler.Context) error {
	channel := call.SettingString("channel", "")
	if channel == "" || call.Event.Member == nil {
		return nil
	}

	message := expand(call.SettingString("message", "Welcome, {user}!"), call.Event.Member.User)
	ctxlog.FromContext(ctx).Debug("Greeting new member.", "guild", call.Event.GuildID, "user", call.Event.Member.User.ID)
	return call.Send(ctx, channel, message)
}

// farewell notes a departure in the same channel.
func (m *Module) farewell(ctx context.Context, call *handler.Context) error {
	channel := call.SettingString("channel", "")
	if channel == "" || call.Event.Member == nil {
		return nil
	}

	message := expand(call.SettingString("farewell", "{username} has left."), call.Event.Member.User)
	return call.Send(ctx, channel, message)
}

// expand fills the {user} and {username} placeholders of a greeting
// template.
func expand(template string, user platform.User) string {
	out := strings.ReplaceAll(template, "{user}", "<@"+user.ID+">")
	return strings.ReplaceAll(out, "{username}", user.Username)
}
