package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/pipeline"
	"github.com/vk/wardengo/internal/platform"
	"github.com/vk/wardengo/internal/route"
)

// Permissions builds the authorization gate. Guild-only routes invoked
// outside a guild and callers missing a required permission are denied.
func Permissions() pipeline.Middleware {
	return func(ctx context.Context, call *handler.Context, rt route.Route, next pipeline.Next) error {
		gate := rt.Gate()
		if gate.GuildOnly && (call.Event == nil || call.Event.GuildID == "") {
			return deny(ctx, call, rt, "guild_only", "This command only works inside a server.")
		}
		if len(gate.Permissions) == 0 {
			return next()
		}

		required, err := platform.ParsePermissions(gate.Permissions)
		if err != nil {
			// Route validation rejects unknown permission names at load
			// time; this is the backstop for hand-built routes.
			return fmt.Errorf("route %s/%s: %w", rt.OwnerModule(), rt.RouteName(), err)
		}

		var member *platform.Member
		if call.Event != nil {
			member = call.Event.Member
		}
		if member == nil || !member.Permissions.Has(required) {
			msg := fmt.Sprintf("You need %s to use this.", strings.Join(gate.Permissions, ", "))
			return deny(ctx, call, rt, "permissions", msg)
		}
		return next()
	}
}
