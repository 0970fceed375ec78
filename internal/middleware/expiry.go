package middleware

import (
	"context"
	"time"

	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/pipeline"
	"github.com/vk/wardengo/internal/route"
)

// Expiry builds the stale-component gate. Confirmation buttons and menus
// declare a ttl in their route config; an interaction against a message
// older than that gets an expiry notice instead of a dispatch. Messages
// whose age is unknown pass through.
func Expiry() pipeline.Middleware {
	return func(ctx context.Context, call *handler.Context, rt route.Route, next pipeline.Next) error {
		ttl := rt.Gate().TTL
		if ttl <= 0 {
			return next()
		}
		if call.Event == nil || call.Event.Interaction == nil {
			return next()
		}
		posted := call.Event.Interaction.CreatedAt
		if posted.IsZero() {
			return next()
		}
		if time.Since(posted) > ttl {
			return deny(ctx, call, rt, "expiry", "This control has expired. Run the command again.")
		}
		return next()
	}
}
