package middleware

import (
	"context"
	"time"

	"github.com/vk/wardengo/internal/ctxlog"
	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/pipeline"
	"github.com/vk/wardengo/internal/route"
)

// NameAudit is the registry name moderation routes opt into for
// action-trail logging.
const NameAudit = "audit"

// Audit records who ran what with which parameters, at info so the trail
// survives production log levels. Extras run inside the stock gates, so
// what lands here actually executed.
func Audit() pipeline.Middleware {
	return func(ctx context.Context, call *handler.Context, rt route.Route, next pipeline.Next) error {
		log := ctxlog.FromContext(ctx)
		start := time.Now()
		err := next()

		guild := ""
		if call.Event != nil {
			guild = call.Event.GuildID
		}
		attrs := []any{
			"module", rt.OwnerModule(),
			"route", rt.RouteName(),
			"kind", string(rt.RouteKind()),
			"actor", actorID(call),
			"guild", guild,
			"params", call.Params,
			"took", time.Since(start),
		}
		if err != nil {
			log.Warn("Audited action failed.", append(attrs, "error", err)...)
			return err
		}
		log.Info("Audited action.", attrs...)
		return nil
	}
}
