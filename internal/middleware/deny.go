package middleware

import (
	"context"

	"github.com/vk/wardengo/internal/ctxlog"
	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/platform"
	"github.com/vk/wardengo/internal/route"
)

// deny answers a gated-off dispatch and stops the chain. Denials are
// always ephemeral; only the caller needs to see them. Dispatches without
// an interaction have nothing to answer, so the denial is log-only.
func deny(ctx context.Context, call *handler.Context, rt route.Route, gate, msg string) error {
	log := ctxlog.FromContext(ctx)
	log.Debug("Dispatch denied.",
		"gate", gate,
		"kind", string(rt.RouteKind()),
		"module", rt.OwnerModule(),
		"route", rt.RouteName(),
	)
	if call.Event == nil || call.Event.Interaction == nil {
		return nil
	}
	err := call.Session.Reply(ctx, call.Event.Interaction, platform.Message{
		Content:   msg,
		Ephemeral: true,
	})
	if err != nil {
		log.Debug("Denial reply failed.", "error", err)
	}
	return nil
}

// actorID names the user a per-user gate keys on. Empty when the dispatch
// carries no member, e.g. task ticks.
func actorID(call *handler.Context) string {
	if call.Event == nil || call.Event.Member == nil {
		return ""
	}
	return call.Event.Member.User.ID
}
