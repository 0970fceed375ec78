package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/wardengo/internal/ctxlog"
	"github.com/vk/wardengo/internal/handler"
)

// confirmBan completes the two-step ban once the confirmation button is
// pressed. The target rides in the button's custom id, so the press
// carries everything needed without keeping state between the steps.
func (m *Module) confirmBan(ctx context.Context, call *handler.Context) error {
	store, err := storeFrom(call)
	if err != nil {
		return err
	}
	target, ok := call.ParamString("target")
	if !ok {
		return errors.New("confirm_ban: pattern did not yield a target")
	}

	days := call.SettingInt("ban_days", 7)
	var expires time.Time
	if days > 0 {
		expires = time.Now().AddDate(0, 0, days)
	}

	store.Punish(Punishment{
		GuildID:   call.Event.GuildID,
		UserID:    target,
		Kind:      "ban",
		Reason:    "confirmed via button",
		IssuedBy:  actorID(call),
		IssuedAt:  time.Now(),
		ExpiresAt: expires,
	})

	ctxlog.FromContext(ctx).Info("Ban confirmed.", "guild", call.Event.GuildID, "user", target, "days", days)

	length := "permanently"
	if days > 0 {
		length = fmt.Sprintf("until %s", expires.Format("2006-01-02"))
	}
	m.logLine(ctx, call, fmt.Sprintf("Banned <@%s> %s (confirmed by <@%s>)", target, length, actorID(call)))
	return call.Reply(ctx, fmt.Sprintf("Banned <@%s> %s.", target, length))
}
