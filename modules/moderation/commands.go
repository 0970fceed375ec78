package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vk/wardengo/internal/ctxlog"
	"github.com/vk/wardengo/internal/handler"
)

// warn records a strike and tells the moderator where the member stands
// against the guild's warning threshold.
func (m *Module) warn(ctx context.Context, call *handler.Context) error {
	store, err := storeFrom(call)
	if err != nil {
		return err
	}
	target, ok := call.ParamString("user")
	if !ok {
		return errors.New("warn: missing user option")
	}
	reason, _ := call.ParamString("reason")
	if reason == "" {
		reason = "no reason given"
	}

	count := store.AddWarning(call.Event.GuildID, target, Warning{
		UserID:      target,
		ModeratorID: actorID(call),
		Reason:      reason,
		At:          time.Now(),
	})

	logger := ctxlog.FromContext(ctx)
	logger.Info("Member warned.", "guild", call.Event.GuildID, "user", target, "count", count)

	m.logLine(ctx, call, fmt.Sprintf("Warned <@%s>: %s (warning %d)", target, reason, count))

	max := call.SettingInt("max_warnings", 3)
	if count >= max {
		return call.Reply(ctx, fmt.Sprintf("<@%s> is now at %d/%d warnings. The threshold is reached; consider /ban.", target, count, max))
	}
	return call.Reply(ctx, fmt.Sprintf("Warned <@%s> (%d/%d): %s", target, count, max, reason))
}

// warningsList shows a member's strikes.
func (m *Module) warningsList(ctx context.Context, call *handler.Context) error {
	store, err := storeFrom(call)
	if err != nil {
		return err
	}
	target, ok := call.ParamString("user")
	if !ok {
		return errors.New("warnings list: missing user option")
	}

	warns := store.Warnings(call.Event.GuildID, target)
	if len(warns) == 0 {
		return call.Reply(ctx, fmt.Sprintf("<@%s> has a clean record.", target))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<@%s> has %d warning(s):\n", target, len(warns))
	for i, w := range warns {
		fmt.Fprintf(&b, "%d. %s (by <@%s>, %s)\n", i+1, w.Reason, w.ModeratorID, w.At.Format("2006-01-02"))
	}
	return call.Reply(ctx, b.String())
}

// warningsClear wipes a member's strikes.
func (m *Module) warningsClear(ctx context.Context, call *handler.Context) error {
	store, err := storeFrom(call)
	if err != nil {
		return err
	}
	target, ok := call.ParamString("user")
	if !ok {
		return errors.New("warnings clear: missing user option")
	}

	n := store.ClearWarnings(call.Event.GuildID, target)
	ctxlog.FromContext(ctx).Info("Warnings cleared.", "guild", call.Event.GuildID, "user", target, "dropped", n)

	m.logLine(ctx, call, fmt.Sprintf("Cleared %d warning(s) for <@%s>", n, target))
	return call.Reply(ctx, fmt.Sprintf("Dropped %d warning(s) for <@%s>.", n, target))
}

// kick announces the removal. The platform call that performs it lives
// beyond the gateway boundary; the kernel's job ends at the log trail.
func (m *Module) kick(ctx context.Context, call *handler.Context) error {
	target, ok := call.ParamString("user")
	if !ok {
		return errors.New("kick: missing user option")
	}
	reason, _ := call.ParamString("reason")
	if reason == "" {
		reason = "no reason given"
	}

	ctxlog.FromContext(ctx).Info("Member kicked.", "guild", call.Event.GuildID, "user", target, "reason", reason)

	m.logLine(ctx, call, fmt.Sprintf("Kicked <@%s>: %s", target, reason))
	return call.Reply(ctx, fmt.Sprintf("Kicked <@%s>: %s", target, reason))
}

// ban starts the two-step ban: the actual punishment is recorded only
// when the confirmation button is pressed.
func (m *Module) ban(ctx context.Context, call *handler.Context) error {
	target, ok := call.ParamString("user")
	if !ok {
		return errors.New("ban: missing user option")
	}
	days := call.SettingInt("ban_days", 7)
	length := "permanently"
	if days > 0 {
		length = fmt.Sprintf("for %d day(s)", days)
	}
	return call.Reply(ctx, fmt.Sprintf(
		"About to ban <@%s> %s. Press the confirmation button (confirm_ban_%s) within 2 minutes to proceed.",
		target, length, target,
	))
}

// unban lifts an active ban.
func (m *Module) unban(ctx context.Context, call *handler.Context) error {
	store, err := storeFrom(call)
	if err != nil {
		return err
	}
	target, ok := call.ParamString("user")
	if !ok {
		return errors.New("unban: missing user option")
	}

	if !store.Lift(call.Event.GuildID, target, "ban") {
		return call.Reply(ctx, fmt.Sprintf("<@%s> has no active ban here.", target))
	}

	ctxlog.FromContext(ctx).Info("Ban lifted.", "guild", call.Event.GuildID, "user", target)
	m.logLine(ctx, call, fmt.Sprintf("Lifted the ban on <@%s>", target))
	return call.Reply(ctx, fmt.Sprintf("Lifted the ban on <@%s>.", target))
}

// logLine writes one line to the guild's moderation log channel, when one
// is configured. Trouble with the log channel never fails the action.
func (m *Module) logLine(ctx context.Context, call *handler.Context, line string) {
	channel := call.SettingString("log_channel", "")
	if channel == "" {
		return
	}
	if err := call.Send(ctx, channel, line); err != nil {
		ctxlog.FromContext(ctx).Warn("Could not write to the moderation log channel.", "channel", channel, "error", err)
	}
}
