package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/wardengo/internal/ctxlog"
	"github.com/vk/wardengo/internal/handler"
)

// expirePunishments sweeps the ledger for punishments whose term has
// ended and announces each lift in the log channel.
func (m *Module) expirePunishments(ctx context.Context, call *handler.Context) error {
	store, err := storeFrom(call)
	if err != nil {
		return err
	}

	expired := store.ExpireDue(time.Now())
	logger := ctxlog.FromContext(ctx)
	if len(expired) == 0 {
		logger.Debug("No punishments due for expiry.")
		return nil
	}

	for _, p := range expired {
		logger.Info("Punishment expired.", "guild", p.GuildID, "user", p.UserID, "kind", p.Kind)
		m.logLine(ctx, call, fmt.Sprintf("The %s on <@%s> has expired.", p.Kind, p.UserID))
	}
	return nil
}
