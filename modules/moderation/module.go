// Package moderation is the member-discipline module: warnings, kicks,
// bans behind a confirmation button, a banned-word filter, and timed
// punishment expiry. Its route files live alongside this package and are
// hot reloadable; the handlers here are compiled in.
package moderation

import (
	"errors"
	"fmt"

	"github.com/vk/wardengo/internal/container"
	"github.com/vk/wardengo/internal/handler"
)

// Module implements the handler.Module interface for this package.
type Module struct{}

// Name ties the handlers to the moderation module directory.
func (m *Module) Name() string {
	return "moderation"
}

// Register registers every moderation handler with the kernel.
func (m *Module) Register(r *handler.Registry) {
	r.Register("moderation.warn", m.warn)
	r.Register("moderation.warnings_list", m.warningsList)
	r.Register("moderation.warnings_clear", m.warningsClear)
	r.Register("moderation.kick", m.kick)
	r.Register("moderation.ban", m.ban)
	r.Register("moderation.unban", m.unban)
	r.Register("moderation.confirm_ban", m.confirmBan)
	r.Register("moderation.filter_message", m.filterMessage)
	r.Register("moderation.expire_punishments", m.expirePunishments)
}

// RegisterServices contributes the moderation ledger to the container.
func (m *Module) RegisterServices(c *container.Container) error {
	c.Register("moderation.store", func(*container.Container) (any, error) {
		return NewStore(), nil
	})
	return nil
}

// storeFrom pulls the injected ledger out of a dispatch. Routes that use
// it declare inject = ["moderation.store"].
func storeFrom(call *handler.Context) (*Store, error) {
	v, ok := call.Service("store")
	if !ok {
		return nil, errors.New("moderation: store service not injected")
	}
	s, ok := v.(*Store)
	if !ok {
		return nil, fmt.Errorf("moderation: store service has unexpected type %T", v)
	}
	return s, nil
}

// actorID is the invoking member's user id, empty for system events.
func actorID(call *handler.Context) string {
	if call.Event == nil || call.Event.Member == nil {
		return ""
	}
	return call.Event.Member.User.ID
}
