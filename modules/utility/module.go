// Package utility bundles the small operational pieces: ping, uptime, a
// feedback modal backed by an in-memory inbox, and a heartbeat task.
package utility

import (
	"errors"
	"fmt"

	"github.com/vk/wardengo/internal/container"
	"github.com/vk/wardengo/internal/handler"
)

// Module implements the handler.Module interface for this package.
type Module struct{}

// Name ties the handlers to the utility module directory.
func (m *Module) Name() string {
	return "utility"
}

// Register registers the utility handlers with the kernel.
func (m *Module) Register(r *handler.Registry) {
	r.Register("utility.ping", m.ping)
	r.Register("utility.uptime", m.uptime)
	r.Register("utility.feedback_submit", m.feedbackSubmit)
	r.Register("utility.heartbeat", m.heartbeat)
}

// RegisterServices contributes the process clock and the feedback inbox.
func (m *Module) RegisterServices(c *container.Container) error {
	// The clock is an instance, not a factory: its start time is the
	// moment the module was wired, which is what uptime should measure.
	c.RegisterInstance("utility.clock", NewClock())
	c.Register("utility.feedback", func(*container.Container) (any, error) {
		return NewInbox(), nil
	})
	return nil
}

// clockFrom pulls the injected clock out of a dispatch.
func clockFrom(call *handler.Context) (*Clock, error) {
	v, ok := call.Service("clock")
	if !ok {
		return nil, errors.New("utility: clock service not injected")
	}
	c, ok := v.(*Clock)
	if !ok {
		return nil, fmt.Errorf("utility: clock service has unexpected type %T", v)
	}
	return c, nil
}

// inboxFrom pulls the injected feedback inbox out of a dispatch.
func inboxFrom(call *handler.Context) (*Inbox, error) {
	v, ok := call.Service("feedback")
	if !ok {
		return nil, errors.New("utility: feedback service not injected")
	}
	in, ok := v.(*Inbox)
	if !ok {
		return nil, fmt.Errorf("utility: feedback service has unexpected type %T", v)
	}
	return in, nil
}
