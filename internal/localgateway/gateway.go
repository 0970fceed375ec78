// Package localgateway provides a concrete in-process implementation of
// the platform Session and Source interfaces. It backs local runs and
// integration tests: events are pushed in with Emit, outbound traffic is
// recorded and can be inspected instead of leaving the process.
package localgateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vk/wardengo/internal/ctxlog"
	"github.com/vk/wardengo/internal/platform"
)

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("localgateway: gateway is closed")

const defaultBuffer = 64

type ackState int

const (
	ackNone ackState = iota
	ackReplied
	ackDeferred
)

// Option tunes a Gateway.
type Option func(*Gateway)

// WithBuffer sets the inbound event buffer size.
func WithBuffer(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.events = make(chan *platform.Event, n)
		}
	}
}

// Gateway is an in-process event source and responder. It is safe for
// concurrent use.
type Gateway struct {
	events chan *platform.Event
	done   chan struct{}

	mu        sync.Mutex
	closed    bool
	emitters  sync.WaitGroup
	acks      map[string]ackState
	replies   map[string]platform.Message
	followups map[string][]platform.Message
	sends     map[string][]platform.Message
}

// New creates a Gateway ready to carry events.
func New(opts ...Option) *Gateway {
	g := &Gateway{
		events:    make(chan *platform.Event, defaultBuffer),
		done:      make(chan struct{}),
		acks:      make(map[string]ackState),
		replies:   make(map[string]platform.Message),
		followups: make(map[string][]platform.Message),
		sends:     make(map[string][]platform.Message),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Emit delivers an inbound event to whoever consumes Events. It blocks
// while the buffer is full and fails once the gateway is closed or the
// context expires.
func (g *Gateway) Emit(ctx context.Context, ev *platform.Event) error {
	if ev == nil {
		return errors.New("localgateway: nil event")
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrClosed
	}
	g.emitters.Add(1)
	g.mu.Unlock()
	defer g.emitters.Done()

	select {
	case g.events <- ev:
		return nil
	case <-g.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events returns the inbound event stream. The channel closes after
// Close, once every pending Emit has drained.
func (g *Gateway) Events() <-chan *platform.Event {
	return g.events
}

// Close stops delivery. In-flight Emit calls unblock with ErrClosed;
// events already buffered remain readable until the channel closes.
func (g *Gateway) Close(ctx context.Context) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	close(g.done)
	g.mu.Unlock()

	// Emitters exit via done, so this wait is short. The channel must
	// not close while any of them could still send.
	g.emitters.Wait()
	close(g.events)

	ctxlog.FromContext(ctx).Debug("Local gateway closed.")
	return nil
}

// Reply answers an interaction exactly once.
func (g *Gateway) Reply(ctx context.Context, ic *platform.Interaction, msg platform.Message) error {
	id, err := interactionID(ic)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.acks[id] != ackNone {
		return fmt.Errorf("localgateway: interaction %q already acknowledged", id)
	}
	g.acks[id] = ackReplied
	g.replies[id] = msg
	return nil
}

// Defer acknowledges an interaction without content.
func (g *Gateway) Defer(ctx context.Context, ic *platform.Interaction, ephemeral bool) error {
	id, err := interactionID(ic)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.acks[id] != ackNone {
		return fmt.Errorf("localgateway: interaction %q already acknowledged", id)
	}
	g.acks[id] = ackDeferred
	return nil
}

// Followup sends an additional message after Reply or Defer.
func (g *Gateway) Followup(ctx context.Context, ic *platform.Interaction, msg platform.Message) error {
	id, err := interactionID(ic)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.acks[id] == ackNone {
		return fmt.Errorf("localgateway: followup before acknowledging interaction %q", id)
	}
	g.followups[id] = append(g.followups[id], msg)
	return nil
}

// Send posts a message to a channel transcript.
func (g *Gateway) Send(ctx context.Context, channelID string, msg platform.Message) error {
	if channelID == "" {
		return errors.New("localgateway: channel id is empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.sends[channelID] = append(g.sends[channelID], msg)
	return nil
}

// InteractionReply returns the recorded reply for an interaction.
func (g *Gateway) InteractionReply(id string) (platform.Message, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	msg, ok := g.replies[id]
	return msg, ok
}

// Followups returns the recorded followups for an interaction, in order.
func (g *Gateway) Followups(id string) []platform.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]platform.Message, len(g.followups[id]))
	copy(out, g.followups[id])
	return out
}

// Acknowledged reports whether an interaction saw a Reply or Defer.
func (g *Gateway) Acknowledged(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.acks[id] != ackNone
}

// ChannelLog returns the messages sent to a channel, in order.
func (g *Gateway) ChannelLog(channelID string) []platform.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]platform.Message, len(g.sends[channelID]))
	copy(out, g.sends[channelID])
	return out
}

func interactionID(ic *platform.Interaction) (string, error) {
	if ic == nil {
		return "", errors.New("localgateway: nil interaction")
	}
	if ic.ID == "" {
		return "", errors.New("localgateway: interaction id is empty")
	}
	return ic.ID, nil
}

var (
	_ platform.Session = (*Gateway)(nil)
	_ platform.Source  = (*Gateway)(nil)
)
