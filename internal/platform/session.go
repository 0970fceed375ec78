package platform

import "context"

// Message is an outbound message in either a reply or a channel send.
type Message struct {
	Content string
	// Ephemeral makes an interaction reply visible only to its invoker.
	Ephemeral bool
}

// Session is the outbound surface handlers and the dispatcher talk to.
// Implementations must be safe for concurrent use.
type Session interface {
	// Reply answers an interaction. A second Reply to the same
	// interaction fails.
	Reply(ctx context.Context, ic *Interaction, msg Message) error
	// Defer acknowledges an interaction so the platform stops its
	// response timer; the actual content follows via Followup.
	Defer(ctx context.Context, ic *Interaction, ephemeral bool) error
	// Followup sends an additional message after Reply or Defer.
	Followup(ctx context.Context, ic *Interaction, msg Message) error
	// Send posts a plain message to a channel.
	Send(ctx context.Context, channelID string, msg Message) error
}

// Source delivers inbound gateway events. Close stops delivery and
// releases the underlying connection.
type Source interface {
	Events() <-chan *Event
	Close(ctx context.Context) error
}
