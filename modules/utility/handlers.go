package utility

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/wardengo/internal/ctxlog"
	"github.com/vk/wardengo/internal/handler"
)

// ping answers immediately; it exists to prove the dispatch path works.
func (m *Module) ping(ctx context.Context, call *handler.Context) error {
	return call.Reply(ctx, "Pong!")
}

// uptime reports how long the process has been running.
func (m *Module) uptime(ctx context.Context, call *handler.Context) error {
	clock, err := clockFrom(call)
	if err != nil {
		return err
	}
	return call.Reply(ctx, fmt.Sprintf("Up for %s.", clock.Uptime().Truncate(time.Second)))
}

// feedbackSubmit files a modal submission into the inbox. The topic rides
// in the modal's custom id; the free-text body arrives in the payload.
func (m *Module) feedbackSubmit(ctx context.Context, call *handler.Context) error {
	inbox, err := inboxFrom(call)
	if err != nil {
		return err
	}
	topic, ok := call.ParamString("topic")
	if !ok {
		return errors.New("feedback: pattern did not yield a topic")
	}
	message, _ := call.Event.Payload["message"].(string)
	if message == "" {
		return call.Reply(ctx, "The feedback form came back empty. Try again?")
	}

	userID := ""
	if call.Event.Member != nil {
		userID = call.Event.Member.User.ID
	}
	inbox.Add(Feedback{
		Topic:   topic,
		Message: message,
		UserID:  userID,
		GuildID: call.Event.GuildID,
		At:      time.Now(),
	})

	ctxlog.FromContext(ctx).Info("Feedback received.", "topic", topic, "user", userID)
	return call.Reply(ctx, fmt.Sprintf("Thanks! Your %s feedback is filed.", topic))
}

// heartbeat keeps a liveness trace in the logs and, when configured, in a
// status channel.
func (m *Module) heartbeat(ctx context.Context, call *handler.Context) error {
	clock, err := clockFrom(call)
	if err != nil {
		return err
	}
	up := clock.Uptime().Truncate(time.Second)
	ctxlog.FromContext(ctx).Debug("Heartbeat.", "uptime", up)

	channel := call.SettingString("status_channel", "")
	if channel == "" {
		return nil
	}
	return call.Send(ctx, channel, fmt.Sprintf("warden alive, up %s", up))
}
