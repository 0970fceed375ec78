package middleware

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/pipeline"
	"github.com/vk/wardengo/internal/platform"
	"github.com/vk/wardengo/internal/route"
)

// sessionRecorder captures outbound replies for assertions.
type sessionRecorder struct {
	mu      sync.Mutex
	replies []platform.Message
}

func (s *sessionRecorder) Reply(_ context.Context, _ *platform.Interaction, msg platform.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, msg)
	return nil
}

func (s *sessionRecorder) Defer(context.Context, *platform.Interaction, bool) error { return nil }

func (s *sessionRecorder) Followup(context.Context, *platform.Interaction, platform.Message) error {
	return nil
}

func (s *sessionRecorder) Send(context.Context, string, platform.Message) error { return nil }

func (s *sessionRecorder) lastReply() (platform.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.replies) == 0 {
		return platform.Message{}, false
	}
	return s.replies[len(s.replies)-1], true
}

func (s *sessionRecorder) replyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.replies)
}

// testCall builds a command interaction dispatch by the given user.
func testCall(sess platform.Session, userID string, perms platform.Permission) *handler.Context {
	return &handler.Context{
		Event: &platform.Event{
			ID:        "ev-1",
			Name:      "interaction_create",
			GuildID:   "guild-1",
			ChannelID: "chan-1",
			Member: &platform.Member{
				User:        platform.User{ID: userID, Username: "someone"},
				Permissions: perms,
			},
			Interaction: &platform.Interaction{
				ID:        "ic-1",
				Kind:      platform.InteractionCommand,
				Command:   "warn",
				Token:     "tok",
				CreatedAt: time.Now(),
			},
			ReceivedAt: time.Now(),
		},
		Kind:    route.KindCommand,
		Route:   "warn",
		Module:  "moderation",
		Session: sess,
	}
}

// runGate executes one middleware with a recording final handler.
func runGate(t *testing.T, mw pipeline.Middleware, call *handler.Context, rt route.Route) (bool, error) {
	t.Helper()
	ran := false
	err := mw(context.Background(), call, rt, func() error {
		ran = true
		return nil
	})
	return ran, err
}
