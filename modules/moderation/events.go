package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/wardengo/internal/ctxlog"
	"github.com/vk/wardengo/internal/handler"
)

// filterMessage flags messages containing configured banned words. The
// kernel has no message-delete surface, so the filter reports to the log
// channel and leaves removal to the moderators it pings.
func (m *Module) filterMessage(ctx context.Context, call *handler.Context) error {
	words := call.SettingStringList("banned_words", nil)
	if len(words) == 0 {
		return nil
	}
	content, _ := call.Event.Payload["content"].(string)
	if content == "" {
		return nil
	}

	lowered := strings.ToLower(content)
	for _, word := range words {
		if word == "" || !strings.Contains(lowered, strings.ToLower(word)) {
			continue
		}
		ctxlog.FromContext(ctx).Info("Message flagged by word filter.",
			"guild", call.Event.GuildID, "channel", call.Event.ChannelID, "user", actorID(call), "word", word)
		m.logLine(ctx, call, fmt.Sprintf("Word filter hit in <#%s> by <@%s>: matched %q", call.Event.ChannelID, actorID(call), word))
		return nil
	}
	return nil
}
