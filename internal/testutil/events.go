package testutil

import (
	"time"

	"github.com/vk/wardengo/internal/platform"
)

// Default identities the event constructors stamp onto synthetic events.
// Tests that care set their own values on the returned event.
const (
	TestGuildID   = "guild-1"
	TestChannelID = "channel-1"
	TestUserID    = "user-1"
)

func testMember() *platform.Member {
	return &platform.Member{
		User:     platform.User{ID: TestUserID, Username: "tester"},
		JoinedAt: time.Now(),
	}
}

// CommandEvent builds an interaction_create event invoking a bare
// command.
func CommandEvent(interactionID, command string, options map[string]any) *platform.Event {
	return &platform.Event{
		Name:      platform.EventInteractionCreate,
		GuildID:   TestGuildID,
		ChannelID: TestChannelID,
		Member:    testMember(),
		Interaction: &platform.Interaction{
			ID:        interactionID,
			Kind:      platform.InteractionCommand,
			Command:   command,
			Options:   options,
			CreatedAt: time.Now(),
		},
		ReceivedAt: time.Now(),
	}
}

// SubcommandEvent builds an interaction_create event invoking a
// subcommand within a command group.
func SubcommandEvent(interactionID, command, subcommand string, options map[string]any) *platform.Event {
	ev := CommandEvent(interactionID, command, options)
	ev.Interaction.Subcommand = subcommand
	return ev
}

// ComponentEvent builds an interaction_create event for a component
// press or submission.
func ComponentEvent(interactionID string, kind platform.ComponentKind, customID string) *platform.Event {
	return &platform.Event{
		Name:      platform.EventInteractionCreate,
		GuildID:   TestGuildID,
		ChannelID: TestChannelID,
		Member:    testMember(),
		Interaction: &platform.Interaction{
			ID:        interactionID,
			Kind:      platform.InteractionComponent,
			Component: kind,
			CustomID:  customID,
			CreatedAt: time.Now(),
		},
		ReceivedAt: time.Now(),
	}
}

// ButtonEvent builds a button press.
func ButtonEvent(interactionID, customID string) *platform.Event {
	return ComponentEvent(interactionID, platform.ComponentButton, customID)
}

// ModalEvent builds a modal submission carrying payload fields.
func ModalEvent(interactionID, customID string, payload map[string]any) *platform.Event {
	ev := ComponentEvent(interactionID, platform.ComponentModal, customID)
	ev.Payload = payload
	return ev
}

// GatewayEvent builds a plain gateway event with a payload.
func GatewayEvent(name string, payload map[string]any) *platform.Event {
	return &platform.Event{
		Name:       name,
		GuildID:    TestGuildID,
		ChannelID:  TestChannelID,
		Member:     testMember(),
		Payload:    payload,
		ReceivedAt: time.Now(),
	}
}
