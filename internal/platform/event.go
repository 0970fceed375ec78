package platform

import "time"

// Event is the inbound envelope for everything the gateway delivers.
type Event struct {
	// ID is assigned at ingress and threads through logs and metrics.
	ID string
	// Name is the gateway event name, e.g. "guild_member_add".
	Name string

	GuildID   string
	ChannelID string

	// Member is the guild member the event concerns, nil outside guilds.
	Member *Member

	// Interaction is set only when Name is "interaction_create".
	Interaction *Interaction

	// Payload carries event-specific fields, e.g. "content" for
	// message_create.
	Payload map[string]any

	ReceivedAt time.Time
}

// InteractionKind separates the interaction shapes the kernel routes.
type InteractionKind string

const (
	InteractionCommand   InteractionKind = "command"
	InteractionComponent InteractionKind = "component"
)

// ComponentKind names the component surface an interaction came from.
// Matching never crosses surfaces, so it must arrive with the event.
type ComponentKind string

const (
	ComponentButton     ComponentKind = "button"
	ComponentSelectMenu ComponentKind = "select_menu"
	ComponentModal      ComponentKind = "modal"
)

// Interaction is the actionable part of an interaction_create event.
type Interaction struct {
	ID   string
	Kind InteractionKind

	// Command is the invoked command name when Kind is InteractionCommand.
	Command string
	// Subcommand is the invoked subcommand within a command group, empty
	// for a bare command.
	Subcommand string
	// Options carries the command's named option values.
	Options map[string]any

	// Component is the component surface when Kind is
	// InteractionComponent.
	Component ComponentKind
	// CustomID is the component's custom id when Kind is
	// InteractionComponent.
	CustomID string

	// Token authorizes replies to this interaction.
	Token string
	// CreatedAt is when the interaction's message was originally posted,
	// used to age out stale components.
	CreatedAt time.Time
}

// User is a platform account.
type User struct {
	ID       string
	Username string
	Bot      bool
}

// Member is a user within a guild.
type Member struct {
	User        User
	Roles       []string
	Permissions Permission
	JoinedAt    time.Time
}
