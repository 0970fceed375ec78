package platform

// Canonical gateway event names. Route files subscribe by these strings,
// so the loader validates event blocks against this catalog.
const (
	EventReady             = "ready"
	EventResumed           = "resumed"
	EventInteractionCreate = "interaction_create"
	EventMessageCreate     = "message_create"
	EventMessageUpdate     = "message_update"
	EventMessageDelete     = "message_delete"
	EventGuildMemberAdd    = "guild_member_add"
	EventGuildMemberRemove = "guild_member_remove"
	EventGuildMemberUpdate = "guild_member_update"
	EventGuildBanAdd       = "guild_ban_add"
	EventGuildBanRemove    = "guild_ban_remove"
)

// EventTick is the synthetic event the scheduler submits for each task
// run. It is deliberately absent from the gateway catalog, so event
// route blocks cannot subscribe to it.
const EventTick = "task_tick"

// TaskPayloadKey is the payload field naming the task a tick is for.
const TaskPayloadKey = "task"

var knownEvents = map[string]struct{}{
	EventReady:             {},
	EventResumed:           {},
	EventInteractionCreate: {},
	EventMessageCreate:     {},
	EventMessageUpdate:     {},
	EventMessageDelete:     {},
	EventGuildMemberAdd:    {},
	EventGuildMemberRemove: {},
	EventGuildMemberUpdate: {},
	EventGuildBanAdd:       {},
	EventGuildBanRemove:    {},
}

// KnownEvent reports whether name is part of the gateway event catalog.
func KnownEvent(name string) bool {
	_, ok := knownEvents[name]
	return ok
}
