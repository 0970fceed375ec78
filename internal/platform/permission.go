package platform

import (
	"fmt"
	"sort"
	"strings"
)

// Permission is the guild permission bitfield. Bit values follow the
// platform's wire format, so a raw bitfield from the gateway can be used
// directly.
type Permission uint64

const (
	PermissionCreateInstantInvite Permission = 1 << 0
	PermissionKickMembers         Permission = 1 << 1
	PermissionBanMembers          Permission = 1 << 2
	PermissionAdministrator       Permission = 1 << 3
	PermissionManageChannels      Permission = 1 << 4
	PermissionManageGuild         Permission = 1 << 5
	PermissionAddReactions        Permission = 1 << 6
	PermissionViewAuditLog        Permission = 1 << 7
	PermissionViewChannel         Permission = 1 << 10
	PermissionSendMessages        Permission = 1 << 11
	PermissionManageMessages      Permission = 1 << 13
	PermissionEmbedLinks          Permission = 1 << 14
	PermissionAttachFiles         Permission = 1 << 15
	PermissionMentionEveryone     Permission = 1 << 17
	PermissionManageNicknames     Permission = 1 << 27
	PermissionManageRoles         Permission = 1 << 28
	PermissionManageWebhooks      Permission = 1 << 29
	PermissionModerateMembers     Permission = 1 << 40
)

// permissionNames maps the snake_case names used in route files to bits.
var permissionNames = map[string]Permission{
	"create_instant_invite": PermissionCreateInstantInvite,
	"kick_members":          PermissionKickMembers,
	"ban_members":           PermissionBanMembers,
	"administrator":         PermissionAdministrator,
	"manage_channels":       PermissionManageChannels,
	"manage_guild":          PermissionManageGuild,
	"add_reactions":         PermissionAddReactions,
	"view_audit_log":        PermissionViewAuditLog,
	"view_channel":          PermissionViewChannel,
	"send_messages":         PermissionSendMessages,
	"manage_messages":       PermissionManageMessages,
	"embed_links":           PermissionEmbedLinks,
	"attach_files":          PermissionAttachFiles,
	"mention_everyone":      PermissionMentionEveryone,
	"manage_nicknames":      PermissionManageNicknames,
	"manage_roles":          PermissionManageRoles,
	"manage_webhooks":       PermissionManageWebhooks,
	"moderate_members":      PermissionModerateMembers,
}

// ParsePermission resolves one snake_case permission name.
func ParsePermission(name string) (Permission, error) {
	p, ok := permissionNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown permission %q", name)
	}
	return p, nil
}

// ParsePermissions resolves a list of names into one combined bitfield.
func ParsePermissions(names []string) (Permission, error) {
	var combined Permission
	for _, name := range names {
		p, err := ParsePermission(name)
		if err != nil {
			return 0, err
		}
		combined |= p
	}
	return combined, nil
}

// Has reports whether p grants every bit of required. Administrator
// grants everything.
func (p Permission) Has(required Permission) bool {
	if p&PermissionAdministrator != 0 {
		return true
	}
	return p&required == required
}

// Names returns the snake_case names of the bits set in p, sorted.
func (p Permission) Names() []string {
	var out []string
	for name, bit := range permissionNames {
		if p&bit != 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (p Permission) String() string {
	names := p.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
