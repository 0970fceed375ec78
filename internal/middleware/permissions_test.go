package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/wardengo/internal/platform"
	"github.com/vk/wardengo/internal/route"
)

func TestPermissions(t *testing.T) {
	testCases := []struct {
		name        string
		permissions []string
		guildOnly   bool
		guildID     string
		member      *platform.Member
		expectRan   bool
		expectDeny  string
	}{
		{
			name:      "no constraints pass",
			guildID:   "guild-1",
			member:    &platform.Member{User: platform.User{ID: "u1"}},
			expectRan: true,
		},
		{
			name:       "guild only denied outside guild",
			guildOnly:  true,
			member:     &platform.Member{User: platform.User{ID: "u1"}},
			expectDeny: "inside a server",
		},
		{
			name:      "guild only passes inside guild",
			guildOnly: true,
			guildID:   "guild-1",
			member:    &platform.Member{User: platform.User{ID: "u1"}},
			expectRan: true,
		},
		{
			name:        "missing permission denied",
			permissions: []string{"kick_members"},
			guildID:     "guild-1",
			member: &platform.Member{
				User:        platform.User{ID: "u1"},
				Permissions: platform.PermissionSendMessages,
			},
			expectDeny: "kick_members",
		},
		{
			name:        "permission satisfied",
			permissions: []string{"kick_members"},
			guildID:     "guild-1",
			member: &platform.Member{
				User:        platform.User{ID: "u1"},
				Permissions: platform.PermissionKickMembers | platform.PermissionSendMessages,
			},
			expectRan: true,
		},
		{
			name:        "administrator overrides",
			permissions: []string{"ban_members", "manage_guild"},
			guildID:     "guild-1",
			member: &platform.Member{
				User:        platform.User{ID: "u1"},
				Permissions: platform.PermissionAdministrator,
			},
			expectRan: true,
		},
		{
			name:        "no member denied",
			permissions: []string{"kick_members"},
			guildID:     "guild-1",
			member:      nil,
			expectDeny:  "You need",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &sessionRecorder{}
			call := testCall(rec, "u1", 0)
			call.Event.GuildID = tc.guildID
			call.Event.Member = tc.member

			rt := &route.Command{
				Meta:        route.Meta{Module: "moderation"},
				Name:        "warn",
				Handler:     "moderation.warn",
				Permissions: tc.permissions,
				GuildOnly:   tc.guildOnly,
			}

			ran, err := runGate(t, Permissions(), call, rt)
			require.NoError(t, err)
			assert.Equal(t, tc.expectRan, ran)

			if tc.expectDeny == "" {
				assert.Equal(t, 0, rec.replyCount())
				return
			}
			msg, ok := rec.lastReply()
			require.True(t, ok, "expected a denial reply")
			assert.Contains(t, msg.Content, tc.expectDeny)
			assert.True(t, msg.Ephemeral, "denials must be ephemeral")
		})
	}
}

func TestPermissions_UnknownNameIsAnError(t *testing.T) {
	rec := &sessionRecorder{}
	call := testCall(rec, "u1", platform.PermissionAdministrator)
	rt := &route.Command{
		Meta:        route.Meta{Module: "moderation"},
		Name:        "warn",
		Handler:     "moderation.warn",
		Permissions: []string{"made_up"},
	}

	ran, err := runGate(t, Permissions(), call, rt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "made_up")
	assert.False(t, ran)
	assert.Equal(t, 0, rec.replyCount())
}
