// internal/handlerid/parser_test.go
package handlerid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name       string
		raw        string
		expectErr  bool
		expectedID ID
	}{
		{
			name:       "simple reference",
			raw:        "moderation.warn",
			expectErr:  false,
			expectedID: ID{Module: "moderation", Handler: "warn"},
		},
		{
			name:       "underscores and digits",
			raw:        "utility.purge_v2",
			expectErr:  false,
			expectedID: ID{Module: "utility", Handler: "purge_v2"},
		},
		{
			name:      "error - empty string",
			raw:       "",
			expectErr: true,
		},
		{
			name:      "error - single segment",
			raw:       "warn",
			expectErr: true,
		},
		{
			name:      "error - three segments",
			raw:       "a.b.c",
			expectErr: true,
		},
		{
			name:      "error - empty segment",
			raw:       "moderation.",
			expectErr: true,
		},
		{
			name:      "error - leading digit",
			raw:       "2fast.warn",
			expectErr: true,
		},
		{
			name:      "error - uppercase",
			raw:       "Moderation.warn",
			expectErr: true,
		},
		{
			name:      "error - hyphen",
			raw:       "mod-tools.warn",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := Parse(tc.raw)

			if tc.expectErr {
				require.Error(t, err)
				assert.False(t, Valid(tc.raw))
				return
			}

			require.NoError(t, err)
			assert.True(t, tc.expectedID.Equal(id))
			assert.Equal(t, tc.raw, id.String())
			assert.True(t, Valid(tc.raw))
		})
	}
}

func TestMustParse_PanicsOnBadReference(t *testing.T) {
	assert.Panics(t, func() {
		MustParse("not-a-reference")
	})
}
