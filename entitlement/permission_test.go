package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionMonotonicity(t *testing.T) {
	tiers := Tiers()
	for i := 1; i < len(tiers); i++ {
		lower, err := Permissions(tiers[i-1])
		require.NoError(t, err)
		for _, p := range lower {
			ok, err := HasPermission(tiers[i], p)
			require.NoError(t, err)
			assert.Truef(t, ok, "%s has %s but %s does not", tiers[i-1], p, tiers[i])
		}
	}
}

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name string
		tier Tier
		perm Permission
		want bool
	}{
		{"free reads workshops", TierFree, Permission{ResourceWorkshops, ActionRead}, true},
		{"free cannot execute workshops", TierFree, Permission{ResourceWorkshops, ActionExecute}, false},
		{"basic executes workshops", TierBasic, Permission{ResourceWorkshops, ActionExecute}, true},
		{"basic has no analytics", TierBasic, Permission{ResourceAnalytics, ActionRead}, false},
		{"pro reads analytics", TierPro, Permission{ResourceAnalytics, ActionRead}, true},
		{"pro has no api", TierPro, Permission{ResourceAPI, ActionExecute}, false},
		{"divine uses api", TierDivine, Permission{ResourceAPI, ActionExecute}, true},
		{"unknown resource", TierDivine, Permission{"billing", ActionRead}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HasPermission(tt.tier, tt.perm)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasPermission_InvalidTier(t *testing.T) {
	_, err := HasPermission("gold", Permission{ResourceWorkshops, ActionRead})
	assert.ErrorIs(t, err, ErrInvalidEnumValue)

	_, err = Permissions("gold")
	assert.ErrorIs(t, err, ErrInvalidEnumValue)
}

func TestPermissions_ReturnsCopy(t *testing.T) {
	list, err := Permissions(TierFree)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	list[0] = Permission{ResourceAPI, ActionExecute}

	ok, err := HasPermission(TierFree, Permission{ResourceAPI, ActionExecute})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParsePermission(t *testing.T) {
	p, err := ParsePermission("ai_mentor:execute")
	require.NoError(t, err)
	assert.Equal(t, Permission{ResourceAIMentor, ActionExecute}, p)
	assert.Equal(t, "ai_mentor:execute", p.String())

	for _, bad := range []string{"", "workshops", ":read", "workshops:fly"} {
		_, err := ParsePermission(bad)
		assert.ErrorIs(t, err, ErrInvalidEnumValue, bad)
	}
}
