package entitlement

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		in      string
		want    Tier
		wantErr bool
	}{
		{in: "free", want: TierFree},
		{in: " PRO ", want: TierPro},
		{in: "Divine", want: TierDivine},
		{in: "gold", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTier(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidEnumValue)
				var enumErr *InvalidEnumError
				require.True(t, errors.As(err, &enumErr))
				assert.Equal(t, "tier", enumErr.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTierOrdering(t *testing.T) {
	assert.Equal(t, []Tier{TierFree, TierBasic, TierPro, TierDivine}, Tiers())
	assert.Negative(t, TierFree.Compare(TierBasic))
	assert.Positive(t, TierDivine.Compare(TierPro))
	assert.Zero(t, TierPro.Compare(TierPro))

	assert.False(t, TierFree.IsPaid())
	assert.True(t, TierBasic.IsPaid())
	assert.False(t, Tier("gold").IsPaid())
}

func TestMentorAccessScenario(t *testing.T) {
	ok, err := CanAccessFeature(TierFree, FeatureMentorAccess)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = CanAccessFeature(TierBasic, FeatureMentorAccess)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanAccessFeature_QuotaVersusUnlimited(t *testing.T) {
	ok, err := CanAccessFeature(TierBasic, FeatureWorkshops)
	require.NoError(t, err)
	assert.False(t, ok, "a finite quota is not a capability grant")

	ok, err = CanAccessFeature(TierPro, FeatureWorkshops)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetUsageLimit(t *testing.T) {
	tests := []struct {
		tier    Tier
		feature Feature
		want    int
	}{
		{TierFree, FeatureWorkshops, 3},
		{TierFree, FeatureAIInteractions, 10},
		{TierBasic, FeatureCollaborationSessions, 5},
		{TierPro, FeatureWorkshops, UnlimitedQuota},
		{TierPro, FeatureAIInteractions, 1000},
		{TierDivine, FeatureAIInteractions, UnlimitedQuota},
		{TierDivine, FeatureCertification, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier)+"/"+string(tt.feature), func(t *testing.T) {
			got, err := GetUsageLimit(tt.tier, tt.feature)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvalidEnums(t *testing.T) {
	_, err := GetTierInfo("gold")
	assert.ErrorIs(t, err, ErrInvalidEnumValue)

	_, err = CanAccessFeature(TierPro, "teleport")
	assert.ErrorIs(t, err, ErrInvalidEnumValue)

	_, err = GetUsageLimit("gold", FeatureWorkshops)
	assert.ErrorIs(t, err, ErrInvalidEnumValue)

	_, err = ParseFeature("Workshops")
	assert.ErrorIs(t, err, ErrInvalidEnumValue)
}

func TestAllowanceMonotonicity(t *testing.T) {
	tiers := Tiers()
	for i := 1; i < len(tiers); i++ {
		lower, higher := tiers[i-1], tiers[i]
		for _, f := range Features() {
			lo, err := AllowanceFor(lower, f)
			require.NoError(t, err)
			hi, err := AllowanceFor(higher, f)
			require.NoError(t, err)
			assert.Truef(t, hi.AtLeast(lo), "%s/%s = %s is less generous than %s/%s = %s",
				higher, f, hi, lower, f, lo)
		}
	}
}

func TestEveryTierDefinesEveryFeature(t *testing.T) {
	for _, tier := range Tiers() {
		info, err := GetTierInfo(tier)
		require.NoError(t, err)
		assert.Len(t, info.Limits, len(Features()), tier)
	}
}

func TestGetTierInfo_ReturnsCopy(t *testing.T) {
	first, err := GetTierInfo(TierFree)
	require.NoError(t, err)
	first.Limits[FeatureMentorAccess] = Flag(true)
	first.Name = "changed"

	second, err := GetTierInfo(TierFree)
	require.NoError(t, err)
	assert.Equal(t, "Free Seeker", second.Name)
	assert.Equal(t, Flag(false), second.Limits[FeatureMentorAccess])

	ok, err := CanAccessFeature(TierFree, FeatureMentorAccess)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLookupsAreIdempotent(t *testing.T) {
	for _, tier := range Tiers() {
		a, err := GetTierInfo(tier)
		require.NoError(t, err)
		b, err := GetTierInfo(tier)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
	for _, rank := range Ranks() {
		a, err := GetRankInfo(rank)
		require.NoError(t, err)
		b, err := GetRankInfo(rank)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}
