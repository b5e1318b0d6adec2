package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressToNextRank(t *testing.T) {
	tests := []struct {
		name    string
		xp      int
		rank    Rank
		percent float64
		needed  int
	}{
		{"start of novice", 0, RankNovice, 0, 1000},
		{"half of novice", 500, RankNovice, 50, 500},
		{"start of practitioner", 5000, RankPractitioner, 0, 10000},
		{"quarter of apprentice", 2000, RankApprentice, 25, 3000},
		{"below band clamps to zero", -100, RankNovice, 0, 1100},
		{"past band clamps to hundred", 1200, RankNovice, 100, -200},
		{"top rank", 60000, RankProphet, 100, 0},
		{"top rank below its threshold", 10, RankProphet, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProgressToNextRank(tt.xp, tt.rank)
			require.NoError(t, err)
			assert.InDelta(t, tt.percent, got.Percent, 1e-9)
			assert.Equal(t, tt.needed, got.XPNeeded)
		})
	}
}

func TestProgressIsCompleteOnlyAtTop(t *testing.T) {
	for _, r := range Ranks() {
		info, err := GetRankInfo(r)
		require.NoError(t, err)
		p, err := ProgressToNextRank(info.MinXP, r)
		require.NoError(t, err)

		if r == RankProphet {
			assert.Equal(t, Progress{Percent: 100, XPNeeded: 0}, p)
		} else {
			assert.NotEqual(t, Progress{Percent: 100, XPNeeded: 0}, p, r)
		}
	}
}

func TestProgressToNextRank_InvalidRank(t *testing.T) {
	_, err := ProgressToNextRank(10, "wizard")
	assert.ErrorIs(t, err, ErrInvalidEnumValue)
}

func TestLevelFromXP(t *testing.T) {
	assert.Equal(t, 1, LevelFromXP(-10))
	assert.Equal(t, 1, LevelFromXP(0))
	assert.Equal(t, 1, LevelFromXP(99))
	assert.Equal(t, 2, LevelFromXP(100))
	assert.Equal(t, 51, LevelFromXP(5000))
}

func TestTakeSnapshot(t *testing.T) {
	s, err := TakeSnapshot(5000, TierBasic)
	require.NoError(t, err)

	assert.Equal(t, 5000, s.XP)
	assert.Equal(t, 51, s.Level)
	assert.Equal(t, RankPractitioner, s.Rank.Rank)
	assert.Equal(t, TierBasic, s.Tier.Tier)
	require.NotNil(t, s.Next)
	assert.Equal(t, RankArchitect, s.Next.Rank)
	assert.Equal(t, 10000, s.Progress.XPNeeded)

	top, err := TakeSnapshot(75000, TierDivine)
	require.NoError(t, err)
	assert.Nil(t, top.Next)
	assert.Equal(t, 100.0, top.Progress.Percent)

	_, err = TakeSnapshot(10, "gold")
	assert.ErrorIs(t, err, ErrInvalidEnumValue)
}
