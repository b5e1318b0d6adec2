package entitlement

// Progress towards the next rank.
type Progress struct {
	// Percent is in [0, 100].
	Percent float64 `json:"progress"`
	// XPNeeded goes negative when xp already passed the next threshold and
	// the caller has not promoted the rank yet.
	XPNeeded int `json:"xpNeeded"`
}

// ProgressToNextRank measures xp within r's band. The top rank is always
// {100, 0}.
func ProgressToNextRank(xp int, r Rank) (Progress, error) {
	cur, err := GetRankInfo(r)
	if err != nil {
		return Progress{}, err
	}
	next, ok, _ := NextRankInfo(r)
	if !ok {
		return Progress{Percent: 100, XPNeeded: 0}, nil
	}

	span := next.XPRequired - cur.MinXP
	pct := 100 * float64(xp-cur.MinXP) / float64(span)
	pct = min(max(pct, 0), 100)

	return Progress{Percent: pct, XPNeeded: next.XPRequired - xp}, nil
}

// LevelFromXP is the single level formula: one level per 100 XP, starting
// at level 1. Negative XP stays at level 1.
func LevelFromXP(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/100 + 1
}

// Snapshot bundles what a profile page shows for a member.
type Snapshot struct {
	XP       int       `json:"xp"`
	Level    int       `json:"level"`
	Rank     RankInfo  `json:"rank"`
	Progress Progress  `json:"progress"`
	Next     *NextRank `json:"next,omitempty"`
	Tier     TierInfo  `json:"tier"`
}

// TakeSnapshot derives rank, level and progress from xp and attaches the
// tier's record.
func TakeSnapshot(xp int, t Tier) (Snapshot, error) {
	tier, err := GetTierInfo(t)
	if err != nil {
		return Snapshot{}, err
	}

	r := RankFromXP(xp)
	info, err := GetRankInfo(r)
	if err != nil {
		return Snapshot{}, err
	}
	prog, err := ProgressToNextRank(xp, r)
	if err != nil {
		return Snapshot{}, err
	}

	s := Snapshot{
		XP:       xp,
		Level:    LevelFromXP(xp),
		Rank:     info,
		Progress: prog,
		Tier:     tier,
	}
	if next, ok, _ := NextRankInfo(r); ok {
		s.Next = &next
	}
	return s, nil
}
