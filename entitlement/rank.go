package entitlement

import (
	"math"
	"slices"
	"strings"
)

// Rank is the XP-derived progression title, independent of the tier.
type Rank string

const (
	RankNovice       Rank = "novice"
	RankApprentice   Rank = "apprentice"
	RankPractitioner Rank = "practitioner"
	RankArchitect    Rank = "architect"
	RankProphet      Rank = "prophet"
)

// NoMaxXP is the MaxXP of the top rank.
const NoMaxXP = math.MaxInt

// RankInfo is the static description of a rank. MinXP and MaxXP are both
// inclusive; MaxXP+1 is the next rank's MinXP.
type RankInfo struct {
	Rank     Rank     `json:"rank"`
	Title    string   `json:"title"`
	MinXP    int      `json:"minXP"`
	MaxXP    int      `json:"maxXP"`
	Benefits []string `json:"benefits"`
	Color    string   `json:"color"`
	Icon     string   `json:"icon"`
}

// rankTable is ordered by MinXP.
var rankTable = []RankInfo{
	{
		Rank:     RankNovice,
		Title:    "Vibe Novice",
		MinXP:    0,
		MaxXP:    999,
		Benefits: []string{"Access to foundation workshops", "Community forum"},
		Color:    "gray",
		Icon:     "🌱",
	},
	{
		Rank:     RankApprentice,
		Title:    "Prompt Apprentice",
		MinXP:    1000,
		MaxXP:    4999,
		Benefits: []string{"Apprentice badge", "Peer code review queue"},
		Color:    "green",
		Icon:     "🔧",
	},
	{
		Rank:     RankPractitioner,
		Title:    "Flow Practitioner",
		MinXP:    5000,
		MaxXP:    14999,
		Benefits: []string{"Practitioner badge", "Host collaboration sessions", "Early access to new workshops"},
		Color:    "blue",
		Icon:     "⚙️",
	},
	{
		Rank:     RankArchitect,
		Title:    "System Architect",
		MinXP:    15000,
		MaxXP:    49999,
		Benefits: []string{"Architect badge", "Mentor other members", "Featured in the showcase"},
		Color:    "purple",
		Icon:     "🏛️",
	},
	{
		Rank:     RankProphet,
		Title:    "Vibe Prophet",
		MinXP:    50000,
		MaxXP:    NoMaxXP,
		Benefits: []string{"Prophet badge", "Author workshops", "Hall of prophets"},
		Color:    "gold",
		Icon:     "🔮",
	},
}

// Ranks lists every rank from lowest to highest.
func Ranks() []Rank {
	out := make([]Rank, len(rankTable))
	for i, r := range rankTable {
		out[i] = r.Rank
	}
	return out
}

func ParseRank(s string) (Rank, error) {
	r := Rank(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", invalid("rank", s)
	}
	return r, nil
}

func (r Rank) Valid() bool { return rankIndex(r) >= 0 }

func rankIndex(r Rank) int {
	return slices.IndexFunc(rankTable, func(i RankInfo) bool { return i.Rank == r })
}

func copyRank(i int) RankInfo {
	info := rankTable[i]
	info.Benefits = slices.Clone(info.Benefits)
	return info
}

// GetRankInfo returns a copy of the rank's static record.
func GetRankInfo(r Rank) (RankInfo, error) {
	i := rankIndex(r)
	if i < 0 {
		return RankInfo{}, invalid("rank", string(r))
	}
	return copyRank(i), nil
}

// RankFromXP returns the highest rank whose MinXP is at most xp. XP below
// every threshold, negative XP included, maps to the lowest rank.
func RankFromXP(xp int) Rank {
	for i := len(rankTable) - 1; i >= 0; i-- {
		if xp >= rankTable[i].MinXP {
			return rankTable[i].Rank
		}
	}
	return rankTable[0].Rank
}

type NextRank struct {
	Rank Rank     `json:"rank"`
	Info RankInfo `json:"info"`
	// XPRequired is the successor's MinXP.
	XPRequired int `json:"xpRequired"`
}

// NextRankInfo returns the successor of r; ok is false when r is the top rank.
func NextRankInfo(r Rank) (next NextRank, ok bool, err error) {
	i := rankIndex(r)
	if i < 0 {
		return NextRank{}, false, invalid("rank", string(r))
	}
	if i == len(rankTable)-1 {
		return NextRank{}, false, nil
	}
	info := copyRank(i + 1)
	return NextRank{Rank: info.Rank, Info: info, XPRequired: info.MinXP}, true, nil
}
