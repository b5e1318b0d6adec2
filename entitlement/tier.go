package entitlement

import (
	"maps"
	"slices"
	"strings"
)

// Tier is a subscription level.
type Tier string

const (
	TierFree   Tier = "free"
	TierBasic  Tier = "basic"
	TierPro    Tier = "pro"
	TierDivine Tier = "divine"
)

var tierOrder = []Tier{TierFree, TierBasic, TierPro, TierDivine}

// Tiers lists every tier from least to most capable.
func Tiers() []Tier { return slices.Clone(tierOrder) }

func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", invalid("tier", s)
	}
	return t, nil
}

func (t Tier) Valid() bool { return slices.Contains(tierOrder, t) }

// IsPaid is true for every tier above free.
func (t Tier) IsPaid() bool { return t.Valid() && t != TierFree }

// Compare orders tiers by capability: negative when t < o, 0 when equal,
// positive when t > o. Invalid tiers sort first.
func (t Tier) Compare(o Tier) int {
	return slices.Index(tierOrder, t) - slices.Index(tierOrder, o)
}

// Feature names a quota or a capability flag.
type Feature string

// Quota features.
const (
	FeatureWorkshops             Feature = "workshops"
	FeatureCollaborationSessions Feature = "collaborationSessions"
	FeatureAIInteractions        Feature = "aiInteractions"
)

// Flag features.
const (
	FeatureCertification   Feature = "certification"
	FeatureMentorAccess    Feature = "mentorAccess"
	FeatureAnalytics       Feature = "analytics"
	FeatureTeamFeatures    Feature = "teamFeatures"
	FeatureCustomBranding  Feature = "customBranding"
	FeatureAPIAccess       Feature = "apiAccess"
	FeaturePrioritySupport Feature = "prioritySupport"
)

var featureOrder = []Feature{
	FeatureWorkshops,
	FeatureCollaborationSessions,
	FeatureAIInteractions,
	FeatureCertification,
	FeatureMentorAccess,
	FeatureAnalytics,
	FeatureTeamFeatures,
	FeatureCustomBranding,
	FeatureAPIAccess,
	FeaturePrioritySupport,
}

func Features() []Feature { return slices.Clone(featureOrder) }

// ParseFeature matches feature keys exactly; they are camelCase identifiers.
func ParseFeature(s string) (Feature, error) {
	f := Feature(strings.TrimSpace(s))
	if !slices.Contains(featureOrder, f) {
		return "", invalid("feature", s)
	}
	return f, nil
}

// TierInfo is the static description of a tier.
type TierInfo struct {
	Tier              Tier                  `json:"tier"`
	Name              string                `json:"name"`
	Description       string                `json:"description"`
	Limits            map[Feature]Allowance `json:"limits"`
	MonthlyPriceCents int                   `json:"monthlyPriceCents"`
	Color             string                `json:"color"`
	Icon              string                `json:"icon"`
}

var tierTable = map[Tier]TierInfo{
	TierFree: {
		Tier:        TierFree,
		Name:        "Free Seeker",
		Description: "Start the journey with the first workshops and a taste of the AI mentor.",
		Limits: map[Feature]Allowance{
			FeatureWorkshops:             Quota(3),
			FeatureCollaborationSessions: Quota(1),
			FeatureAIInteractions:        Quota(10),
			FeatureCertification:         Flag(false),
			FeatureMentorAccess:          Flag(false),
			FeatureAnalytics:             Flag(false),
			FeatureTeamFeatures:          Flag(false),
			FeatureCustomBranding:        Flag(false),
			FeatureAPIAccess:             Flag(false),
			FeaturePrioritySupport:       Flag(false),
		},
		MonthlyPriceCents: 0,
		Color:             "gray",
		Icon:              "🌱",
	},
	TierBasic: {
		Tier:        TierBasic,
		Name:        "Basic Disciple",
		Description: "More workshops, certification and access to AI mentoring.",
		Limits: map[Feature]Allowance{
			FeatureWorkshops:             Quota(10),
			FeatureCollaborationSessions: Quota(5),
			FeatureAIInteractions:        Quota(100),
			FeatureCertification:         Flag(true),
			FeatureMentorAccess:          Flag(true),
			FeatureAnalytics:             Flag(false),
			FeatureTeamFeatures:          Flag(false),
			FeatureCustomBranding:        Flag(false),
			FeatureAPIAccess:             Flag(false),
			FeaturePrioritySupport:       Flag(false),
		},
		MonthlyPriceCents: 1900,
		Color:             "blue",
		Icon:              "📘",
	},
	TierPro: {
		Tier:        TierPro,
		Name:        "Pro Evangelist",
		Description: "Every workshop, code review analytics and team collaboration.",
		Limits: map[Feature]Allowance{
			FeatureWorkshops:             Unlimited(),
			FeatureCollaborationSessions: Quota(25),
			FeatureAIInteractions:        Quota(1000),
			FeatureCertification:         Flag(true),
			FeatureMentorAccess:          Flag(true),
			FeatureAnalytics:             Flag(true),
			FeatureTeamFeatures:          Flag(true),
			FeatureCustomBranding:        Flag(false),
			FeatureAPIAccess:             Flag(false),
			FeaturePrioritySupport:       Flag(true),
		},
		MonthlyPriceCents: 4900,
		Color:             "purple",
		Icon:              "⚡",
	},
	TierDivine: {
		Tier:        TierDivine,
		Name:        "Divine Prophet",
		Description: "No ceilings: unlimited everything, custom branding and API access.",
		Limits: map[Feature]Allowance{
			FeatureWorkshops:             Unlimited(),
			FeatureCollaborationSessions: Unlimited(),
			FeatureAIInteractions:        Unlimited(),
			FeatureCertification:         Flag(true),
			FeatureMentorAccess:          Flag(true),
			FeatureAnalytics:             Flag(true),
			FeatureTeamFeatures:          Flag(true),
			FeatureCustomBranding:        Flag(true),
			FeatureAPIAccess:             Flag(true),
			FeaturePrioritySupport:       Flag(true),
		},
		MonthlyPriceCents: 9900,
		Color:             "gold",
		Icon:              "👑",
	},
}

// GetTierInfo returns a copy of the tier's static record.
func GetTierInfo(t Tier) (TierInfo, error) {
	info, ok := tierTable[t]
	if !ok {
		return TierInfo{}, invalid("tier", string(t))
	}
	info.Limits = maps.Clone(info.Limits)
	return info, nil
}

// AllowanceFor returns what tier t grants for feature f.
func AllowanceFor(t Tier, f Feature) (Allowance, error) {
	info, ok := tierTable[t]
	if !ok {
		return Allowance{}, invalid("tier", string(t))
	}
	a, ok := info.Limits[f]
	if !ok {
		return Allowance{}, invalid("feature", string(f))
	}
	return a, nil
}

// CanAccessFeature is true when the tier's flag for f is on or its quota for
// f is unlimited.
func CanAccessFeature(t Tier, f Feature) (bool, error) {
	a, err := AllowanceFor(t, f)
	if err != nil {
		return false, err
	}
	return a.Enabled(), nil
}

// GetUsageLimit returns the numeric quota for f: UnlimitedQuota when
// unlimited, 0 when f is a capability flag.
func GetUsageLimit(t Tier, f Feature) (int, error) {
	a, err := AllowanceFor(t, f)
	if err != nil {
		return 0, err
	}
	return a.Limit(), nil
}
