package entitlement

import (
	"slices"
	"strings"
)

type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionExecute Action = "execute"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExecute:
		return true
	}
	return false
}

type Resource string

const (
	ResourceWorkshops     Resource = "workshops"
	ResourceProgress      Resource = "progress"
	ResourceProfile       Resource = "profile"
	ResourceCollaboration Resource = "collaboration"
	ResourceAIMentor      Resource = "ai_mentor"
	ResourceCodeReview    Resource = "code_review"
	ResourceCertification Resource = "certification"
	ResourceAnalytics     Resource = "analytics"
	ResourceTeam          Resource = "team"
	ResourceBranding      Resource = "branding"
	ResourceAPI           Resource = "api"
)

// Permission is one (resource, action) capability.
type Permission struct {
	Resource Resource `json:"resource"`
	Action   Action   `json:"action"`
}

func (p Permission) String() string { return string(p.Resource) + ":" + string(p.Action) }

// ParsePermission reads "resource:action".
func ParsePermission(s string) (Permission, error) {
	res, act, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || res == "" {
		return Permission{}, invalid("permission", s)
	}
	p := Permission{Resource: Resource(res), Action: Action(act)}
	if !p.Action.Valid() {
		return Permission{}, invalid("action", act)
	}
	return p, nil
}

func perms(res Resource, actions ...Action) []Permission {
	out := make([]Permission, 0, len(actions))
	for _, a := range actions {
		out = append(out, Permission{Resource: res, Action: a})
	}
	return out
}

// permissionTable is built cumulatively so each tier holds every permission
// of the tier below it.
var permissionTable = func() map[Tier][]Permission {
	free := slices.Concat(
		perms(ResourceWorkshops, ActionRead),
		perms(ResourceProgress, ActionRead, ActionUpdate),
		perms(ResourceProfile, ActionRead, ActionUpdate),
		perms(ResourceCollaboration, ActionRead),
		perms(ResourceAIMentor, ActionExecute),
	)
	basic := slices.Concat(free,
		perms(ResourceWorkshops, ActionExecute),
		perms(ResourceCollaboration, ActionCreate),
		perms(ResourceCodeReview, ActionExecute),
		perms(ResourceCertification, ActionRead, ActionCreate),
	)
	pro := slices.Concat(basic,
		perms(ResourceCollaboration, ActionUpdate, ActionDelete),
		perms(ResourceAnalytics, ActionRead),
		perms(ResourceTeam, ActionCreate, ActionRead, ActionUpdate),
	)
	divine := slices.Concat(pro,
		perms(ResourceWorkshops, ActionCreate, ActionUpdate),
		perms(ResourceAnalytics, ActionExecute),
		perms(ResourceTeam, ActionDelete),
		perms(ResourceBranding, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		perms(ResourceAPI, ActionRead, ActionExecute),
	)
	return map[Tier][]Permission{
		TierFree:   free,
		TierBasic:  basic,
		TierPro:    pro,
		TierDivine: divine,
	}
}()

// Permissions returns a copy of the tier's permission list.
func Permissions(t Tier) ([]Permission, error) {
	list, ok := permissionTable[t]
	if !ok {
		return nil, invalid("tier", string(t))
	}
	return slices.Clone(list), nil
}

// HasPermission matches p by exact resource and action.
func HasPermission(t Tier, p Permission) (bool, error) {
	list, ok := permissionTable[t]
	if !ok {
		return false, invalid("tier", string(t))
	}
	return slices.Contains(list, p), nil
}
