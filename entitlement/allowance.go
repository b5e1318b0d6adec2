package entitlement

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// UnlimitedQuota is what GetUsageLimit reports for an unlimited allowance.
const UnlimitedQuota = -1

type AllowanceKind uint8

const (
	KindFlag AllowanceKind = iota + 1
	KindQuota
	KindUnlimited
)

func (k AllowanceKind) String() string {
	switch k {
	case KindFlag:
		return "flag"
	case KindQuota:
		return "quota"
	case KindUnlimited:
		return "unlimited"
	default:
		return "invalid"
	}
}

// Allowance is what a tier grants for one feature: an on/off capability, a
// finite quota, or no ceiling at all. The zero value is an invalid allowance.
type Allowance struct {
	kind    AllowanceKind
	enabled bool
	quota   int
}

func Flag(enabled bool) Allowance { return Allowance{kind: KindFlag, enabled: enabled} }

// Quota panics on a negative n; use Unlimited for no ceiling.
func Quota(n int) Allowance {
	if n < 0 {
		panic(fmt.Sprintf("entitlement: negative quota %d", n))
	}
	return Allowance{kind: KindQuota, quota: n}
}

func Unlimited() Allowance { return Allowance{kind: KindUnlimited} }

func (a Allowance) Kind() AllowanceKind { return a.kind }

// Enabled is true for Flag(true) and Unlimited. A finite quota, even a
// positive one, is not a capability grant.
func (a Allowance) Enabled() bool {
	switch a.kind {
	case KindFlag:
		return a.enabled
	case KindUnlimited:
		return true
	default:
		return false
	}
}

// Limit is the numeric ceiling: the quota, UnlimitedQuota, or 0 for flags.
func (a Allowance) Limit() int {
	switch a.kind {
	case KindQuota:
		return a.quota
	case KindUnlimited:
		return UnlimitedQuota
	default:
		return 0
	}
}

// AtLeast reports whether a is never less generous than b.
func (a Allowance) AtLeast(b Allowance) bool {
	switch {
	case a.kind == KindUnlimited:
		return true
	case b.kind == KindUnlimited:
		return false
	case a.kind == KindFlag && b.kind == KindFlag:
		return a.enabled || !b.enabled
	case a.kind == KindQuota && b.kind == KindQuota:
		return a.quota >= b.quota
	default:
		return false
	}
}

func (a Allowance) String() string {
	switch a.kind {
	case KindFlag:
		return strconv.FormatBool(a.enabled)
	case KindQuota:
		return strconv.Itoa(a.quota)
	case KindUnlimited:
		return "unlimited"
	default:
		return "invalid"
	}
}

// MarshalJSON encodes flags as booleans, quotas as numbers and unlimited as
// the string "unlimited".
func (a Allowance) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case KindFlag:
		return json.Marshal(a.enabled)
	case KindQuota:
		return json.Marshal(a.quota)
	case KindUnlimited:
		return json.Marshal("unlimited")
	default:
		return nil, fmt.Errorf("entitlement: marshal invalid allowance")
	}
}

func (a *Allowance) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case bool:
		*a = Flag(x)
	case float64:
		if x < 0 || x != float64(int(x)) {
			return fmt.Errorf("entitlement: invalid quota %v", x)
		}
		*a = Quota(int(x))
	case string:
		if x != "unlimited" {
			return invalid("allowance", x)
		}
		*a = Unlimited()
	default:
		return fmt.Errorf("entitlement: invalid allowance %s", b)
	}
	return nil
}
