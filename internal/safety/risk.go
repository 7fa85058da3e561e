// Package safety implements risk classification for companion actions.
// Every proposed effect (shell command, file operation, process kill, app
// launch) is mapped to a SafetyVerdict before anything touches the OS.
package safety

import "fmt"

// RiskLevel represents the risk classification of an action.
type RiskLevel string

// Risk levels, ordered by damage potential.
const (
	RiskSafe      RiskLevel = "safe"
	RiskCaution   RiskLevel = "caution"
	RiskDangerous RiskLevel = "dangerous"
	RiskBlocked   RiskLevel = "blocked"
)

// Severity returns the numeric rank of a risk level for ordering.
// Unknown levels rank above dangerous so that corrupted values fail closed.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskSafe:
		return 0
	case RiskCaution:
		return 1
	case RiskDangerous:
		return 2
	case RiskBlocked:
		return 3
	default:
		return 2
	}
}

// AtLeast reports whether r is at least as severe as other.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r.Severity() >= other.Severity()
}

// MaxRisk returns the more severe of two risk levels.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

// Reason categories attached to verdicts.
const (
	ReasonNoRisk         = "no_risk"
	ReasonDestructive    = "destructive_command"
	ReasonReversible     = "reversible_mutation"
	ReasonProtectedZone  = "protected_zone"
	ReasonOutsideRoot    = "outside_permitted_root"
	ReasonUnresolvable   = "unresolvable_path"
	ReasonParseError     = "parse_error"
	ReasonCriticalTarget = "critical_target"
	ReasonNothingToCheck = "nothing_to_check"
)

// Reason is a structured explanation for a verdict: a stable machine-readable
// category plus a human-readable detail.
type Reason struct {
	Category string `json:"category"`
	Detail   string `json:"detail"`
}

func (r Reason) String() string {
	if r.Detail == "" {
		return r.Category
	}
	return fmt.Sprintf("%s: %s", r.Category, r.Detail)
}

// SafetyVerdict is the classifier's decision on a proposed action.
//
// Invariants: Allowed is false iff Risk == RiskBlocked, and a blocked verdict
// can never be overridden by caller confirmation.
type SafetyVerdict struct {
	Allowed              bool      `json:"allowed"`
	Risk                 RiskLevel `json:"risk"`
	Reason               Reason    `json:"reason"`
	RequiresConfirmation bool      `json:"requires_confirmation"`
}

// verdict builds a SafetyVerdict for a risk level, deriving Allowed and
// RequiresConfirmation from the level. confirmCaution extends the
// confirmation requirement down to the caution tier.
func verdict(risk RiskLevel, reason Reason, confirmCaution bool) SafetyVerdict {
	return SafetyVerdict{
		Allowed:              risk != RiskBlocked,
		Risk:                 risk,
		Reason:               reason,
		RequiresConfirmation: risk == RiskDangerous || (confirmCaution && risk == RiskCaution),
	}
}

// SafeVerdict returns an allowed, no-confirmation verdict with the given detail.
func SafeVerdict(detail string) SafetyVerdict {
	return SafetyVerdict{
		Allowed: true,
		Risk:    RiskSafe,
		Reason:  Reason{Category: ReasonNoRisk, Detail: detail},
	}
}
