package safety

import (
	"path/filepath"
	"strings"
)

// ClassifyProcessKill evaluates a request to terminate a process by name.
// Critical system processes are blocked outright; everything else is
// dangerous and requires confirmation.
func (e *Engine) ClassifyProcessKill(name string) SafetyVerdict {
	e.mu.RLock()
	defer e.mu.RUnlock()

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return verdict(RiskDangerous,
			Reason{Category: ReasonUnresolvable, Detail: "no process name given"},
			e.confirmCaution)
	}

	base := filepath.Base(trimmed)
	if criticalProcesses[base] || criticalProcesses[strings.ToLower(base)] {
		return verdict(RiskBlocked,
			Reason{Category: ReasonCriticalTarget, Detail: base + " is a critical system process"},
			e.confirmCaution)
	}

	return verdict(RiskDangerous,
		Reason{Category: ReasonDestructive, Detail: "terminating process " + base},
		e.confirmCaution)
}

// ClassifyAppLaunch evaluates launching an application. Launching is a
// reversible local mutation: caution tier.
func (e *Engine) ClassifyAppLaunch(name string) SafetyVerdict {
	e.mu.RLock()
	defer e.mu.RUnlock()

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return verdict(RiskCaution,
			Reason{Category: ReasonUnresolvable, Detail: "no application name given"},
			e.confirmCaution)
	}
	return verdict(RiskCaution,
		Reason{Category: ReasonReversible, Detail: "launching application " + trimmed},
		e.confirmCaution)
}
