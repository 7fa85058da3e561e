package safety

import (
	"os"
	"path/filepath"
	"strings"
)

// FileOp is the nature of a file operation for classification purposes.
type FileOp int

const (
	// OpRead reads file content or metadata.
	OpRead FileOp = iota
	// OpWrite creates or overwrites a file.
	OpWrite
	// OpDelete removes a file.
	OpDelete
	// OpMove renames a file; the destination is classified separately.
	OpMove
)

func (op FileOp) String() string {
	switch op {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpDelete:
		return "delete"
	case OpMove:
		return "move"
	default:
		return "unknown"
	}
}

func defaultRoots(roots []string) []string {
	if len(roots) > 0 {
		out := make([]string, 0, len(roots))
		for _, r := range roots {
			out = append(out, filepath.Clean(r))
		}
		return out
	}
	out := []string{os.TempDir()}
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, home)
	}
	return out
}

// ClassifyFileOperation evaluates a file operation against the protected
// zones. The path is canonicalized (absolute, cleaned, symlinks followed)
// before any check so that traversal or link tricks cannot dodge policy;
// a path that cannot be resolved classifies at the restrictive end.
func (e *Engine) ClassifyFileOperation(op FileOp, path string) SafetyVerdict {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if strings.TrimSpace(path) == "" {
		return verdict(RiskDangerous,
			Reason{Category: ReasonUnresolvable, Detail: "empty path"},
			e.confirmCaution)
	}

	resolved, ok := canonicalPath(path)
	if !ok {
		return verdict(RiskDangerous,
			Reason{Category: ReasonUnresolvable, Detail: "path could not be resolved: " + path},
			e.confirmCaution)
	}

	mutating := op != OpRead

	if zone, isRoot := e.protectedZone(resolved); zone != "" {
		if mutating && isRoot {
			// Deleting or overwriting a protected zone itself, e.g. /etc.
			return verdict(RiskBlocked,
				Reason{Category: ReasonProtectedZone, Detail: op.String() + " targets protected zone " + zone},
				e.confirmCaution)
		}
		if mutating {
			return verdict(RiskDangerous,
				Reason{Category: ReasonProtectedZone, Detail: resolved + " is inside protected zone " + zone},
				e.confirmCaution)
		}
		// Reads cap at caution even in protected zones.
		return verdict(RiskCaution,
			Reason{Category: ReasonProtectedZone, Detail: "reading from protected zone " + zone},
			e.confirmCaution)
	}

	if !e.insidePermittedRoot(resolved) {
		if mutating {
			return verdict(RiskDangerous,
				Reason{Category: ReasonOutsideRoot, Detail: resolved + " is outside the permitted roots"},
				e.confirmCaution)
		}
		return verdict(RiskCaution,
			Reason{Category: ReasonOutsideRoot, Detail: resolved + " is outside the permitted roots"},
			e.confirmCaution)
	}

	if mutating {
		return verdict(RiskCaution,
			Reason{Category: ReasonReversible, Detail: op.String() + " of " + resolved},
			e.confirmCaution)
	}
	return SafeVerdict("read of " + resolved)
}

// ClassifyMove classifies a rename by evaluating both endpoints and keeping
// the more severe verdict, so a move cannot smuggle content into a zone its
// source would not justify.
func (e *Engine) ClassifyMove(src, dst string) SafetyVerdict {
	sv := e.ClassifyFileOperation(OpMove, src)
	dv := e.ClassifyFileOperation(OpWrite, dst)
	if dv.Risk.Severity() > sv.Risk.Severity() {
		return dv
	}
	return sv
}

// canonicalPath resolves a path to canonical absolute form. Symlinks are
// followed; for paths that do not exist yet, the deepest existing ancestor
// is resolved and the remainder re-appended.
func canonicalPath(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	abs = filepath.Clean(abs)

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, true
	}

	// Walk up to the deepest ancestor that resolves.
	dir, rest := abs, ""
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, true
		}
		rest = filepath.Join(filepath.Base(dir), rest)
		dir = parent
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(resolved, rest), true
		}
	}
}

// protectedZone returns the zone containing path and whether path is the
// zone root itself. Caller holds e.mu.
func (e *Engine) protectedZone(path string) (zone string, isRoot bool) {
	for _, p := range e.protected {
		cp := filepath.Clean(p)
		if path == cp {
			return cp, true
		}
		if strings.HasPrefix(path, cp+string(filepath.Separator)) {
			return cp, false
		}
	}
	if path == string(filepath.Separator) {
		return string(filepath.Separator), true
	}
	return "", false
}

func (e *Engine) insidePermittedRoot(path string) bool {
	for _, root := range e.permittedRoots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
