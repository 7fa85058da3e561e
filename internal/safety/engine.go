package safety

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// RuleSet is the configurable half of the classification policy. Patterns
// are regular expressions matched case-insensitively against normalized
// commands; ProtectedPaths extend the built-in protected zones.
type RuleSet struct {
	Blocked        []string
	Dangerous      []string
	Caution        []string
	Safe           []string
	ProtectedPaths []string
}

// Options configures an Engine.
type Options struct {
	// Rules are user-supplied patterns layered on top of the builtins.
	Rules RuleSet
	// PermittedRoots are directories the companion may touch freely.
	// Empty means home directory plus the system temp dir.
	PermittedRoots []string
	// CredentialDir is the companion's own secret store, always protected.
	CredentialDir string
	// ConfirmCaution extends the confirmation requirement to caution-tier
	// actions.
	ConfirmCaution bool
}

type rule struct {
	risk RiskLevel
	src  string
	re   *regexp.Regexp
	// builtin rules panic on compile failure; user rules are skipped.
	builtin bool
}

// Engine evaluates proposed effects against the rule table. Classification
// is pure; the lock exists only so the daemon can hot-reload user rules.
type Engine struct {
	mu             sync.RWMutex
	blocked        []*rule
	dangerous      []*rule
	caution        []*rule
	safelist       []*rule
	protected      []string
	permittedRoots []string
	confirmCaution bool
}

// NewEngine builds an engine from the built-in rule table plus opts.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		confirmCaution: opts.ConfirmCaution,
		permittedRoots: defaultRoots(opts.PermittedRoots),
	}
	e.load(opts.Rules, opts.CredentialDir)
	return e
}

// Reload replaces the user-supplied half of the rule table. Builtins are
// always retained; a reload can extend the policy but never relax it.
func (e *Engine) Reload(rules RuleSet, credentialDir string) {
	e.load(rules, credentialDir)
}

func (e *Engine) load(rules RuleSet, credentialDir string) {
	blocked := compileRules(RiskBlocked, defaultBlockedPatterns, true)
	blocked = append(blocked, compileRules(RiskBlocked, rules.Blocked, false)...)
	dangerous := compileRules(RiskDangerous, defaultDangerousPatterns, true)
	dangerous = append(dangerous, compileRules(RiskDangerous, rules.Dangerous, false)...)
	caution := compileRules(RiskCaution, defaultCautionPatterns, true)
	caution = append(caution, compileRules(RiskCaution, rules.Caution, false)...)
	safelist := compileRules(RiskSafe, defaultSafePatterns, true)
	safelist = append(safelist, compileRules(RiskSafe, rules.Safe, false)...)

	protected := append([]string{}, defaultProtectedPaths...)
	protected = append(protected, rules.ProtectedPaths...)
	if credentialDir != "" {
		protected = append(protected, credentialDir)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.blocked = blocked
	e.dangerous = dangerous
	e.caution = caution
	e.safelist = safelist
	e.protected = protected
}

func compileRules(risk RiskLevel, patterns []string, builtin bool) []*rule {
	rules := make([]*rule, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			if builtin {
				panic(fmt.Sprintf("invalid builtin safety pattern %q: %v", p, err))
			}
			continue
		}
		rules = append(rules, &rule{risk: risk, src: p, re: re, builtin: builtin})
	}
	return rules
}

// ClassifyShellCommand maps a raw shell command to a verdict. It is total:
// any input, including empty or garbled strings, produces a verdict, and
// ambiguity always resolves toward the more severe tier.
func (e *Engine) ClassifyShellCommand(cmd string) SafetyVerdict {
	e.mu.RLock()
	defer e.mu.RUnlock()

	trimmed := strings.TrimSpace(cmd)
	if trimmed == "" {
		return SafeVerdict("empty command, nothing to evaluate")
	}

	n := normalizeCommand(cmd)

	// Candidate strings to match: the raw command (pipes and separators
	// intact, so pipe-to-shell and fork-bomb rules can see them), each
	// normalized segment, and each xargs target.
	candidates := []string{trimmed}
	for _, seg := range n.Segments {
		candidates = append(candidates, seg)
		if target := xargsTarget(seg); target != "" {
			candidates = append(candidates, target)
		}
	}

	// Subshell payloads execute too: a destructive command inside $(...) or
	// backticks must hit the same rules as one typed at top level.
	parseError := n.ParseError
	if n.Subshell {
		for _, body := range subshellBodies(trimmed) {
			inner := normalizeCommand(body)
			candidates = append(candidates, body)
			for _, seg := range inner.Segments {
				candidates = append(candidates, seg)
				if target := xargsTarget(seg); target != "" {
					candidates = append(candidates, target)
				}
			}
			if inner.ParseError {
				parseError = true
			}
		}
	}

	risk := RiskSafe
	reason := Reason{Category: ReasonNoRisk, Detail: "no destructive pattern matched"}

	if r := matchAny(e.blocked, candidates); r != nil {
		risk = RiskBlocked
		reason = Reason{Category: ReasonDestructive, Detail: "matched blocked rule: " + r.src}
	} else if r := matchAny(e.dangerous, candidates); r != nil {
		risk = RiskDangerous
		reason = Reason{Category: ReasonDestructive, Detail: "matched dangerous rule: " + r.src}
	} else if r := matchAny(e.caution, candidates); r != nil {
		// The safe allowlist can demote a caution-only match, never a
		// more severe one, and never when tokenization already failed.
		if s := matchAny(e.safelist, candidates); s != nil && !parseError {
			return verdict(RiskSafe, Reason{Category: ReasonNoRisk, Detail: "matched safe rule: " + s.src}, e.confirmCaution)
		}
		risk = RiskCaution
		reason = Reason{Category: ReasonReversible, Detail: "matched caution rule: " + r.src}
	}

	if parseError {
		risk = escalate(risk)
		reason = Reason{Category: ReasonParseError, Detail: "command could not be fully parsed; classified conservatively"}
	}

	return verdict(risk, reason, e.confirmCaution)
}

// ClassifyShellCommandIn is ClassifyShellCommand with path arguments
// resolved against cwd first, closing the relative-path obfuscation hole.
func (e *Engine) ClassifyShellCommandIn(cmd, cwd string) SafetyVerdict {
	if strings.TrimSpace(cmd) == "" || cwd == "" {
		return e.ClassifyShellCommand(cmd)
	}
	n := normalizeCommand(cmd)
	resolved := make([]string, 0, len(n.Segments))
	for _, seg := range n.Segments {
		resolved = append(resolved, resolveCommandPaths(seg, cwd))
	}
	joined := strings.Join(resolved, " && ")
	if joined == "" {
		joined = cmd
	}
	v := e.ClassifyShellCommand(joined)
	// A raw-string match on the unresolved input still counts.
	raw := e.ClassifyShellCommand(cmd)
	if raw.Risk.Severity() > v.Risk.Severity() {
		return raw
	}
	return v
}

func matchAny(rules []*rule, candidates []string) *rule {
	for _, r := range rules {
		for _, c := range candidates {
			if r.re.MatchString(c) {
				return r
			}
		}
	}
	return nil
}

// escalate bumps a risk level one step toward blocked.
func escalate(r RiskLevel) RiskLevel {
	switch r {
	case RiskSafe:
		return RiskCaution
	case RiskCaution:
		return RiskDangerous
	default:
		return r
	}
}
