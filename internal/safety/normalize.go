package safety

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	shellwords "github.com/mattn/go-shellwords"
)

// normalized is a parsed shell command ready for rule matching.
type normalized struct {
	// Original is the raw input string.
	Original string
	// Primary is the first segment after wrapper stripping.
	Primary string
	// Segments holds each simple command of a compound/piped input.
	Segments []string
	// Compound indicates more than one command was chained.
	Compound bool
	// Subshell indicates $(...), `...` or (...) constructs.
	Subshell bool
	// ParseError indicates tokenization failed; the classifier upgrades
	// the resulting tier one step when set.
	ParseError bool
}

// Wrapper commands stripped before matching so that "sudo rm -rf /" and
// "rm -rf /" hit the same rules.
var wrapperCommands = map[string]bool{
	"sudo":    true,
	"doas":    true,
	"command": true,
	"builtin": true,
	"time":    true,
	"nice":    true,
	"ionice":  true,
	"nohup":   true,
	"strace":  true,
	"ltrace":  true,
}

var (
	// shell -c 'inner' unwrapping
	shellCRe = regexp.MustCompile(`^(bash|sh|zsh|ksh|dash)\s+-c\s+['"](.+)['"]\s*$`)
	// xargs <command>
	xargsRe = regexp.MustCompile(`\bxargs\s+(?:-\S+\s+)*(.+)$`)
	// pipes between simple commands
	pipeRe = regexp.MustCompile(`\s*\|\s*`)
	// $(...), backticks, or parenthesized subshells
	subshellRe = regexp.MustCompile("\\$\\([^)]+\\)|`[^`]+`|\\([^)]+\\)")
	// capturing forms for payload extraction
	dollarSubRe   = regexp.MustCompile(`\$\(([^()]+)\)`)
	backtickSubRe = regexp.MustCompile("`([^`]+)`")
	parenSubRe    = regexp.MustCompile(`\(([^()]+)\)`)
	// VAR=value prefixes
	envAssignRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)
)

// normalizeCommand parses a raw command string into matchable segments.
// It never fails: unparseable input comes back with ParseError set and a
// best-effort field split so the rule engine still sees something.
func normalizeCommand(cmd string) *normalized {
	n := &normalized{Original: cmd}

	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return n
	}

	n.Subshell = subshellRe.MatchString(cmd)

	// Split on ;, &&, ||, & outside quotes, then split each part on pipes.
	parts := splitCompound(cmd)
	if len(parts) > 1 {
		n.Compound = true
	}
	for _, part := range parts {
		if pipeRe.MatchString(part) {
			n.Compound = true
			for _, piece := range pipeRe.Split(part, -1) {
				if piece = strings.TrimSpace(piece); piece != "" {
					n.Segments = append(n.Segments, piece)
				}
			}
			continue
		}
		if part = strings.TrimSpace(part); part != "" {
			n.Segments = append(n.Segments, part)
		}
	}

	// Strip wrappers from every segment.
	stripped := make([]string, 0, len(n.Segments))
	for _, seg := range n.Segments {
		out, parseErr := stripWrappers(seg)
		if parseErr {
			n.ParseError = true
		}
		if out != "" {
			stripped = append(stripped, out)
		}
	}
	n.Segments = stripped

	if len(n.Segments) > 0 {
		n.Primary = n.Segments[0]
	}
	return n
}

// splitCompound splits on ;, &&, || and & while respecting quoting, so a
// separator inside 'quotes' does not create a new segment.
func splitCompound(cmd string) []string {
	var segments []string
	var cur strings.Builder
	inSingle, inDouble, escaped := false, false, false
	runes := []rune(cmd)

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			segments = append(segments, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if escaped {
			cur.WriteRune(r)
			escaped = false
			continue
		}
		switch {
		case r == '\\' && !inSingle:
			cur.WriteRune(r)
			escaped = true
			continue
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			cur.WriteRune(r)
			continue
		case r == '"' && !inSingle:
			inDouble = !inDouble
			cur.WriteRune(r)
			continue
		}

		if !inSingle && !inDouble {
			if i+1 < len(runes) && ((r == '&' && runes[i+1] == '&') || (r == '|' && runes[i+1] == '|')) {
				flush()
				i++
				continue
			}
			if r == ';' || r == '&' {
				flush()
				continue
			}
		}
		cur.WriteRune(r)
	}
	flush()
	return segments
}

// stripWrappers removes sudo/env/nohup-style prefixes and unwraps
// "sh -c '...'" so the underlying command is what gets classified.
func stripWrappers(seg string) (string, bool) {
	if m := shellCRe.FindStringSubmatch(seg); m != nil {
		inner, parseErr := stripWrappers(m[2])
		return inner, parseErr
	}

	parser := shellwords.NewParser()
	tokens, err := parser.Parse(seg)
	parseErr := err != nil
	if parseErr {
		tokens = strings.Fields(seg)
	}

	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		if tok == "env" {
			i++
			for i < len(tokens) && envAssignRe.MatchString(tokens[i]) {
				i++
			}
			continue
		}
		if wrapperCommands[tok] {
			i++
			continue
		}
		break
	}
	if i >= len(tokens) {
		return "", parseErr
	}
	return strings.TrimSpace(strings.Join(tokens[i:], " ")), parseErr
}

// subshellBodies returns the commands embedded in $(...), backtick and
// parenthesized subshells. Nested constructs surface their innermost bodies
// directly; bodies are re-scanned so chained substitutions are not missed.
func subshellBodies(cmd string) []string {
	var bodies []string
	seen := map[string]bool{}
	queue := []string{cmd}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, re := range []*regexp.Regexp{dollarSubRe, backtickSubRe, parenSubRe} {
			for _, m := range re.FindAllStringSubmatch(cur, -1) {
				body := strings.TrimSpace(m[1])
				if body == "" || seen[body] {
					continue
				}
				seen[body] = true
				bodies = append(bodies, body)
				queue = append(queue, body)
			}
		}
	}
	return bodies
}

// xargsTarget returns the command an xargs invocation would run, or "".
func xargsTarget(seg string) string {
	if m := xargsRe.FindStringSubmatch(seg); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// resolveCommandPaths rewrites path-looking tokens to canonical absolute
// form so obfuscated arguments like /tmp/../../etc hit the right rules.
func resolveCommandPaths(cmd, cwd string) string {
	parser := shellwords.NewParser()
	parser.ParseEnv = false
	parser.ParseBacktick = false
	tokens, err := parser.Parse(cmd)
	if err != nil {
		tokens = strings.Fields(cmd)
	}

	home, _ := os.UserHomeDir()

	for i, tok := range tokens {
		if strings.HasPrefix(tok, "-") {
			// --flag=value may carry a path in the value.
			if idx := strings.Index(tok, "="); idx != -1 {
				tokens[i] = tok[:idx+1] + canonToken(tok[idx+1:], cwd, home)
			}
			continue
		}
		tokens[i] = canonToken(tok, cwd, home)
	}
	return strings.Join(tokens, " ")
}

func canonToken(tok, cwd, home string) string {
	if home != "" {
		if tok == "~" {
			tok = home
		} else if strings.HasPrefix(tok, "~/") {
			tok = filepath.Join(home, tok[2:])
		}
	}
	if filepath.IsAbs(tok) {
		return filepath.Clean(tok)
	}
	if strings.Contains(tok, "/") || tok == "." || tok == ".." {
		if cwd != "" {
			return filepath.Clean(filepath.Join(cwd, tok))
		}
		return filepath.Clean(tok)
	}
	return tok
}
