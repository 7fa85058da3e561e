package safety

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeCommand(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		n := normalizeCommand("")
		if n.Primary != "" || len(n.Segments) != 0 || n.Compound {
			t.Fatalf("got Primary=%q Segments=%v Compound=%v", n.Primary, n.Segments, n.Compound)
		}
	})

	t.Run("whitespace only", func(t *testing.T) {
		n := normalizeCommand("  \t ")
		if n.Primary != "" || len(n.Segments) != 0 {
			t.Fatalf("got Primary=%q Segments=%v", n.Primary, n.Segments)
		}
	})

	t.Run("simple command", func(t *testing.T) {
		n := normalizeCommand("ls -la")
		if n.Primary != "ls -la" || n.Compound {
			t.Fatalf("got Primary=%q Compound=%v", n.Primary, n.Compound)
		}
	})

	t.Run("pipe is compound", func(t *testing.T) {
		n := normalizeCommand("cat access.log | grep 500")
		if !n.Compound || len(n.Segments) != 2 {
			t.Fatalf("got Compound=%v Segments=%v", n.Compound, n.Segments)
		}
	})

	t.Run("subshell detection", func(t *testing.T) {
		n := normalizeCommand("echo $(whoami)")
		if !n.Subshell {
			t.Fatalf("expected Subshell=true")
		}
	})

	t.Run("very long input does not panic", func(t *testing.T) {
		n := normalizeCommand("echo " + strings.Repeat("a", 20_000))
		if n.Original == "" {
			t.Fatalf("expected Original to be set")
		}
	})
}

func TestSplitCompound(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"and chain", "echo foo && rm -rf /tmp/x", []string{"echo foo", "rm -rf /tmp/x"}},
		{"semicolon", "cd /tmp; ls", []string{"cd /tmp", "ls"}},
		{"or chain", "test -f x || echo missing", []string{"test -f x", "echo missing"}},
		{"background", "sleep 5 & echo started", []string{"sleep 5", "echo started"}},
		{"and inside double quotes", `echo "foo && bar"`, []string{`echo "foo && bar"`}},
		{"semicolon inside single quotes", `echo 'a; b'`, []string{`echo 'a; b'`}},
		{"quoted sql stays whole", `psql -c "DELETE FROM t; DROP TABLE t;"`, []string{`psql -c "DELETE FROM t; DROP TABLE t;"`}},
		{"quoted plus real separator", `echo "a && b" && rm x`, []string{`echo "a && b"`, "rm x"}},
		{"escaped quote", `echo "a\"b" && rm x`, []string{`echo "a\"b"`, "rm x"}},
		{"empty", "", nil},
		{"no separators", "ls -la", []string{"ls -la"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := splitCompound(tc.input)
			if len(got) != len(tc.expected) {
				t.Fatalf("got %d segments %v, want %d %v", len(got), got, len(tc.expected), tc.expected)
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Errorf("segment[%d] = %q, want %q", i, got[i], tc.expected[i])
				}
			}
		})
	}
}

func TestStripWrappers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"sudo", "sudo rm -rf /tmp/x", "rm -rf /tmp/x"},
		{"doas", "doas kubectl delete pod nginx", "kubectl delete pod nginx"},
		{"stacked wrappers", "sudo nice nohup make build", "make build"},
		{"env with assignments", "env FOO=bar BAZ=1 git push", "git push"},
		{"bare assignment untouched inside env", "env A=b ls", "ls"},
		{"shell dash c single quotes", "bash -c 'rm -rf /tmp/x'", "rm -rf /tmp/x"},
		{"shell dash c double quotes", `sh -c "echo hi"`, "echo hi"},
		{"nested sudo under sh dash c", "zsh -c 'sudo rm -rf /var/log/x'", "rm -rf /var/log/x"},
		{"no wrapper", "ls -la", "ls -la"},
		{"only wrappers", "sudo nohup", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, parseErr := stripWrappers(tc.input)
			if parseErr {
				t.Fatalf("unexpected parse error for %q", tc.input)
			}
			if got != tc.want {
				t.Errorf("stripWrappers(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}

	t.Run("unterminated quote reports parse error", func(t *testing.T) {
		_, parseErr := stripWrappers(`echo "oops`)
		if !parseErr {
			t.Fatalf("expected parse error")
		}
	})
}

func TestXargsTarget(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"xargs rm -rf", "rm -rf"},
		{"xargs -0 rm -f", "rm -f"},
		{"xargs kubectl delete pod", "kubectl delete pod"},
		{"rm -rf /tmp/x", ""},
		{"", ""},
		{"xargs", ""},
	}
	for _, tc := range tests {
		if got := xargsTarget(tc.input); got != tc.want {
			t.Errorf("xargsTarget(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestResolveCommandPaths(t *testing.T) {
	cwd := filepath.Join(string(filepath.Separator), "tmp", "companion-cwd")

	t.Run("relative path joined to cwd", func(t *testing.T) {
		out := resolveCommandPaths("rm -rf ./build", cwd)
		want := filepath.Join(cwd, "build")
		if !strings.Contains(out, want) {
			t.Fatalf("output %q does not contain %q", out, want)
		}
	})

	t.Run("parent traversal cleaned", func(t *testing.T) {
		out := resolveCommandPaths("rm -rf ../secrets", cwd)
		want := filepath.Clean(filepath.Join(cwd, "..", "secrets"))
		if !strings.Contains(out, want) {
			t.Fatalf("output %q does not contain %q", out, want)
		}
	})

	t.Run("tilde expansion", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			t.Skip("no home directory available")
		}
		out := resolveCommandPaths("cat ~/notes.txt", cwd)
		want := filepath.Join(home, "notes.txt")
		if !strings.Contains(out, want) {
			t.Fatalf("output %q does not contain %q", out, want)
		}
	})

	t.Run("flags without paths untouched", func(t *testing.T) {
		out := resolveCommandPaths("ls -la", cwd)
		if out != "ls -la" {
			t.Fatalf("output = %q, want unchanged", out)
		}
	})

	t.Run("flag value path resolved", func(t *testing.T) {
		out := resolveCommandPaths("tar --directory=../x -xf a.tar", cwd)
		want := filepath.Clean(filepath.Join(cwd, "..", "x"))
		if !strings.Contains(out, want) {
			t.Fatalf("output %q does not contain %q", out, want)
		}
	})
}
