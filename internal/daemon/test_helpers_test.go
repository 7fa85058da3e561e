package daemon

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

// shortSocketDir creates a temp directory with a short path for Unix socket
// tests. macOS caps socket paths at 104 bytes, and t.TempDir() embeds the
// full test name which can easily exceed that.
func shortSocketDir(t *testing.T) string {
	t.Helper()

	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		t.Fatalf("generating random suffix: %v", err)
	}
	suffix := hex.EncodeToString(buf[:])

	dir := filepath.Join("/tmp", "companion-test-"+suffix)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("creating short temp dir: %v", err)
	}

	t.Cleanup(func() {
		os.RemoveAll(dir)
	})

	return dir
}
