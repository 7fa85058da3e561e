package connection

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	if _, err := s.Load(); !errors.Is(err, ErrNotPaired) {
		t.Fatalf("Load before Save = %v, want ErrNotPaired", err)
	}

	want := Credentials{
		GatewayURL:  "wss://gateway.example.com/companion",
		CompanionID: "comp-123",
		Role:        "executor",
	}
	if err := s.Save(want); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if *got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(s.Dir(), "credentials.json"))
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Fatalf("credential file mode = %o, want 600", perm)
		}
	}
}

func TestStoreSaveRequiresURL(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Save(Credentials{CompanionID: "x"}); err == nil {
		t.Fatal("expected error for missing gateway URL")
	}
}

func TestStoreDelete(t *testing.T) {
	s := NewStore(t.TempDir())

	// Deleting while unpaired is fine.
	if err := s.Delete(); err != nil {
		t.Fatal(err)
	}

	if err := s.Save(Credentials{GatewayURL: "wss://g.example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNotPaired) {
		t.Fatalf("Load after Delete = %v, want ErrNotPaired", err)
	}
}

func TestStoreRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	if err := os.WriteFile(filepath.Join(dir, "credentials.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(); err == nil {
		t.Fatal("expected error for corrupt credentials")
	}
}
