package history

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/forgeai/companion/internal/audit"
	"github.com/forgeai/companion/internal/safety"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func record(action, summary string, risk safety.RiskLevel) audit.Record {
	v := safety.SafetyVerdict{
		Allowed: risk != safety.RiskBlocked,
		Risk:    risk,
		Reason:  safety.Reason{Category: safety.ReasonNoRisk, Detail: "test"},
	}
	return audit.NewRecord(action, summary, false, v, true, "")
}

func TestStoreInsertAndGet(t *testing.T) {
	s := openTestStore(t)

	rec := record("run_shell_command", "ls -la", safety.RiskSafe)
	if err := s.Insert(rec); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Action != rec.Action || got.Summary != rec.Summary {
		t.Fatalf("got %+v, want %+v", got, rec)
	}
	if got.Risk != safety.RiskSafe || got.Verdict.Risk != safety.RiskSafe {
		t.Fatalf("risk = %s verdict risk = %s", got.Risk, got.Verdict.Risk)
	}
	if got.Timestamp.IsZero() {
		t.Fatal("timestamp not persisted")
	}
}

func TestStoreGetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get("no-such-id")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestStoreList(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		rec := record("run_shell_command", fmt.Sprintf("cmd-%d", i), safety.RiskSafe)
		rec.Timestamp = time.Now().UTC().Add(time.Duration(i) * time.Second)
		if err := s.Insert(rec); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := s.List(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	// Newest first.
	if recs[0].Summary != "cmd-4" {
		t.Fatalf("first record = %q, want cmd-4", recs[0].Summary)
	}
}

func TestStoreListByAction(t *testing.T) {
	s := openTestStore(t)

	for _, action := range []string{"read_file", "run_shell_command", "read_file"} {
		if err := s.Insert(record(action, "x", safety.RiskSafe)); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := s.ListByAction("read_file", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d read_file records, want 2", len(recs))
	}
	for _, rec := range recs {
		if rec.Action != "read_file" {
			t.Errorf("action = %q", rec.Action)
		}
	}
}

func TestStorePrune(t *testing.T) {
	s := openTestStore(t)

	old := record("run_shell_command", "old", safety.RiskSafe)
	old.Timestamp = time.Now().UTC().AddDate(0, 0, -30)
	fresh := record("run_shell_command", "fresh", safety.RiskSafe)

	if err := s.Insert(old); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(fresh); err != nil {
		t.Fatal(err)
	}

	n, err := s.Prune(7)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("pruned %d records, want 1", n)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if _, err := s.Get(fresh.ID); err != nil {
		t.Fatalf("fresh record lost: %v", err)
	}

	// Zero retention keeps everything.
	if n, err := s.Prune(0); err != nil || n != 0 {
		t.Fatalf("Prune(0) = %d, %v", n, err)
	}
}

func TestStoreAsSink(t *testing.T) {
	s := openTestStore(t)

	var sink audit.Sink = s
	sink.Append(record("launch_app", "Notes", safety.RiskCaution))

	count, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestStoreBlockedRecordRoundTrip(t *testing.T) {
	s := openTestStore(t)

	v := safety.SafetyVerdict{
		Allowed: false,
		Risk:    safety.RiskBlocked,
		Reason:  safety.Reason{Category: safety.ReasonDestructive, Detail: "matched blocked rule"},
	}
	rec := audit.NewRecord("run_shell_command", "rm -rf /", true, v, false, "refused")
	if err := s.Insert(rec); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Risk != safety.RiskBlocked || got.Verdict.Allowed {
		t.Fatalf("got %+v", got)
	}
	if !got.Confirmed || got.Success {
		t.Fatalf("confirmed/success flags lost: %+v", got)
	}
	if got.Error != "refused" {
		t.Fatalf("error = %q", got.Error)
	}
	if got.Verdict.Reason.Category != safety.ReasonDestructive {
		t.Fatalf("reason category = %q", got.Verdict.Reason.Category)
	}
}
