package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/forgeai/companion/internal/safety"
)

func testRecord(summary string) Record {
	return NewRecord("run_shell_command", summary, false, safety.SafeVerdict("test"), true, "")
}

func TestJSONLWriterAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	w, err := NewJSONLWriter(path)
	if err != nil {
		t.Fatal(err)
	}

	w.Append(testRecord("ls"))
	w.Append(testRecord("pwd"))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	recs := readJSONL(t, path)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Summary != "ls" || recs[1].Summary != "pwd" {
		t.Fatalf("records out of order: %q %q", recs[0].Summary, recs[1].Summary)
	}
	for _, rec := range recs {
		if rec.ID == "" || rec.Timestamp.IsZero() {
			t.Errorf("record %+v missing id or timestamp", rec)
		}
	}
}

func TestJSONLWriterConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	w, err := NewJSONLWriter(path)
	if err != nil {
		t.Fatal(err)
	}

	const producers = 8
	const perProducer = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				w.Append(testRecord(fmt.Sprintf("cmd-%d-%d", p, i)))
			}
		}(p)
	}
	wg.Wait()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	// Every line must be a complete, parseable record.
	recs := readJSONL(t, path)
	if len(recs) != producers*perProducer {
		t.Fatalf("got %d records, want %d", len(recs), producers*perProducer)
	}
	seen := make(map[string]bool, len(recs))
	for _, rec := range recs {
		if seen[rec.ID] {
			t.Fatalf("duplicate record id %s", rec.ID)
		}
		seen[rec.ID] = true
	}
}

func TestJSONLWriterAppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	for i := 0; i < 2; i++ {
		w, err := NewJSONLWriter(path)
		if err != nil {
			t.Fatal(err)
		}
		w.Append(testRecord(fmt.Sprintf("run-%d", i)))
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
	}

	recs := readJSONL(t, path)
	if len(recs) != 2 {
		t.Fatalf("got %d records after reopen, want 2", len(recs))
	}
}

func TestJSONLWriterEmptyPath(t *testing.T) {
	if _, err := NewJSONLWriter(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestTee(t *testing.T) {
	a := &memSink{}
	b := &memSink{}
	tee := Tee(a, b)

	tee.Append(testRecord("ls"))
	if err := tee.Close(); err != nil {
		t.Fatal(err)
	}

	if len(a.records) != 1 || len(b.records) != 1 {
		t.Fatalf("fan-out records: a=%d b=%d", len(a.records), len(b.records))
	}
	if !a.closed || !b.closed {
		t.Fatalf("fan-out close: a=%v b=%v", a.closed, b.closed)
	}
}

type memSink struct {
	records []Record
	closed  bool
}

func (s *memSink) Append(rec Record) { s.records = append(s.records, rec) }
func (s *memSink) Close() error      { s.closed = true; return nil }

func readJSONL(t *testing.T, path string) []Record {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var recs []Record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("unparseable line %q: %v", sc.Text(), err)
		}
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	return recs
}
