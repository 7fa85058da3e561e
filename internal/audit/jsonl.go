package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONLWriter appends one JSON object per line to a log file. Records flow
// through a channel to a single writer goroutine, so concurrent producers
// never interleave partial lines and never block on disk I/O.
type JSONLWriter struct {
	ch   chan Record
	done chan struct{}
	f    *os.File
}

// NewJSONLWriter opens (or creates) the audit log at path and starts the
// writer goroutine.
func NewJSONLWriter(path string) (*JSONLWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("audit log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating audit log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}

	w := &JSONLWriter{
		ch:   make(chan Record, 128),
		done: make(chan struct{}),
		f:    f,
	}
	go w.run()
	return w, nil
}

func (w *JSONLWriter) run() {
	defer close(w.done)
	enc := json.NewEncoder(w.f)
	for rec := range w.ch {
		// Encode errors are swallowed: the audit trail must never make
		// the dispatcher fail, and there is no caller left to notify.
		_ = enc.Encode(rec)
	}
	_ = w.f.Sync()
}

// Append implements Sink. It blocks only if the buffer is full.
func (w *JSONLWriter) Append(rec Record) {
	w.ch <- rec
}

// Close drains pending records and closes the file.
func (w *JSONLWriter) Close() error {
	close(w.ch)
	<-w.done
	return w.f.Close()
}
