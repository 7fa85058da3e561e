// Package history persists audit records to sqlite for later inspection.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/forgeai/companion/internal/audit"
)

// ErrRecordNotFound is returned when a record is not found.
var ErrRecordNotFound = errors.New("audit record not found")

const schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	id TEXT PRIMARY KEY,
	ts TEXT NOT NULL,
	action TEXT NOT NULL,
	summary TEXT NOT NULL,
	confirmed INTEGER NOT NULL,
	risk TEXT NOT NULL,
	verdict TEXT NOT NULL,
	success INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_audit_ts ON audit_records(ts);
CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_records(action);
`

// Store is a sqlite-backed audit history. It implements audit.Sink; writes
// are serialized by a mutex so concurrent appends never interleave.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Append implements audit.Sink. Insert failures are logged nowhere and
// dropped: history is best-effort and must never fail the dispatcher.
func (s *Store) Append(rec audit.Record) {
	_ = s.Insert(rec)
}

// Insert writes one record and reports the error, for callers that care.
func (s *Store) Insert(rec audit.Record) error {
	verdict, err := json.Marshal(rec.Verdict)
	if err != nil {
		return fmt.Errorf("encoding verdict: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`
		INSERT INTO audit_records (id, ts, action, summary, confirmed, risk, verdict, success, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Timestamp.UTC().Format(time.RFC3339Nano), rec.Action, rec.Summary,
		boolInt(rec.Confirmed), string(rec.Risk), string(verdict), boolInt(rec.Success), rec.Error)
	if err != nil {
		return fmt.Errorf("inserting audit record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *Store) Get(id string) (*audit.Record, error) {
	row := s.db.QueryRow(`
		SELECT id, ts, action, summary, confirmed, risk, verdict, success, error
		FROM audit_records WHERE id = ?
	`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List returns the most recent records, newest first.
func (s *Store) List(limit int) ([]*audit.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, ts, action, summary, confirmed, risk, verdict, success, error
		FROM audit_records ORDER BY ts DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListByAction returns recent records for one action kind, newest first.
func (s *Store) ListByAction(action string, limit int) ([]*audit.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, ts, action, summary, confirmed, risk, verdict, success, error
		FROM audit_records WHERE action = ? ORDER BY ts DESC LIMIT ?
	`, action, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit records by action: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Prune deletes records older than the retention window. Zero days keeps
// everything.
func (s *Store) Prune(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format(time.RFC3339Nano)

	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`DELETE FROM audit_records WHERE ts < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning audit records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return n, nil
}

// Count returns the total number of stored records.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM audit_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting audit records: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*audit.Record, error) {
	var rec audit.Record
	var ts, verdict string
	var confirmed, success int

	err := row.Scan(&rec.ID, &ts, &rec.Action, &rec.Summary, &confirmed, &rec.Risk, &verdict, &success, &rec.Error)
	if err != nil {
		return nil, err
	}
	rec.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
	rec.Confirmed = confirmed != 0
	rec.Success = success != 0
	if err := json.Unmarshal([]byte(verdict), &rec.Verdict); err != nil {
		return nil, fmt.Errorf("decoding verdict: %w", err)
	}
	// Risk column mirrors the verdict for indexable queries.
	rec.Risk = rec.Verdict.Risk
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]*audit.Record, error) {
	var records []*audit.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning audit record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit records: %w", err)
	}
	return records, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
