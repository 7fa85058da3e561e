// Package audit provides the append-only audit trail for dispatched actions.
// The dispatcher is handed a Sink at construction; every Execute call emits
// exactly one record through it before returning.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/forgeai/companion/internal/safety"
)

// Record is one audited dispatch.
type Record struct {
	ID        string               `json:"id"`
	Timestamp time.Time            `json:"ts"`
	Action    string               `json:"action"`
	Summary   string               `json:"summary"`
	Confirmed bool                 `json:"confirmed"`
	Risk      safety.RiskLevel     `json:"risk"`
	Verdict   safety.SafetyVerdict `json:"verdict"`
	Success   bool                 `json:"success"`
	Error     string               `json:"error,omitempty"`
}

// NewRecord stamps a record with an ID and timestamp.
func NewRecord(action, summary string, confirmed bool, v safety.SafetyVerdict, success bool, errMsg string) Record {
	return Record{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Action:    action,
		Summary:   summary,
		Confirmed: confirmed,
		Risk:      v.Risk,
		Verdict:   v,
		Success:   success,
		Error:     errMsg,
	}
}

// Sink accepts audit records. Implementations must tolerate concurrent
// Append calls without interleaving partial records.
type Sink interface {
	Append(rec Record)
	Close() error
}

// Discard is a Sink that drops every record.
type Discard struct{}

// Append implements Sink.
func (Discard) Append(Record) {}

// Close implements Sink.
func (Discard) Close() error { return nil }

// Tee fans records out to several sinks.
func Tee(sinks ...Sink) Sink { return teeSink(sinks) }

type teeSink []Sink

func (t teeSink) Append(rec Record) {
	for _, s := range t {
		s.Append(rec)
	}
}

func (t teeSink) Close() error {
	var first error
	for _, s := range t {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
