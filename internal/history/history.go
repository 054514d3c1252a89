// Package history keeps a bounded in-memory log of recent
// conversions, successes and failures alike.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docforge/docforge/internal/document"
	"github.com/docforge/docforge/internal/domain"
)

// DefaultMaxEntries bounds the log when no limit is configured.
const DefaultMaxEntries = 10

// Record describes one finished conversion attempt.
type Record struct {
	ID         uuid.UUID
	InputName  string
	OutputName string
	Format     document.Format
	InputSize  int64
	OutputSize int64
	Pages      int
	Duration   time.Duration
	Success    bool
	Error      string
	ErrorType  domain.ErrorType
	At         time.Time
}

// Log is a fixed-capacity, newest-first record list. Safe for
// concurrent use.
type Log struct {
	mu   sync.RWMutex
	max  int
	recs []Record
}

// NewLog returns a Log holding at most max records.
func NewLog(max int) *Log {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Log{max: max, recs: make([]Record, 0, max)}
}

// Add records a conversion, evicting the oldest entry once the log is
// full.
func (l *Log) Add(r Record) {
	if r.At.IsZero() {
		r.At = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.recs = append(l.recs, Record{})
	copy(l.recs[1:], l.recs)
	l.recs[0] = r
	if len(l.recs) > l.max {
		l.recs = l.recs[:l.max]
	}
}

// Recent returns a copy of the log, newest first.
func (l *Log) Recent() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, len(l.recs))
	copy(out, l.recs)
	return out
}

// Len reports how many records the log holds.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.recs)
}

// Clear drops all records.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recs = l.recs[:0]
}
