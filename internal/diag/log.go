// Package diag collects decode diagnostics: warnings reported while a
// stream is walked and the expanded cause chain of a terminal error.
package diag

import (
	"iter"
	"sync"
)

// Severity classifies a diagnostic entry.
type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is one warning or one link of an error's cause chain.
type Entry struct {
	Seq      uint64
	Severity Severity
	Message  string
	Position *Position
	// Depth is the distance from the outermost error of the chain this
	// entry belongs to. Warnings and outermost errors have depth 0.
	Depth int
}

// Log is an ordered, append-only collection of diagnostic entries.
// The zero value is ready to use.
type Log struct {
	mu         sync.Mutex
	entries    []Entry
	next       uint64
	generation uint64
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// RecordWarning appends one warning entry.
func (l *Log) RecordWarning(message string, pos *Position) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appendLocked(SeverityWarning, message, pos, 0)
}

// RecordError appends one error entry per link of err's cause chain,
// outermost first. A link that carries its own position is recorded with
// it; every other link shares pos.
func (l *Log) RecordError(err error, pos *Position) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	depth := 0
	for cause := range Causes(err) {
		at := pos
		if own := PositionOf(cause); own != nil {
			at = own
		}
		l.appendLocked(SeverityError, cause.Error(), at, depth)
		depth++
	}
}

// Clear discards every entry, resets the sequence counter and invalidates
// all sinks handed out before the call.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.next = 0
	l.generation++
}

// Len reports the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy of the entries in sequence order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// All iterates the entries in sequence order over a snapshot.
func (l *Log) All() iter.Seq[Entry] {
	entries := l.Entries()
	return func(yield func(Entry) bool) {
		for _, e := range entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Count reports the number of entries with the given severity.
func (l *Log) Count(sev Severity) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.Severity == sev {
			n++
		}
	}
	return n
}

func (l *Log) appendLocked(sev Severity, message string, pos *Position, depth int) {
	var at *Position
	if pos != nil {
		at = pos.clone()
	}
	l.entries = append(l.entries, Entry{
		Seq:      l.next,
		Severity: sev,
		Message:  message,
		Position: at,
		Depth:    depth,
	})
	l.next++
}
