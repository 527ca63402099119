package diag

import "sync/atomic"

// Sink is a revocable capability to append warnings to a Log.
//
// A sink is bound to the log generation it was created in. Once revoked,
// or once the log is cleared for a new decode, every call is a no-op.
type Sink struct {
	log        *Log
	generation uint64
	revoked    atomic.Bool
}

// Sink returns a new sink bound to the current generation of l.
func (l *Log) Sink() *Sink {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &Sink{log: l, generation: l.generation}
}

// Warn records warning at pos. It reports whether the entry was appended.
func (s *Sink) Warn(warning error, pos Position) bool {
	if s == nil || warning == nil || s.revoked.Load() {
		return false
	}
	l := s.log
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.generation != s.generation {
		return false
	}
	l.appendLocked(SeverityWarning, warning.Error(), &pos, 0)
	return true
}

// Revoke invalidates the sink. It is safe to call more than once.
func (s *Sink) Revoke() {
	if s == nil {
		return
	}
	s.revoked.Store(true)
}

// Live reports whether the sink still writes to its log.
func (s *Sink) Live() bool {
	if s == nil || s.revoked.Load() {
		return false
	}
	s.log.mu.Lock()
	defer s.log.mu.Unlock()
	return s.log.generation == s.generation
}
