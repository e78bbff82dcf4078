// Package clock supplies the current instant and the identifier sequence
// derived from it.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

// Now returns time.Now.
func (System) Now() time.Time { return time.Now() }

// Func adapts a function to Clock.
type Func func() time.Time

// Now calls f.
func (f Func) Now() time.Time { return f() }

// Timestamp normalizes t for storage: UTC, millisecond precision.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// TimestampLayout is the stored text form of a timestamp: UTC with exactly
// three fractional digits, as JavaScript's Date.toISOString writes it.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Sequence hands out integer identifiers from a clock's millisecond reading.
// Identifiers are strictly increasing: when the clock has not advanced past
// the last issued value the sequence steps by one instead.
type Sequence struct {
	clock Clock
	mu    sync.Mutex
	last  int64
}

// NewSequence creates a Sequence reading from c.
func NewSequence(c Clock) *Sequence {
	if c == nil {
		c = System{}
	}
	return &Sequence{clock: c}
}

// Next returns a new identifier.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.clock.Now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// Observe advances the sequence past id, typically for identifiers loaded
// from storage.
func (s *Sequence) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id > s.last {
		s.last = id
	}
}
