package model

import (
	"sync"
	"time"
)

// Message is a single flash notification. ID is the only key used to tell
// messages apart across save/load/render cycles.
type Message struct {
	ID          int64    `json:"id"`
	Category    Category `json:"category"`
	CSSOverride string   `json:"cssOverride"`
	Content     string   `json:"content"` // untrusted, escaped at render time
}

// NewMessage builds a message with a fresh id. Any is stored as Default.
func NewMessage(content string, category Category, cssOverride string) Message {
	if category == Any {
		category = Default
	}
	return Message{
		ID:          ids.Next(),
		Category:    category,
		CSSOverride: cssOverride,
		Content:     content,
	}
}

var ids = NewSequence(time.Now)

// Sequence hands out strictly increasing ids seeded from a clock. Two calls
// inside the same clock tick still get distinct ids.
type Sequence struct {
	mu      sync.Mutex
	clock   func() time.Time
	counter int64
	last    int64
}

func NewSequence(clock func() time.Time) *Sequence {
	return &Sequence{clock: clock}
}

// Next returns the next id. Safe for concurrent use.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.clock().UnixNano() + s.counter
	s.counter++
	// the clock may step backwards
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}
