package state

import (
	"github.com/google/uuid"
)

// Sequence hands out layer ids. Ids only ever grow, so an id removed from
// a scene (or undone away) is never handed out again in the same session.
type Sequence struct {
	last int
}

// Next returns the next unused id.
func (s *Sequence) Next() int {
	s.last++
	return s.last
}

// Observe moves the sequence past id, so ids loaded from a document or a
// history snapshot cannot be reissued.
func (s *Sequence) Observe(id int) {
	if id > s.last {
		s.last = id
	}
}

// Last returns the most recently issued or observed id.
func (s *Sequence) Last() int {
	return s.last
}

// NewDocumentID returns a random id identifying one editor document.
func NewDocumentID() string {
	return uuid.NewString()
}
