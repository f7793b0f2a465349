package role

import (
	"sync"

	apperrors "github.com/askwhyharsh/geohunt/pkg/errors"
)

// Selection tracks whether the player has picked a role. It moves between
// Unselected and Selected only on explicit Select and Back calls.
type Selection struct {
	mu      sync.RWMutex
	current *Role
}

// NewSelection starts Selected when initial is non-nil, e.g. a role
// restored from saved preferences.
func NewSelection(initial *Role) *Selection {
	s := &Selection{}
	if initial != nil {
		r := *initial
		s.current = &r
	}
	return s
}

// Select moves Unselected -> Selected(r).
func (s *Selection) Select(r Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return apperrors.ErrRoleAlreadySelected
	}
	s.current = &r
	return nil
}

// Back moves Selected -> Unselected and returns the role that was held.
func (s *Selection) Back() (Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return 0, apperrors.ErrNoRoleSelected
	}
	r := *s.current
	s.current = nil
	return r, nil
}

// Current returns the selected role, if any.
func (s *Selection) Current() (Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return 0, false
	}
	return *s.current, true
}
