package session

import (
	"sync"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
)

// Session holds the single current identity of the interactive driver.
type Session struct {
	mu      sync.RWMutex
	current *entities.Identity
}

func New() *Session {
	return &Session{}
}

func (s *Session) SignIn(identity entities.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &identity
}

// SignOut clears the slot and returns the identity that was signed in.
func (s *Session) SignOut() (entities.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return entities.Identity{}, false
	}
	previous := *s.current
	s.current = nil
	return previous, true
}

// Current returns a copy of the signed-in identity, or nil.
func (s *Session) Current() *entities.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	identity := *s.current
	return &identity
}

func (s *Session) RequireAdmin() (entities.Identity, error) {
	actor := s.Current()
	if err := RequireAdmin(actor); err != nil {
		return entities.Identity{}, err
	}
	return *actor, nil
}

// RequireAdmin fails with ErrAccessDenied unless actor is a signed-in admin.
func RequireAdmin(actor *entities.Identity) error {
	if actor == nil || !actor.IsAdmin {
		return domainerrors.ErrAccessDenied
	}
	return nil
}
