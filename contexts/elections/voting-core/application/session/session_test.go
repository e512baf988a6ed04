package session

import (
	"testing"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
)

func TestSessionSignInOut(t *testing.T) {
	s := New()
	if s.Current() != nil {
		t.Fatalf("new session should be empty")
	}
	if _, ok := s.SignOut(); ok {
		t.Fatalf("sign out of an empty session should report false")
	}

	s.SignIn(entities.Identity{Username: "quinn"})
	current := s.Current()
	if current == nil || current.Username != "quinn" {
		t.Fatalf("unexpected current identity: %+v", current)
	}
	current.IsAdmin = true
	if s.Current().IsAdmin {
		t.Fatalf("current must return a copy")
	}

	previous, ok := s.SignOut()
	if !ok || previous.Username != "quinn" {
		t.Fatalf("unexpected sign out result: %+v %v", previous, ok)
	}
	if s.Current() != nil {
		t.Fatalf("session should be empty after sign out")
	}
}

func TestRequireAdmin(t *testing.T) {
	s := New()
	if _, err := s.RequireAdmin(); err != domainerrors.ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied without identity, got %v", err)
	}
	s.SignIn(entities.Identity{Username: "rita"})
	if _, err := s.RequireAdmin(); err != domainerrors.ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied for non-admin, got %v", err)
	}
	s.SignIn(entities.Identity{Username: "admin@example.com", IsAdmin: true})
	admin, err := s.RequireAdmin()
	if err != nil {
		t.Fatalf("require admin: %v", err)
	}
	if admin.Username != "admin@example.com" {
		t.Fatalf("unexpected admin: %+v", admin)
	}
}
