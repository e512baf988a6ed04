package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"ballotbox/contexts/elections/voting-core/adapters/memory"
	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
)

func TestTallyIsStableOnTies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	for _, name := range []string{"Ada", "Ben", "Cleo", "Dev"} {
		if _, err := store.AddCandidate(ctx, name, "Candidate"); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	for _, id := range []int{4, 2, 4} {
		if _, err := store.IncrementVoteCount(ctx, id); err != nil {
			t.Fatalf("increment %d: %v", id, err)
		}
	}

	tally, err := TallyUseCase{Candidates: store}.Tally(ctx)
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	want := []string{"Dev", "Ben", "Ada", "Cleo"}
	for i, name := range want {
		if tally[i].Name != name {
			t.Fatalf("position %d: expected %s, got %+v", i, name, tally)
		}
	}

	ballot, err := TallyUseCase{Candidates: store}.Ballot(ctx)
	if err != nil {
		t.Fatalf("ballot: %v", err)
	}
	if ballot[0].Name != "Ada" || ballot[3].Name != "Dev" {
		t.Fatalf("ballot should keep insertion order: %+v", ballot)
	}
}

func TestAuditLogRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	entry := entities.AuditEntry{
		ActorUsername: "sam",
		Action:        entities.AuditActionLogin,
		OccurredAt:    time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC),
		Details:       "User logged in",
	}
	if err := store.AppendAuditEntry(ctx, entry); err != nil {
		t.Fatalf("append: %v", err)
	}
	uc := AuditLogUseCase{Audit: store}

	if _, err := uc.List(ctx, nil); !errors.Is(err, domainerrors.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	if _, err := uc.List(ctx, &entities.Identity{Username: "sam"}); !errors.Is(err, domainerrors.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for non-admin, got %v", err)
	}
	entries, err := uc.List(ctx, &entities.Identity{Username: "admin@example.com", IsAdmin: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0] != entry {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}
