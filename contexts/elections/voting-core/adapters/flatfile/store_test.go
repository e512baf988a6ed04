package flatfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ballotbox/contexts/elections/voting-core/domain/entities"
)

func TestStoreRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	ctx := context.Background()
	at := time.Unix(1700000000, 0).UTC()

	identities := []entities.Identity{
		{Username: "admin@example.com", Credential: "$2a$04$abc", DisplayName: "Admin User", EmailVerified: true, IsAdmin: true},
		{Username: "alice@example.com", Credential: "$2a$04$def", DisplayName: "Alice \"Al\" Smith", EmailVerified: true},
	}
	candidates := []entities.Candidate{
		{CandidateID: 1, Name: "John Doe", Description: "Candidate 1"},
		{CandidateID: 3, Name: "Jane Smith", Description: ""},
	}
	if err := store.SaveIdentities(ctx, identities); err != nil {
		t.Fatalf("save identities failed: %v", err)
	}
	if err := store.SaveCandidates(ctx, candidates); err != nil {
		t.Fatalf("save candidates failed: %v", err)
	}
	if err := store.AppendVote(ctx, entities.Vote{VoterUsername: "alice@example.com", ConfidentialChoice: "62"}); err != nil {
		t.Fatalf("append vote failed: %v", err)
	}
	if err := store.AppendAuditEntry(ctx, entities.AuditEntry{
		ActorUsername: "alice@example.com",
		Action:        entities.AuditActionVote,
		OccurredAt:    at,
		Details:       "Vote cast",
	}); err != nil {
		t.Fatalf("append audit failed: %v", err)
	}
	if err := store.AppendAuditEntry(ctx, entities.AuditEntry{
		Action:     entities.AuditActionLoginRejected,
		OccurredAt: at,
		Details:    "Invalid credentials",
	}); err != nil {
		t.Fatalf("append audit failed: %v", err)
	}

	snapshot, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}
	if len(snapshot.Identities) != 2 || snapshot.Identities[1] != identities[1] {
		t.Fatalf("unexpected identities %+v", snapshot.Identities)
	}
	if len(snapshot.Candidates) != 2 || snapshot.Candidates[1] != candidates[1] {
		t.Fatalf("unexpected candidates %+v", snapshot.Candidates)
	}
	if len(snapshot.Votes) != 1 || snapshot.Votes[0].ConfidentialChoice != "62" {
		t.Fatalf("unexpected votes %+v", snapshot.Votes)
	}
	if len(snapshot.AuditEntries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(snapshot.AuditEntries))
	}
	if !snapshot.AuditEntries[0].OccurredAt.Equal(at) || snapshot.AuditEntries[0].Details != "Vote cast" {
		t.Fatalf("unexpected audit entry %+v", snapshot.AuditEntries[0])
	}
	if snapshot.AuditEntries[1].ActorUsername != "" || snapshot.AuditEntries[1].Action != entities.AuditActionLoginRejected {
		t.Fatalf("unexpected anonymous audit entry %+v", snapshot.AuditEntries[1])
	}
}

func TestRewriteReplacesPreviousContent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	ctx := context.Background()
	if err := store.SaveCandidates(ctx, []entities.Candidate{{CandidateID: 1, Name: "A", Description: "a"}}); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := store.SaveCandidates(ctx, []entities.Candidate{
		{CandidateID: 1, Name: "A", Description: "a"},
		{CandidateID: 2, Name: "B", Description: "b"},
	}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, candidatesFile))
	if err != nil {
		t.Fatalf("read candidates file failed: %v", err)
	}
	if got := strings.Count(string(raw), "\n"); got != 2 {
		t.Fatalf("expected 2 candidate lines, got %d in %q", got, raw)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir failed: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestLoadReadsSpaceSeparatedRecords(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s failed: %v", name, err)
		}
	}
	write(identitiesFile, "admin@example.com Admin@123 Admin 1 1\nbob@example.com Pass Bob Builder 1 0\nbroken line\n")
	write(candidatesFile, "1 John Candidate 1\n")
	write(votesFile, "bob@example.com 62\n")
	write(auditFile, "bob@example.com Vote 1700000000 Voted\n")

	store, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	snapshot, err := store.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}
	if len(snapshot.Identities) != 2 {
		t.Fatalf("expected 2 identities, got %+v", snapshot.Identities)
	}
	if snapshot.Identities[1].DisplayName != "Bob Builder" || snapshot.Identities[1].IsAdmin {
		t.Fatalf("unexpected legacy identity %+v", snapshot.Identities[1])
	}
	if len(snapshot.Candidates) != 1 || snapshot.Candidates[0].Description != "Candidate 1" {
		t.Fatalf("unexpected legacy candidates %+v", snapshot.Candidates)
	}
	if len(snapshot.Votes) != 1 || len(snapshot.AuditEntries) != 1 {
		t.Fatalf("unexpected legacy votes/audit %+v %+v", snapshot.Votes, snapshot.AuditEntries)
	}
}

func TestLoadMissingFilesIsEmpty(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	snapshot, err := store.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}
	if len(snapshot.Identities)+len(snapshot.Candidates)+len(snapshot.Votes)+len(snapshot.AuditEntries) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}
}
