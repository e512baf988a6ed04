package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"

	"github.com/google/uuid"
)

// Store is the authoritative in-process state. Durable storage is written
// from it, never read back during a run.
type Store struct {
	mu sync.RWMutex

	identities    map[string]entities.Identity
	identityOrder []string
	pending       map[string]entities.PendingRegistration

	candidates      []entities.Candidate
	candidateIndex  map[int]int
	nextCandidateID int

	votes     map[string]entities.Vote
	voteOrder []string

	audit    []entities.AuditEntry
	attempts map[string]time.Time
}

// NewStore returns an empty store. Candidate ids start at 1.
func NewStore() *Store {
	return &Store{
		identities:      make(map[string]entities.Identity),
		pending:         make(map[string]entities.PendingRegistration),
		candidateIndex:  make(map[int]int),
		nextCandidateID: 1,
		votes:           make(map[string]entities.Vote),
		attempts:        make(map[string]time.Time),
	}
}

func (s *Store) GetIdentity(_ context.Context, username string) (entities.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[strings.TrimSpace(username)]
	if !ok {
		return entities.Identity{}, domainerrors.ErrIdentityNotFound
	}
	return identity, nil
}

func (s *Store) CreatePendingRegistration(_ context.Context, pending entities.PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	username := strings.TrimSpace(pending.Identity.Username)
	if _, exists := s.identities[username]; exists {
		return domainerrors.ErrDuplicateIdentity
	}
	if _, exists := s.pending[username]; exists {
		return domainerrors.ErrDuplicateIdentity
	}
	pending.Identity.Username = username
	s.pending[username] = pending
	return nil
}

// TakePendingRegistration removes and returns the pending registration, so a
// token can be checked exactly once.
func (s *Store) TakePendingRegistration(_ context.Context, username string) (entities.PendingRegistration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	username = strings.TrimSpace(username)
	pending, ok := s.pending[username]
	if !ok {
		return entities.PendingRegistration{}, false, nil
	}
	delete(s.pending, username)
	return pending, true, nil
}

func (s *Store) SaveIdentity(_ context.Context, identity entities.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	username := strings.TrimSpace(identity.Username)
	identity.Username = username
	if _, exists := s.identities[username]; !exists {
		s.identityOrder = append(s.identityOrder, username)
	}
	s.identities[username] = identity
	return nil
}

func (s *Store) ListIdentities(_ context.Context) ([]entities.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Identity, 0, len(s.identityOrder))
	for _, username := range s.identityOrder {
		items = append(items, s.identities[username])
	}
	return items, nil
}

func (s *Store) AddCandidate(_ context.Context, name string, description string) (entities.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate := entities.Candidate{
		CandidateID: s.nextCandidateID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}
	s.appendCandidateLocked(candidate)
	return candidate, nil
}

// RestoreCandidate inserts a candidate with its persisted id. Later calls to
// AddCandidate continue after the highest id seen.
func (s *Store) RestoreCandidate(_ context.Context, candidate entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if candidate.CandidateID <= 0 {
		return domainerrors.ErrInvalidCandidate
	}
	if _, exists := s.candidateIndex[candidate.CandidateID]; exists {
		return domainerrors.ErrInvalidCandidate
	}
	s.appendCandidateLocked(candidate)
	return nil
}

func (s *Store) appendCandidateLocked(candidate entities.Candidate) {
	s.candidateIndex[candidate.CandidateID] = len(s.candidates)
	s.candidates = append(s.candidates, candidate)
	if candidate.CandidateID >= s.nextCandidateID {
		s.nextCandidateID = candidate.CandidateID + 1
	}
}

func (s *Store) GetCandidate(_ context.Context, candidateID int) (entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	index, ok := s.candidateIndex[candidateID]
	if !ok {
		return entities.Candidate{}, domainerrors.ErrUnknownCandidate
	}
	return s.candidates[index], nil
}

func (s *Store) IncrementVoteCount(_ context.Context, candidateID int) (entities.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.candidateIndex[candidateID]
	if !ok {
		return entities.Candidate{}, domainerrors.ErrUnknownCandidate
	}
	s.candidates[index].VoteCount++
	return s.candidates[index], nil
}

// ListCandidates returns candidates in insertion order.
func (s *Store) ListCandidates(_ context.Context) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Candidate(nil), s.candidates...), nil
}

func (s *Store) HasVoted(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.votes[strings.TrimSpace(username)]
	return ok, nil
}

func (s *Store) InsertVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	username := strings.TrimSpace(vote.VoterUsername)
	if _, exists := s.votes[username]; exists {
		return domainerrors.ErrAlreadyVoted
	}
	vote.VoterUsername = username
	s.votes[username] = vote
	s.voteOrder = append(s.voteOrder, username)
	return nil
}

func (s *Store) ListVotes(_ context.Context) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Vote, 0, len(s.voteOrder))
	for _, username := range s.voteOrder {
		items = append(items, s.votes[username])
	}
	return items, nil
}

func (s *Store) AppendAuditEntry(_ context.Context, entry entities.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, entry)
	return nil
}

func (s *Store) ListAuditEntries(_ context.Context) ([]entities.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.AuditEntry(nil), s.audit...), nil
}

// AcceptAttempt records now as the last accepted attempt when username has
// no record or when more than window has elapsed since the last accepted one.
// Rejected attempts leave the record untouched.
func (s *Store) AcceptAttempt(_ context.Context, username string, now time.Time, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	username = strings.TrimSpace(username)
	last, seen := s.attempts[username]
	if seen && now.Sub(last) <= window {
		return false, nil
	}
	s.attempts[username] = now
	return true, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var (
	_ ports.IdentityRepository  = (*Store)(nil)
	_ ports.CandidateRepository = (*Store)(nil)
	_ ports.VoteRepository      = (*Store)(nil)
	_ ports.AuditRepository     = (*Store)(nil)
	_ ports.AttemptStore        = (*Store)(nil)
	_ ports.Clock               = (*Store)(nil)
	_ ports.IDGenerator         = (*Store)(nil)
)
