package ports

import (
	"context"
	"time"

	"ballotbox/contexts/elections/voting-core/domain/entities"
)

type IdentityRepository interface {
	GetIdentity(ctx context.Context, username string) (entities.Identity, error)
	CreatePendingRegistration(ctx context.Context, pending entities.PendingRegistration) error
	TakePendingRegistration(ctx context.Context, username string) (entities.PendingRegistration, bool, error)
	SaveIdentity(ctx context.Context, identity entities.Identity) error
	ListIdentities(ctx context.Context) ([]entities.Identity, error)
}

type CandidateRepository interface {
	AddCandidate(ctx context.Context, name string, description string) (entities.Candidate, error)
	RestoreCandidate(ctx context.Context, candidate entities.Candidate) error
	GetCandidate(ctx context.Context, candidateID int) (entities.Candidate, error)
	IncrementVoteCount(ctx context.Context, candidateID int) (entities.Candidate, error)
	ListCandidates(ctx context.Context) ([]entities.Candidate, error)
}

// VoteRepository enforces at most one vote per voter. InsertVote returns
// ErrAlreadyVoted when a vote for the same username already exists.
type VoteRepository interface {
	HasVoted(ctx context.Context, username string) (bool, error)
	InsertVote(ctx context.Context, vote entities.Vote) error
	ListVotes(ctx context.Context) ([]entities.Vote, error)
}

type AuditRepository interface {
	AppendAuditEntry(ctx context.Context, entry entities.AuditEntry) error
	ListAuditEntries(ctx context.Context) ([]entities.AuditEntry, error)
}

// AttemptStore keeps the last accepted login attempt per username. The
// check and the update happen under one critical section.
type AttemptStore interface {
	AcceptAttempt(ctx context.Context, username string, now time.Time, window time.Duration) (bool, error)
}

// Snapshot is the durable state read at startup.
type Snapshot struct {
	Identities   []entities.Identity
	Candidates   []entities.Candidate
	Votes        []entities.Vote
	AuditEntries []entities.AuditEntry
}

// StateStore is the durable side of the module. Identities and candidates are
// rewritten whole, votes and audit entries are appended.
type StateStore interface {
	LoadSnapshot(ctx context.Context) (Snapshot, error)
	SaveIdentities(ctx context.Context, identities []entities.Identity) error
	SaveCandidates(ctx context.Context, candidates []entities.Candidate) error
	AppendVote(ctx context.Context, vote entities.Vote) error
	AppendAuditEntry(ctx context.Context, entry entities.AuditEntry) error
}

type CredentialHasher interface {
	Hash(password string) (string, error)
	Matches(credential string, password string) bool
}

// ConfidentialityTransform hides a voter's choice in the vote record.
// Decode(Encode(x)) must return x for every valid candidate id.
type ConfidentialityTransform interface {
	Encode(candidateID int) (string, error)
	Decode(confidentialChoice string) (int, error)
}

type TokenSource interface {
	VerificationToken() string
	AntiForgeryChallenge() string
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
