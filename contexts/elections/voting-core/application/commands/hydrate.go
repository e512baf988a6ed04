package commands

import (
	"context"
	"errors"
	"log/slog"

	application "ballotbox/contexts/elections/voting-core/application"
	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"
)

type SeedAdmin struct {
	Username    string
	Password    string
	DisplayName string
}

type SeedCandidate struct {
	Name        string
	Description string
}

type Seed struct {
	Admin      *SeedAdmin
	Candidates []SeedCandidate
}

// DefaultSeed is applied to empty stores on first start.
func DefaultSeed() Seed {
	return Seed{
		Admin: &SeedAdmin{
			Username:    "admin@example.com",
			Password:    "Admin@123",
			DisplayName: "Admin User",
		},
		Candidates: []SeedCandidate{
			{Name: "John Doe", Description: "Candidate 1"},
			{Name: "Jane Smith", Description: "Candidate 2"},
		},
	}
}

type HydrateResult struct {
	Identities    int
	Candidates    int
	Votes         int
	AuditEntries  int
	SkippedVotes  int
	SeededAdmin   bool
	SeededBallots int
	StorageErr    error
}

// HydrationUseCase rebuilds in-memory state from durable storage at startup.
// Tallies are not stored; they are recomputed by decoding every vote.
type HydrationUseCase struct {
	State      ports.StateStore
	Identities ports.IdentityRepository
	Ballot     CandidateUseCase
	Votes      ports.VoteRepository
	Audit      ports.AuditRepository
	Transform  ports.ConfidentialityTransform
	Hasher     ports.CredentialHasher
	Seed       Seed
	Logger     *slog.Logger
}

func (uc HydrationUseCase) Hydrate(ctx context.Context) (HydrateResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	var result HydrateResult

	snapshot := ports.Snapshot{}
	if uc.State != nil {
		loaded, err := uc.State.LoadSnapshot(ctx)
		if err != nil {
			result.StorageErr = storageFailure(logger, "voting_core_snapshot_load_failed", err)
		} else {
			snapshot = loaded
		}
	}

	for _, identity := range snapshot.Identities {
		if err := uc.Identities.SaveIdentity(ctx, identity); err != nil {
			return HydrateResult{}, err
		}
		result.Identities++
	}
	for _, candidate := range snapshot.Candidates {
		candidate.VoteCount = 0
		if err := uc.Ballot.Candidates.RestoreCandidate(ctx, candidate); err != nil {
			logger.Warn("stored candidate skipped",
				"event", "voting_core_candidate_replay_skipped",
				"module", "elections/voting-core",
				"layer", "application",
				"candidate_id", candidate.CandidateID,
				"error", err.Error(),
			)
			continue
		}
		result.Candidates++
	}
	for _, vote := range snapshot.Votes {
		if err := uc.Votes.InsertVote(ctx, vote); err != nil {
			if errors.Is(err, domainerrors.ErrAlreadyVoted) {
				logger.Warn("duplicate stored vote ignored",
					"event", "voting_core_vote_replay_duplicate",
					"module", "elections/voting-core",
					"layer", "application",
					"username", vote.VoterUsername,
				)
				result.SkippedVotes++
				continue
			}
			return HydrateResult{}, err
		}
		result.Votes++
		if err := uc.replayTally(ctx, vote); err != nil {
			logger.Warn("stored vote not counted",
				"event", "voting_core_vote_replay_skipped",
				"module", "elections/voting-core",
				"layer", "application",
				"username", vote.VoterUsername,
				"error", err.Error(),
			)
			result.SkippedVotes++
		}
	}
	for _, entry := range snapshot.AuditEntries {
		if err := uc.Audit.AppendAuditEntry(ctx, entry); err != nil {
			return HydrateResult{}, err
		}
		result.AuditEntries++
	}

	if err := uc.applySeed(ctx, &result, logger); err != nil {
		return HydrateResult{}, err
	}

	logger.Info("state hydrated",
		"event", "voting_core_hydrated",
		"module", "elections/voting-core",
		"layer", "application",
		"identities", result.Identities,
		"candidates", result.Candidates,
		"votes", result.Votes,
		"audit_entries", result.AuditEntries,
		"skipped_votes", result.SkippedVotes,
	)
	return result, nil
}

func (uc HydrationUseCase) replayTally(ctx context.Context, vote entities.Vote) error {
	candidateID, err := uc.Transform.Decode(vote.ConfidentialChoice)
	if err != nil {
		return err
	}
	_, err = uc.Ballot.RecordVote(ctx, candidateID)
	return err
}

// applySeed fills empty stores. Seeds are not flushed when the snapshot could
// not be read, so unreadable files are not overwritten at startup.
func (uc HydrationUseCase) applySeed(ctx context.Context, result *HydrateResult, logger *slog.Logger) error {
	state := uc.State
	if result.StorageErr != nil {
		state = nil
	}
	if uc.Seed.Admin != nil && result.Identities == 0 {
		credential, err := uc.Hasher.Hash(uc.Seed.Admin.Password)
		if err != nil {
			return err
		}
		if err := uc.Identities.SaveIdentity(ctx, entities.Identity{
			Username:      uc.Seed.Admin.Username,
			Credential:    credential,
			DisplayName:   uc.Seed.Admin.DisplayName,
			EmailVerified: true,
			IsAdmin:       true,
		}); err != nil {
			return err
		}
		result.SeededAdmin = true
		result.StorageErr = errors.Join(result.StorageErr, flushIdentities(ctx, state, uc.Identities, logger))
		logger.Info("admin identity seeded",
			"event", "voting_core_admin_seeded",
			"module", "elections/voting-core",
			"layer", "application",
			"username", uc.Seed.Admin.Username,
		)
	}

	if len(uc.Seed.Candidates) > 0 && result.Candidates == 0 {
		for _, seed := range uc.Seed.Candidates {
			if _, err := uc.Ballot.Candidates.AddCandidate(ctx, seed.Name, seed.Description); err != nil {
				return err
			}
			result.SeededBallots++
		}
		result.StorageErr = errors.Join(result.StorageErr, flushCandidates(ctx, state, uc.Ballot.Candidates, logger))
		logger.Info("candidates seeded",
			"event", "voting_core_candidates_seeded",
			"module", "elections/voting-core",
			"layer", "application",
			"count", result.SeededBallots,
		)
	}
	return nil
}
