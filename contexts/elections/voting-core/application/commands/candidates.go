package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	application "ballotbox/contexts/elections/voting-core/application"
	"ballotbox/contexts/elections/voting-core/application/session"
	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"
)

// AddCandidateCommand is the admin input for a new ballot entry.
type AddCandidateCommand struct {
	Actor       *entities.Identity
	Name        string
	Description string
}

type AddCandidateResult struct {
	Candidate  entities.Candidate
	StorageErr error
}

// CandidateUseCase owns the ballot registry writes.
type CandidateUseCase struct {
	Candidates ports.CandidateRepository
	State      ports.StateStore
	Audit      AuditTrail
	Logger     *slog.Logger
}

func (uc CandidateUseCase) AddCandidate(ctx context.Context, cmd AddCandidateCommand) (AddCandidateResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := session.RequireAdmin(cmd.Actor); err != nil {
		actor := ""
		if cmd.Actor != nil {
			actor = cmd.Actor.Username
		}
		logger.Warn("add candidate denied",
			"event", "voting_core_add_candidate_denied",
			"module", "elections/voting-core",
			"layer", "application",
			"actor", actor,
		)
		return AddCandidateResult{}, err
	}

	name := strings.TrimSpace(cmd.Name)
	description := strings.TrimSpace(cmd.Description)
	if name == "" || !entities.ValidFreeText(name) || !entities.ValidFreeText(description) {
		return AddCandidateResult{}, domainerrors.ErrInvalidCandidate
	}

	candidate, err := uc.Candidates.AddCandidate(ctx, name, description)
	if err != nil {
		logger.Error("add candidate failed",
			"event", "voting_core_add_candidate_failed",
			"module", "elections/voting-core",
			"layer", "application",
			"actor", cmd.Actor.Username,
			"error", err.Error(),
		)
		return AddCandidateResult{}, err
	}
	storageErr := flushCandidates(ctx, uc.State, uc.Candidates, logger)

	audit, err := uc.Audit.Append(ctx, cmd.Actor.Username, entities.AuditActionAddCandidate,
		fmt.Sprintf("Added candidate %d", candidate.CandidateID))
	if err != nil {
		return AddCandidateResult{}, err
	}
	logger.Info("candidate added",
		"event", "voting_core_candidate_added",
		"module", "elections/voting-core",
		"layer", "application",
		"actor", cmd.Actor.Username,
		"candidate_id", candidate.CandidateID,
	)
	return AddCandidateResult{
		Candidate:  candidate,
		StorageErr: errors.Join(storageErr, audit.StorageErr),
	}, nil
}

// RecordVote increments the tally of candidateID.
func (uc CandidateUseCase) RecordVote(ctx context.Context, candidateID int) (entities.Candidate, error) {
	candidate, err := uc.Candidates.IncrementVoteCount(ctx, candidateID)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrUnknownCandidate) {
			application.ResolveLogger(uc.Logger).Error("tally increment failed",
				"event", "voting_core_tally_increment_failed",
				"module", "elections/voting-core",
				"layer", "application",
				"candidate_id", candidateID,
				"error", err.Error(),
			)
		}
		return entities.Candidate{}, err
	}
	return candidate, nil
}
