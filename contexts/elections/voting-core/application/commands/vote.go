package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "ballotbox/contexts/elections/voting-core/application"
	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"
)

// ChallengeResponder shows a fresh anti-forgery challenge to the caller and
// returns what the caller echoed back.
type ChallengeResponder func(ctx context.Context, challenge string) (string, error)

type CastVoteCommand struct {
	Voter       *entities.Identity
	CandidateID int
	Respond     ChallengeResponder
}

// CastVoteResult returns the receipt and the updated candidate. StorageErr is
// set when the vote counted in memory but was not persisted.
type CastVoteResult struct {
	Receipt    entities.VoteReceipt
	Candidate  entities.Candidate
	StorageErr error
}

// VoteUseCase runs the voting protocol: authentication, single-vote check,
// candidate lookup, anti-forgery echo, then the confidential ledger write and
// tally increment.
type VoteUseCase struct {
	Identities ports.IdentityRepository
	Votes      ports.VoteRepository
	Ballot     CandidateUseCase
	Transform  ports.ConfidentialityTransform
	Tokens     ports.TokenSource
	State      ports.StateStore
	Audit      AuditTrail
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := uc.CheckEligibility(ctx, cmd.Voter); err != nil {
		return CastVoteResult{}, err
	}
	username := strings.TrimSpace(cmd.Voter.Username)
	logger.Info("vote cast started",
		"event", "voting_core_vote_started",
		"module", "elections/voting-core",
		"layer", "application",
		"username", username,
	)

	if _, err := uc.Ballot.Candidates.GetCandidate(ctx, cmd.CandidateID); err != nil {
		if errors.Is(err, domainerrors.ErrUnknownCandidate) {
			logger.Warn("vote for unknown candidate",
				"event", "voting_core_vote_unknown_candidate",
				"module", "elections/voting-core",
				"layer", "application",
				"username", username,
				"candidate_id", cmd.CandidateID,
			)
		}
		return CastVoteResult{}, err
	}

	if err := uc.checkChallenge(ctx, cmd.Respond); err != nil {
		if errors.Is(err, domainerrors.ErrAntiForgeryMismatch) {
			logger.Warn("anti-forgery challenge mismatch",
				"event", "voting_core_vote_challenge_mismatch",
				"module", "elections/voting-core",
				"layer", "application",
				"username", username,
			)
		}
		return CastVoteResult{}, err
	}

	choice, err := uc.Transform.Encode(cmd.CandidateID)
	if err != nil {
		logger.Error("vote choice encoding failed",
			"event", "voting_core_vote_encode_failed",
			"module", "elections/voting-core",
			"layer", "application",
			"username", username,
			"error", err.Error(),
		)
		return CastVoteResult{}, err
	}
	vote := entities.Vote{
		VoterUsername:      username,
		ConfidentialChoice: choice,
		CastAt:             uc.now(),
	}
	if err := uc.Votes.InsertVote(ctx, vote); err != nil {
		return CastVoteResult{}, err
	}
	candidate, err := uc.Ballot.RecordVote(ctx, cmd.CandidateID)
	if err != nil {
		return CastVoteResult{}, err
	}

	var storageErr error
	if uc.State != nil {
		if err := uc.State.AppendVote(ctx, vote); err != nil {
			storageErr = storageFailure(logger, "voting_core_vote_persist_failed", err, "username", username)
		}
	}
	audit, err := uc.Audit.Append(ctx, username, entities.AuditActionVote, "Vote cast")
	if err != nil {
		return CastVoteResult{}, err
	}

	receiptID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	logger.Info("vote recorded",
		"event", "voting_core_vote_recorded",
		"module", "elections/voting-core",
		"layer", "application",
		"username", username,
		"receipt_id", receiptID,
	)
	return CastVoteResult{
		Receipt: entities.VoteReceipt{
			ReceiptID:     receiptID,
			VoterUsername: username,
			CastAt:        vote.CastAt,
		},
		Candidate:  candidate,
		StorageErr: errors.Join(storageErr, audit.StorageErr),
	}, nil
}

// CheckEligibility runs the first two protocol steps: the voter must be a
// signed-in verified identity without a recorded vote. Drivers call it before
// asking for a choice; CastVote repeats it.
func (uc VoteUseCase) CheckEligibility(ctx context.Context, voter *entities.Identity) error {
	logger := application.ResolveLogger(uc.Logger)
	if voter == nil {
		logger.Warn("vote without authenticated identity",
			"event", "voting_core_vote_unauthenticated",
			"module", "elections/voting-core",
			"layer", "application",
		)
		return domainerrors.ErrUnauthenticated
	}
	username := strings.TrimSpace(voter.Username)
	current, err := uc.Identities.GetIdentity(ctx, username)
	if err != nil {
		if errors.Is(err, domainerrors.ErrIdentityNotFound) {
			return domainerrors.ErrUnauthenticated
		}
		return err
	}
	if !current.EmailVerified {
		return domainerrors.ErrUnauthenticated
	}

	voted, err := uc.Votes.HasVoted(ctx, username)
	if err != nil {
		return err
	}
	if voted {
		logger.Warn("repeat vote rejected",
			"event", "voting_core_vote_already_cast",
			"module", "elections/voting-core",
			"layer", "application",
			"username", username,
		)
		return domainerrors.ErrAlreadyVoted
	}
	return nil
}

// checkChallenge issues a challenge that is never reused and compares the
// echo exactly.
func (uc VoteUseCase) checkChallenge(ctx context.Context, respond ChallengeResponder) error {
	challenge := uc.Tokens.AntiForgeryChallenge()
	if respond == nil {
		return domainerrors.ErrAntiForgeryMismatch
	}
	echo, err := respond(ctx, challenge)
	if err != nil {
		return err
	}
	if strings.TrimSpace(echo) != challenge {
		return domainerrors.ErrAntiForgeryMismatch
	}
	return nil
}

func (uc VoteUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
