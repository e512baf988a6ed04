package commands

import (
	"context"
	"fmt"
	"log/slog"

	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"
)

// storageFailure logs a durable write failure and wraps it as
// ErrStorageUnavailable. In-memory state stays authoritative.
func storageFailure(logger *slog.Logger, event string, err error, attrs ...any) error {
	fields := append([]any{
		"event", event,
		"module", "elections/voting-core",
		"layer", "application",
		"error", err.Error(),
	}, attrs...)
	logger.Error("durable write failed", fields...)
	return fmt.Errorf("%w: %v", domainerrors.ErrStorageUnavailable, err)
}

func flushIdentities(ctx context.Context, state ports.StateStore, identities ports.IdentityRepository, logger *slog.Logger) error {
	if state == nil {
		return nil
	}
	items, err := identities.ListIdentities(ctx)
	if err != nil {
		return storageFailure(logger, "voting_core_identities_snapshot_failed", err)
	}
	if err := state.SaveIdentities(ctx, items); err != nil {
		return storageFailure(logger, "voting_core_identities_persist_failed", err, "count", len(items))
	}
	return nil
}

func flushCandidates(ctx context.Context, state ports.StateStore, candidates ports.CandidateRepository, logger *slog.Logger) error {
	if state == nil {
		return nil
	}
	items, err := candidates.ListCandidates(ctx)
	if err != nil {
		return storageFailure(logger, "voting_core_candidates_snapshot_failed", err)
	}
	if err := state.SaveCandidates(ctx, items); err != nil {
		return storageFailure(logger, "voting_core_candidates_persist_failed", err, "count", len(items))
	}
	return nil
}
