package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "ballotbox/contexts/elections/voting-core/application"
	"ballotbox/contexts/elections/voting-core/domain/entities"
	"ballotbox/contexts/elections/voting-core/ports"
)

// AuditTrail appends entries to the in-memory log and persists each one
// immediately. Callers append only after the change they describe has been
// committed.
type AuditTrail struct {
	Audit  ports.AuditRepository
	State  ports.StateStore
	Clock  ports.Clock
	Logger *slog.Logger
}

type AppendAuditResult struct {
	Entry      entities.AuditEntry
	StorageErr error
}

func (t AuditTrail) Append(
	ctx context.Context,
	actor string,
	action entities.AuditAction,
	details string,
) (AppendAuditResult, error) {
	logger := application.ResolveLogger(t.Logger)
	entry := entities.AuditEntry{
		ActorUsername: strings.TrimSpace(actor),
		Action:        action,
		OccurredAt:    t.now(),
		Details:       strings.TrimSpace(details),
	}
	if err := t.Audit.AppendAuditEntry(ctx, entry); err != nil {
		logger.Error("audit append failed",
			"event", "voting_core_audit_append_failed",
			"module", "elections/voting-core",
			"layer", "application",
			"actor", entry.ActorUsername,
			"action", string(entry.Action),
			"error", err.Error(),
		)
		return AppendAuditResult{}, err
	}

	result := AppendAuditResult{Entry: entry}
	if t.State != nil {
		if err := t.State.AppendAuditEntry(ctx, entry); err != nil {
			result.StorageErr = storageFailure(logger, "voting_core_audit_persist_failed", err,
				"actor", entry.ActorUsername,
				"action", string(entry.Action),
			)
		}
	}
	logger.Debug("audit entry appended",
		"event", "voting_core_audit_appended",
		"module", "elections/voting-core",
		"layer", "application",
		"actor", entry.ActorUsername,
		"action", string(entry.Action),
	)
	return result, nil
}

func (t AuditTrail) now() time.Time {
	if t.Clock == nil {
		return time.Now().UTC()
	}
	return t.Clock.Now().UTC()
}
