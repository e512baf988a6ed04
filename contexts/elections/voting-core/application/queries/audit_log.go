package queries

import (
	"context"
	"log/slog"

	application "ballotbox/contexts/elections/voting-core/application"
	"ballotbox/contexts/elections/voting-core/application/session"
	"ballotbox/contexts/elections/voting-core/domain/entities"
	"ballotbox/contexts/elections/voting-core/ports"
)

// AuditLogUseCase exposes the audit trail to admins.
type AuditLogUseCase struct {
	Audit  ports.AuditRepository
	Logger *slog.Logger
}

// List returns audit entries in creation order. Only admins may read them.
func (uc AuditLogUseCase) List(ctx context.Context, actor *entities.Identity) ([]entities.AuditEntry, error) {
	if err := session.RequireAdmin(actor); err != nil {
		application.ResolveLogger(uc.Logger).Warn("audit log read denied",
			"event", "voting_core_audit_list_denied",
			"module", "elections/voting-core",
			"layer", "application",
		)
		return nil, err
	}
	return uc.Audit.ListAuditEntries(ctx)
}
