package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the relational StateStore. The primary key on
// voting_votes.username backs the one-vote-per-identity rule.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(
		&identityModel{},
		&candidateModel{},
		&voteModel{},
		&auditEntryModel{},
	); err != nil {
		return r.logError("voting_repo_migrate_failed", err)
	}
	return nil
}

func (r *Repository) LoadSnapshot(ctx context.Context) (ports.Snapshot, error) {
	var identities []identityModel
	if err := r.db.WithContext(ctx).Order("created_at ASC, username ASC").Find(&identities).Error; err != nil {
		return ports.Snapshot{}, r.logError("voting_repo_load_identities_failed", err)
	}
	var candidates []candidateModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&candidates).Error; err != nil {
		return ports.Snapshot{}, r.logError("voting_repo_load_candidates_failed", err)
	}
	var votes []voteModel
	if err := r.db.WithContext(ctx).Order("cast_at ASC, username ASC").Find(&votes).Error; err != nil {
		return ports.Snapshot{}, r.logError("voting_repo_load_votes_failed", err)
	}
	var audit []auditEntryModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&audit).Error; err != nil {
		return ports.Snapshot{}, r.logError("voting_repo_load_audit_failed", err)
	}

	snapshot := ports.Snapshot{
		Identities:   make([]entities.Identity, 0, len(identities)),
		Candidates:   make([]entities.Candidate, 0, len(candidates)),
		Votes:        make([]entities.Vote, 0, len(votes)),
		AuditEntries: make([]entities.AuditEntry, 0, len(audit)),
	}
	for _, row := range identities {
		snapshot.Identities = append(snapshot.Identities, row.toEntity())
	}
	for _, row := range candidates {
		snapshot.Candidates = append(snapshot.Candidates, row.toEntity())
	}
	for _, row := range votes {
		snapshot.Votes = append(snapshot.Votes, row.toEntity())
	}
	for _, row := range audit {
		snapshot.AuditEntries = append(snapshot.AuditEntries, row.toEntity())
	}
	return snapshot, nil
}

// SaveIdentities upserts every identity. Identities are never deleted, so an
// upsert of the full set equals a rewrite.
func (r *Repository) SaveIdentities(ctx context.Context, identities []entities.Identity) error {
	if len(identities) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]identityModel, 0, len(identities))
	for _, identity := range identities {
		rows = append(rows, identityModelFromEntity(identity, now))
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"credential", "full_name", "email_verified", "is_admin"}),
	}).Create(&rows).Error
	if err != nil {
		return r.logError("voting_repo_save_identities_failed", err, "count", len(rows))
	}
	return nil
}

func (r *Repository) SaveCandidates(ctx context.Context, candidates []entities.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	rows := make([]candidateModel, 0, len(candidates))
	for _, candidate := range candidates {
		rows = append(rows, candidateModelFromEntity(candidate))
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description"}),
	}).Create(&rows).Error
	if err != nil {
		return r.logError("voting_repo_save_candidates_failed", err, "count", len(rows))
	}
	return nil
}

func (r *Repository) AppendVote(ctx context.Context, vote entities.Vote) error {
	row := voteModel{
		Username:           strings.TrimSpace(vote.VoterUsername),
		ConfidentialChoice: vote.ConfidentialChoice,
		CastAt:             vote.CastAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyVoted
		}
		return r.logError("voting_repo_append_vote_failed", err, "username", row.Username)
	}
	return nil
}

func (r *Repository) AppendAuditEntry(ctx context.Context, entry entities.AuditEntry) error {
	row := auditEntryModel{
		Username:   entry.ActorUsername,
		Action:     string(entry.Action),
		OccurredAt: entry.OccurredAt.UTC(),
		Details:    entry.Details,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("voting_repo_append_audit_failed", err,
			"actor", entry.ActorUsername,
			"action", string(entry.Action),
		)
	}
	return nil
}

type identityModel struct {
	Username      string    `gorm:"column:username;primaryKey"`
	Credential    string    `gorm:"column:credential;not null"`
	FullName      string    `gorm:"column:full_name;not null"`
	EmailVerified bool      `gorm:"column:email_verified;not null"`
	IsAdmin       bool      `gorm:"column:is_admin;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;not null"`
}

func (identityModel) TableName() string { return "voting_identities" }

func identityModelFromEntity(identity entities.Identity, now time.Time) identityModel {
	return identityModel{
		Username:      strings.TrimSpace(identity.Username),
		Credential:    identity.Credential,
		FullName:      identity.DisplayName,
		EmailVerified: identity.EmailVerified,
		IsAdmin:       identity.IsAdmin,
		CreatedAt:     now,
	}
}

func (m identityModel) toEntity() entities.Identity {
	return entities.Identity{
		Username:      m.Username,
		Credential:    m.Credential,
		DisplayName:   m.FullName,
		EmailVerified: m.EmailVerified,
		IsAdmin:       m.IsAdmin,
	}
}

type candidateModel struct {
	ID          int    `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name        string `gorm:"column:name;not null"`
	Description string `gorm:"column:description;not null"`
}

func (candidateModel) TableName() string { return "voting_candidates" }

func candidateModelFromEntity(candidate entities.Candidate) candidateModel {
	return candidateModel{
		ID:          candidate.CandidateID,
		Name:        candidate.Name,
		Description: candidate.Description,
	}
}

func (m candidateModel) toEntity() entities.Candidate {
	return entities.Candidate{
		CandidateID: m.ID,
		Name:        m.Name,
		Description: m.Description,
	}
}

type voteModel struct {
	Username           string    `gorm:"column:username;primaryKey"`
	ConfidentialChoice string    `gorm:"column:confidential_choice;not null"`
	CastAt             time.Time `gorm:"column:cast_at;not null"`
}

func (voteModel) TableName() string { return "voting_votes" }

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoterUsername:      m.Username,
		ConfidentialChoice: m.ConfidentialChoice,
		CastAt:             m.CastAt.UTC(),
	}
}

type auditEntryModel struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Username   string    `gorm:"column:username;not null;index"`
	Action     string    `gorm:"column:action;not null"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null"`
	Details    string    `gorm:"column:details;not null"`
}

func (auditEntryModel) TableName() string { return "voting_audit_entries" }

func (m auditEntryModel) toEntity() entities.AuditEntry {
	return entities.AuditEntry{
		ActorUsername: m.Username,
		Action:        entities.AuditAction(m.Action),
		OccurredAt:    m.OccurredAt.UTC(),
		Details:       m.Details,
	}
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := []any{
		"event", event,
		"module", "elections/voting-core",
		"layer", "adapter",
		"error", err.Error(),
	}
	fields = append(fields, attrs...)
	r.logger.Error("voting repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

var _ ports.StateStore = (*Repository)(nil)
