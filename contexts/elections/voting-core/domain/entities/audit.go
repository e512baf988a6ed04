package entities

import "time"

type AuditAction string

const (
	AuditActionRegister           AuditAction = "Register"
	AuditActionVerificationFailed AuditAction = "VerificationFailed"
	AuditActionLogin              AuditAction = "Login"
	AuditActionLoginRejected      AuditAction = "LoginRejected"
	AuditActionLogout             AuditAction = "Logout"
	AuditActionVote               AuditAction = "Vote"
	AuditActionAddCandidate       AuditAction = "AddCandidate"
)

type AuditEntry struct {
	ActorUsername string
	Action        AuditAction
	OccurredAt    time.Time
	Details       string
}
