package clitransport

import (
	"errors"
	"fmt"
	"time"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"

	"github.com/charmbracelet/lipgloss"
)

const (
	MainMenu  = "1. Register\n2. Login\n3. Vote\n4. View Results\n5. Admin Interface\n6. Exit"
	AdminMenu = "Admin Menu:\n1. Add Candidate\n2. View Audit Logs\n3. Return"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func Heading(text string) string { return headingStyle.Render(text) }
func Success(text string) string { return successStyle.Render(text) }
func Failure(text string) string { return failureStyle.Render(text) }
func Warning(text string) string { return warningStyle.Render(text) }

// BallotLine renders a candidate as offered on the ballot.
func BallotLine(candidate entities.Candidate) string {
	return fmt.Sprintf("%d: %s - %s", candidate.CandidateID, candidate.Name, candidate.Description)
}

func ResultLine(candidate entities.Candidate) string {
	return fmt.Sprintf("%s - %s: %d votes", candidate.Name, candidate.Description, candidate.VoteCount)
}

func AuditLine(entry entities.AuditEntry) string {
	return fmt.Sprintf("User: %s, Action: %s, Time: %s, Details: %s",
		entry.ActorUsername,
		entry.Action,
		entry.OccurredAt.Local().Format(time.ANSIC),
		entry.Details,
	)
}

// ErrorMessage maps an operation error to the text shown at the prompt.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrPolicyViolation):
		return "Password does not meet complexity requirements!"
	case errors.Is(err, domainerrors.ErrDuplicateIdentity):
		return "User already exists!"
	case errors.Is(err, domainerrors.ErrInvalidRegistration):
		return "Invalid username or full name!"
	case errors.Is(err, domainerrors.ErrVerificationFailed):
		return "Verification failed!"
	case errors.Is(err, domainerrors.ErrRateLimited):
		return "Rate limit exceeded. Try again later."
	case errors.Is(err, domainerrors.ErrInvalidCredentials):
		return "Invalid credentials or email not verified!"
	case errors.Is(err, domainerrors.ErrUnauthenticated):
		return "Error: User not logged in!"
	case errors.Is(err, domainerrors.ErrAccessDenied):
		return "Error: Access denied!"
	case errors.Is(err, domainerrors.ErrAlreadyVoted):
		return "You have already voted!"
	case errors.Is(err, domainerrors.ErrUnknownCandidate):
		return "Invalid candidate ID!"
	case errors.Is(err, domainerrors.ErrInvalidCandidate):
		return "Invalid candidate details!"
	case errors.Is(err, domainerrors.ErrAntiForgeryMismatch):
		return "CSRF verification failed!"
	case errors.Is(err, domainerrors.ErrStorageUnavailable):
		return "Warning: changes could not be saved to storage."
	default:
		return "Error: " + err.Error()
	}
}
