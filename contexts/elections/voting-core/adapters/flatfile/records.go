package flatfile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ballotbox/contexts/elections/voting-core/domain/entities"
)

// Record layouts, one per line:
//
//	users.txt       username credential fullName verified(0|1) admin(0|1)
//	candidates.txt  id name description
//	votes.txt       username confidentialChoice
//	audit.txt       username action unixTimestamp details
const (
	identitiesFile = "users.txt"
	candidatesFile = "candidates.txt"
	votesFile      = "votes.txt"
	auditFile      = "audit.txt"
)

func identityRecord(identity entities.Identity) []string {
	return []string{
		identity.Username,
		identity.Credential,
		identity.DisplayName,
		formatFlag(identity.EmailVerified),
		formatFlag(identity.IsAdmin),
	}
}

func parseIdentity(fields []string) (entities.Identity, error) {
	// Whitespace-split records may carry a multi-word display name.
	if len(fields) > 5 {
		fields = append(fields[:2:2], strings.Join(fields[2:len(fields)-2], " "), fields[len(fields)-2], fields[len(fields)-1])
	}
	if len(fields) != 5 {
		return entities.Identity{}, fmt.Errorf("identity record has %d fields", len(fields))
	}
	verified, err := parseFlag(fields[3])
	if err != nil {
		return entities.Identity{}, err
	}
	admin, err := parseFlag(fields[4])
	if err != nil {
		return entities.Identity{}, err
	}
	if !entities.ValidUsername(fields[0]) {
		return entities.Identity{}, fmt.Errorf("identity record has invalid username %q", fields[0])
	}
	return entities.Identity{
		Username:      fields[0],
		Credential:    fields[1],
		DisplayName:   fields[2],
		EmailVerified: verified,
		IsAdmin:       admin,
	}, nil
}

func candidateRecord(candidate entities.Candidate) []string {
	return []string{
		strconv.Itoa(candidate.CandidateID),
		candidate.Name,
		candidate.Description,
	}
}

func parseCandidate(fields []string) (entities.Candidate, error) {
	if len(fields) > 3 {
		fields = []string{fields[0], fields[1], strings.Join(fields[2:], " ")}
	}
	if len(fields) != 3 {
		return entities.Candidate{}, fmt.Errorf("candidate record has %d fields", len(fields))
	}
	candidateID, err := strconv.Atoi(fields[0])
	if err != nil || candidateID <= 0 {
		return entities.Candidate{}, fmt.Errorf("candidate record has invalid id %q", fields[0])
	}
	return entities.Candidate{
		CandidateID: candidateID,
		Name:        fields[1],
		Description: fields[2],
	}, nil
}

func voteRecord(vote entities.Vote) []string {
	return []string{vote.VoterUsername, vote.ConfidentialChoice}
}

func parseVote(fields []string) (entities.Vote, error) {
	if len(fields) != 2 {
		return entities.Vote{}, fmt.Errorf("vote record has %d fields", len(fields))
	}
	return entities.Vote{
		VoterUsername:      fields[0],
		ConfidentialChoice: fields[1],
	}, nil
}

func auditRecord(entry entities.AuditEntry) []string {
	return []string{
		entry.ActorUsername,
		string(entry.Action),
		strconv.FormatInt(entry.OccurredAt.Unix(), 10),
		entry.Details,
	}
}

func parseAuditEntry(fields []string) (entities.AuditEntry, error) {
	if len(fields) > 4 {
		fields = []string{fields[0], fields[1], fields[2], strings.Join(fields[3:], " ")}
	}
	if len(fields) != 4 {
		return entities.AuditEntry{}, fmt.Errorf("audit record has %d fields", len(fields))
	}
	unix, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return entities.AuditEntry{}, fmt.Errorf("audit record has invalid timestamp %q", fields[2])
	}
	return entities.AuditEntry{
		ActorUsername: fields[0],
		Action:        entities.AuditAction(fields[1]),
		OccurredAt:    time.Unix(unix, 0).UTC(),
		Details:       fields[3],
	}, nil
}

func formatFlag(value bool) string {
	if value {
		return "1"
	}
	return "0"
}

func parseFlag(raw string) (bool, error) {
	switch raw {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid flag %q", raw)
	}
}
