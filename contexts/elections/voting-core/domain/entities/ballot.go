package entities

import "time"

type Candidate struct {
	CandidateID int
	Name        string
	Description string
	VoteCount   int
}

// Vote is the per-voter ledger record. The chosen candidate is only held in
// its encoded form.
type Vote struct {
	VoterUsername      string
	ConfidentialChoice string
	CastAt             time.Time
}

type VoteReceipt struct {
	ReceiptID     string
	VoterUsername string
	CastAt        time.Time
}
