package queries

import (
	"context"
	"sort"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	"ballotbox/contexts/elections/voting-core/ports"
)

// TallyUseCase is the read model over the ballot registry.
type TallyUseCase struct {
	Candidates ports.CandidateRepository
}

// Tally orders candidates by vote count, highest first. Equal counts keep
// insertion order.
func (uc TallyUseCase) Tally(ctx context.Context) ([]entities.Candidate, error) {
	candidates, err := uc.Candidates.ListCandidates(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].VoteCount > candidates[j].VoteCount
	})
	return candidates, nil
}

func (uc TallyUseCase) Ballot(ctx context.Context) ([]entities.Candidate, error) {
	return uc.Candidates.ListCandidates(ctx)
}
