package tokens

import (
	"fmt"
	"math/rand/v2"

	"ballotbox/contexts/elections/voting-core/ports"
)

// Random issues short display tokens. They are echoed back by the same user
// who reads them, so they only prove freshness.
type Random struct{}

func (Random) VerificationToken() string {
	return fmt.Sprintf("TOKEN%d", rand.IntN(10000))
}

func (Random) AntiForgeryChallenge() string {
	return fmt.Sprintf("CSRF%d", rand.IntN(1000))
}

var _ ports.TokenSource = Random{}
