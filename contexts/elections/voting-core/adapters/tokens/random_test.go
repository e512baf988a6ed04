package tokens

import (
	"strconv"
	"strings"
	"testing"
)

func TestRandomTokenFormats(t *testing.T) {
	source := Random{}
	for i := 0; i < 200; i++ {
		token := source.VerificationToken()
		if !strings.HasPrefix(token, "TOKEN") {
			t.Fatalf("unexpected verification token %q", token)
		}
		value, err := strconv.Atoi(strings.TrimPrefix(token, "TOKEN"))
		if err != nil || value < 0 || value >= 10000 {
			t.Fatalf("verification token out of range: %q", token)
		}

		challenge := source.AntiForgeryChallenge()
		if !strings.HasPrefix(challenge, "CSRF") {
			t.Fatalf("unexpected challenge %q", challenge)
		}
		value, err = strconv.Atoi(strings.TrimPrefix(challenge, "CSRF"))
		if err != nil || value < 0 || value >= 1000 {
			t.Fatalf("challenge out of range: %q", challenge)
		}
	}
}
