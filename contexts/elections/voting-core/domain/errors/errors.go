package errors

import "errors"

var (
	ErrPolicyViolation     = errors.New("password does not satisfy policy")
	ErrDuplicateIdentity   = errors.New("identity already exists")
	ErrVerificationFailed  = errors.New("verification failed")
	ErrRateLimited         = errors.New("login rate limit exceeded")
	ErrInvalidCredentials  = errors.New("invalid credentials or email not verified")
	ErrUnauthenticated     = errors.New("no authenticated identity")
	ErrAccessDenied        = errors.New("access denied")
	ErrAlreadyVoted        = errors.New("identity has already voted")
	ErrUnknownCandidate    = errors.New("unknown candidate")
	ErrAntiForgeryMismatch = errors.New("anti-forgery challenge mismatch")
	ErrStorageUnavailable  = errors.New("storage unavailable")

	ErrIdentityNotFound          = errors.New("identity not found")
	ErrInvalidRegistration       = errors.New("invalid registration input")
	ErrInvalidCandidate          = errors.New("invalid candidate input")
	ErrInvalidConfidentialChoice = errors.New("invalid confidential choice")
)
