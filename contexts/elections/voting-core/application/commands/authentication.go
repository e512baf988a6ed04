package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "ballotbox/contexts/elections/voting-core/application"
	"ballotbox/contexts/elections/voting-core/application/ratelimit"
	"ballotbox/contexts/elections/voting-core/application/session"
	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"
)

// AuthenticateCommand carries the login credentials as typed.
type AuthenticateCommand struct {
	Username string
	Password string
}

type AuthenticateResult struct {
	Identity   entities.Identity
	StorageErr error
}

type LogoutResult struct {
	Username   string
	SignedOut  bool
	StorageErr error
}

// AuthenticationUseCase signs identities in and out of the session. A failed
// attempt also clears the session.
type AuthenticationUseCase struct {
	Identities ports.IdentityRepository
	Hasher     ports.CredentialHasher
	Limiter    ratelimit.Limiter
	Session    *session.Session
	Audit      AuditTrail
	Logger     *slog.Logger
}

func (uc AuthenticationUseCase) Authenticate(ctx context.Context, cmd AuthenticateCommand) (AuthenticateResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	username := strings.TrimSpace(cmd.Username)

	allowed, err := uc.Limiter.Allow(ctx, username)
	if err != nil {
		return AuthenticateResult{}, err
	}
	if !allowed {
		uc.signOut()
		return uc.reject(ctx, username, "Rate limited", domainerrors.ErrRateLimited)
	}

	identity, err := uc.Identities.GetIdentity(ctx, username)
	if err != nil && !errors.Is(err, domainerrors.ErrIdentityNotFound) {
		return AuthenticateResult{}, err
	}
	// Unknown user, wrong password and unverified email share one outcome.
	if err != nil || !uc.Hasher.Matches(identity.Credential, cmd.Password) || !identity.EmailVerified {
		uc.signOut()
		logger.Warn("login rejected",
			"event", "voting_core_login_rejected",
			"module", "elections/voting-core",
			"layer", "application",
			"username", username,
		)
		return uc.reject(ctx, username, "Invalid credentials", domainerrors.ErrInvalidCredentials)
	}

	if uc.Session != nil {
		uc.Session.SignIn(identity)
	}
	audit, err := uc.Audit.Append(ctx, identity.Username, entities.AuditActionLogin, "User logged in")
	if err != nil {
		return AuthenticateResult{}, err
	}
	logger.Info("login succeeded",
		"event", "voting_core_login_succeeded",
		"module", "elections/voting-core",
		"layer", "application",
		"username", identity.Username,
		"is_admin", identity.IsAdmin,
	)
	return AuthenticateResult{Identity: identity, StorageErr: audit.StorageErr}, nil
}

func (uc AuthenticationUseCase) Logout(ctx context.Context) (LogoutResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if uc.Session == nil {
		return LogoutResult{}, nil
	}
	previous, signedIn := uc.Session.SignOut()
	if !signedIn {
		return LogoutResult{}, nil
	}
	audit, err := uc.Audit.Append(ctx, previous.Username, entities.AuditActionLogout, "User logged out")
	if err != nil {
		return LogoutResult{}, err
	}
	logger.Info("logout completed",
		"event", "voting_core_logout_completed",
		"module", "elections/voting-core",
		"layer", "application",
		"username", previous.Username,
	)
	return LogoutResult{Username: previous.Username, SignedOut: true, StorageErr: audit.StorageErr}, nil
}

func (uc AuthenticationUseCase) reject(
	ctx context.Context,
	username string,
	details string,
	cause error,
) (AuthenticateResult, error) {
	audit, err := uc.Audit.Append(ctx, username, entities.AuditActionLoginRejected, details)
	if err != nil {
		return AuthenticateResult{}, err
	}
	return AuthenticateResult{StorageErr: audit.StorageErr}, cause
}

func (uc AuthenticationUseCase) signOut() {
	if uc.Session != nil {
		uc.Session.SignOut()
	}
}
