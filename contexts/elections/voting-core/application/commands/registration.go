package commands

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	application "ballotbox/contexts/elections/voting-core/application"
	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"
)

// RegisterCommand is the input for opening a pending registration.
type RegisterCommand struct {
	Username    string
	Password    string
	DisplayName string
}

// RegisterResult carries the verification challenge. There is no mail
// transport, so the driver shows the token to the user.
type RegisterResult struct {
	Username          string
	VerificationToken string
}

// ConfirmVerificationCommand echoes the token issued by Register.
type ConfirmVerificationCommand struct {
	Username string
	Token    string
}

type ConfirmVerificationResult struct {
	Identity   entities.Identity
	StorageErr error
}

type RegistrationUseCase struct {
	Identities ports.IdentityRepository
	Hasher     ports.CredentialHasher
	Tokens     ports.TokenSource
	State      ports.StateStore
	Audit      AuditTrail
	Logger     *slog.Logger
}

func (uc RegistrationUseCase) Register(ctx context.Context, cmd RegisterCommand) (RegisterResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	username := strings.TrimSpace(cmd.Username)
	displayName := strings.TrimSpace(cmd.DisplayName)
	logger.Info("registration started",
		"event", "voting_core_register_started",
		"module", "elections/voting-core",
		"layer", "application",
		"username", username,
	)

	if !entities.ValidUsername(username) || displayName == "" || !entities.ValidFreeText(displayName) {
		logger.Warn("registration input rejected",
			"event", "voting_core_register_invalid_input",
			"module", "elections/voting-core",
			"layer", "application",
			"username", username,
		)
		return RegisterResult{}, domainerrors.ErrInvalidRegistration
	}
	if !entities.PasswordSatisfiesPolicy(cmd.Password) {
		logger.Warn("registration password rejected by policy",
			"event", "voting_core_register_policy_violation",
			"module", "elections/voting-core",
			"layer", "application",
			"username", username,
		)
		return RegisterResult{}, domainerrors.ErrPolicyViolation
	}
	if _, err := uc.Identities.GetIdentity(ctx, username); err == nil {
		logger.Warn("registration for existing identity",
			"event", "voting_core_register_duplicate",
			"module", "elections/voting-core",
			"layer", "application",
			"username", username,
		)
		return RegisterResult{}, domainerrors.ErrDuplicateIdentity
	} else if !errors.Is(err, domainerrors.ErrIdentityNotFound) {
		return RegisterResult{}, err
	}

	credential, err := uc.Hasher.Hash(cmd.Password)
	if err != nil {
		logger.Error("credential hashing failed",
			"event", "voting_core_register_hash_failed",
			"module", "elections/voting-core",
			"layer", "application",
			"username", username,
			"error", err.Error(),
		)
		return RegisterResult{}, err
	}
	token := uc.Tokens.VerificationToken()
	if err := uc.Identities.CreatePendingRegistration(ctx, entities.PendingRegistration{
		Identity: entities.Identity{
			Username:    username,
			Credential:  credential,
			DisplayName: displayName,
		},
		Token: token,
	}); err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateIdentity) {
			logger.Warn("registration already pending",
				"event", "voting_core_register_duplicate",
				"module", "elections/voting-core",
				"layer", "application",
				"username", username,
			)
		}
		return RegisterResult{}, err
	}

	logger.Info("verification token issued",
		"event", "voting_core_register_token_issued",
		"module", "elections/voting-core",
		"layer", "application",
		"username", username,
	)
	return RegisterResult{Username: username, VerificationToken: token}, nil
}

// ConfirmVerification consumes the pending token. A mismatch discards the
// pending identity, so the username can register again from scratch.
func (uc RegistrationUseCase) ConfirmVerification(
	ctx context.Context,
	cmd ConfirmVerificationCommand,
) (ConfirmVerificationResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	username := strings.TrimSpace(cmd.Username)

	pending, found, err := uc.Identities.TakePendingRegistration(ctx, username)
	if err != nil {
		return ConfirmVerificationResult{}, err
	}
	if !found {
		logger.Warn("verification without pending registration",
			"event", "voting_core_verify_not_pending",
			"module", "elections/voting-core",
			"layer", "application",
			"username", username,
		)
		return ConfirmVerificationResult{}, domainerrors.ErrVerificationFailed
	}

	supplied := strings.TrimSpace(cmd.Token)
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(pending.Token)) != 1 {
		logger.Warn("verification token mismatch, registration rolled back",
			"event", "voting_core_verify_mismatch",
			"module", "elections/voting-core",
			"layer", "application",
			"username", username,
		)
		audit, auditErr := uc.Audit.Append(ctx, username, entities.AuditActionVerificationFailed, "Registration rolled back")
		if auditErr != nil {
			return ConfirmVerificationResult{}, auditErr
		}
		return ConfirmVerificationResult{StorageErr: audit.StorageErr}, domainerrors.ErrVerificationFailed
	}

	identity := pending.Identity
	identity.EmailVerified = true
	if err := uc.Identities.SaveIdentity(ctx, identity); err != nil {
		return ConfirmVerificationResult{}, err
	}
	storageErr := flushIdentities(ctx, uc.State, uc.Identities, logger)

	audit, err := uc.Audit.Append(ctx, identity.Username, entities.AuditActionRegister, "User registered and verified")
	if err != nil {
		return ConfirmVerificationResult{}, err
	}
	logger.Info("identity registered and verified",
		"event", "voting_core_register_completed",
		"module", "elections/voting-core",
		"layer", "application",
		"username", identity.Username,
	)
	return ConfirmVerificationResult{
		Identity:   identity,
		StorageErr: errors.Join(storageErr, audit.StorageErr),
	}, nil
}
