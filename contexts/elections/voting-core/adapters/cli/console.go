package cliadapter

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	application "ballotbox/contexts/elections/voting-core/application"
	"ballotbox/contexts/elections/voting-core/application/commands"
	"ballotbox/contexts/elections/voting-core/application/queries"
	"ballotbox/contexts/elections/voting-core/application/session"
	clitransport "ballotbox/contexts/elections/voting-core/transport/cli"
)

// Console is the numbered-menu driver. Every operation error is reported at
// the prompt and the loop continues; only input failures end it.
type Console struct {
	Registration   commands.RegistrationUseCase
	Authentication commands.AuthenticationUseCase
	Candidates     commands.CandidateUseCase
	Votes          commands.VoteUseCase
	Tally          queries.TallyUseCase
	AuditLog       queries.AuditLogUseCase
	Session        *session.Session
	Logger         *slog.Logger
}

func (c Console) Run(ctx context.Context, t *Terminal) error {
	for {
		if err := ctx.Err(); err != nil {
			c.exit(ctx, t)
			return err
		}
		t.Printf("\n%s\n", clitransport.MainMenu)
		line, err := t.Prompt(ctx, "Choice: ")
		if err != nil {
			c.exit(ctx, t)
			return ignoreClosed(err)
		}
		choice, err := strconv.Atoi(line)
		if err != nil {
			t.Println(clitransport.Failure("Invalid input!"))
			continue
		}

		switch choice {
		case 1:
			err = c.register(ctx, t)
		case 2:
			err = c.login(ctx, t)
		case 3:
			err = c.vote(ctx, t)
		case 4:
			err = c.results(ctx, t)
		case 5:
			err = c.admin(ctx, t)
		case 6:
			c.exit(ctx, t)
			t.Println("Exiting...")
			return nil
		default:
			t.Println(clitransport.Failure("Invalid choice!"))
		}
		if err != nil {
			c.exit(ctx, t)
			return ignoreClosed(err)
		}
	}
}

func (c Console) register(ctx context.Context, t *Terminal) error {
	username, err := t.Prompt(ctx, "Enter username (email): ")
	if err != nil {
		return err
	}
	password, err := t.PromptSecret(ctx, "Enter password (8+ chars, 1 digit, 1 upper, 1 special): ")
	if err != nil {
		return err
	}
	fullName, err := t.Prompt(ctx, "Enter full name: ")
	if err != nil {
		return err
	}

	registered, err := c.Registration.Register(ctx, commands.RegisterCommand{
		Username:    username,
		Password:    password,
		DisplayName: fullName,
	})
	if err != nil {
		c.report(t, err)
		return nil
	}
	t.Printf("Verification token sent to %s: %s\n", registered.Username, registered.VerificationToken)
	token, err := t.Prompt(ctx, "Enter token: ")
	if err != nil {
		return err
	}
	confirmed, err := c.Registration.ConfirmVerification(ctx, commands.ConfirmVerificationCommand{
		Username: registered.Username,
		Token:    token,
	})
	c.warnStorage(t, confirmed.StorageErr)
	if err != nil {
		c.report(t, err)
		return nil
	}
	t.Println(clitransport.Success("Registration successful!"))
	return nil
}

func (c Console) login(ctx context.Context, t *Terminal) error {
	username, err := t.Prompt(ctx, "Enter username: ")
	if err != nil {
		return err
	}
	password, err := t.PromptSecret(ctx, "Enter password: ")
	if err != nil {
		return err
	}
	result, err := c.Authentication.Authenticate(ctx, commands.AuthenticateCommand{
		Username: username,
		Password: password,
	})
	c.warnStorage(t, result.StorageErr)
	if err != nil {
		c.report(t, err)
		return nil
	}
	t.Println(clitransport.Success("Welcome, " + result.Identity.DisplayName + "!"))
	return nil
}

func (c Console) vote(ctx context.Context, t *Terminal) error {
	voter := c.Session.Current()
	if err := c.Votes.CheckEligibility(ctx, voter); err != nil {
		c.report(t, err)
		return nil
	}

	ballot, err := c.Tally.Ballot(ctx)
	if err != nil {
		c.report(t, err)
		return nil
	}
	t.Println(clitransport.Heading("Candidates:"))
	for _, candidate := range ballot {
		t.Println(clitransport.BallotLine(candidate))
	}
	line, err := t.Prompt(ctx, "Enter candidate ID: ")
	if err != nil {
		return err
	}
	candidateID, err := strconv.Atoi(line)
	if err != nil {
		t.Println(clitransport.Failure("Invalid input!"))
		return nil
	}

	var inputErr error
	result, err := c.Votes.CastVote(ctx, commands.CastVoteCommand{
		Voter:       voter,
		CandidateID: candidateID,
		Respond: func(ctx context.Context, challenge string) (string, error) {
			echo, err := t.Prompt(ctx, "Enter CSRF token (" + challenge + "): ")
			inputErr = err
			return echo, err
		},
	})
	if inputErr != nil {
		return inputErr
	}
	c.warnStorage(t, result.StorageErr)
	if err != nil {
		c.report(t, err)
		return nil
	}
	t.Println(clitransport.Success("Vote recorded successfully!"))
	t.Printf("Receipt: %s\n", result.Receipt.ReceiptID)
	return nil
}

func (c Console) results(ctx context.Context, t *Terminal) error {
	tally, err := c.Tally.Tally(ctx)
	if err != nil {
		c.report(t, err)
		return nil
	}
	t.Println(clitransport.Heading("Voting Results:"))
	for _, candidate := range tally {
		t.Println(clitransport.ResultLine(candidate))
	}
	return nil
}

func (c Console) admin(ctx context.Context, t *Terminal) error {
	if _, err := c.Session.RequireAdmin(); err != nil {
		c.report(t, err)
		return nil
	}
	for {
		t.Printf("\n%s\n", clitransport.AdminMenu)
		line, err := t.Prompt(ctx, "Choice: ")
		if err != nil {
			return err
		}
		choice, err := strconv.Atoi(line)
		if err != nil {
			t.Println(clitransport.Failure("Invalid input!"))
			continue
		}
		switch choice {
		case 1:
			if err := c.addCandidate(ctx, t); err != nil {
				return err
			}
		case 2:
			c.auditLog(ctx, t)
		case 3:
			return nil
		default:
			t.Println(clitransport.Failure("Invalid choice!"))
		}
	}
}

func (c Console) addCandidate(ctx context.Context, t *Terminal) error {
	name, err := t.Prompt(ctx, "Enter candidate name: ")
	if err != nil {
		return err
	}
	description, err := t.Prompt(ctx, "Enter description: ")
	if err != nil {
		return err
	}
	result, err := c.Candidates.AddCandidate(ctx, commands.AddCandidateCommand{
		Actor:       c.Session.Current(),
		Name:        name,
		Description: description,
	})
	c.warnStorage(t, result.StorageErr)
	if err != nil {
		c.report(t, err)
		return nil
	}
	t.Println(clitransport.Success("Candidate added!"))
	return nil
}

func (c Console) auditLog(ctx context.Context, t *Terminal) {
	entries, err := c.AuditLog.List(ctx, c.Session.Current())
	if err != nil {
		c.report(t, err)
		return
	}
	t.Println(clitransport.Heading("Audit Logs:"))
	for _, entry := range entries {
		t.Println(clitransport.AuditLine(entry))
	}
}

// exit signs out even when ctx is already cancelled, so the Logout entry is
// still written.
func (c Console) exit(ctx context.Context, t *Terminal) {
	result, err := c.Authentication.Logout(context.WithoutCancel(ctx))
	if err != nil {
		c.report(t, err)
		return
	}
	c.warnStorage(t, result.StorageErr)
}

func (c Console) report(t *Terminal, err error) {
	application.ResolveLogger(c.Logger).Debug("operation error reported at prompt",
		"event", "voting_core_console_error_reported",
		"module", "elections/voting-core",
		"layer", "adapter",
		"error", err.Error(),
	)
	t.Println(clitransport.Failure(clitransport.ErrorMessage(err)))
}

func (c Console) warnStorage(t *Terminal, err error) {
	if err != nil {
		t.Println(clitransport.Warning(clitransport.ErrorMessage(err)))
	}
}

func ignoreClosed(err error) error {
	if errors.Is(err, errInputClosed) {
		return nil
	}
	return err
}
