package cliadapter_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	votingcore "ballotbox/contexts/elections/voting-core"
	cliadapter "ballotbox/contexts/elections/voting-core/adapters/cli"
	"ballotbox/contexts/elections/voting-core/adapters/confidentiality"
	"ballotbox/contexts/elections/voting-core/adapters/credentials"
	"ballotbox/contexts/elections/voting-core/application/commands"
	"ballotbox/contexts/elections/voting-core/domain/entities"
)

type scriptedTokens struct{}

func (scriptedTokens) VerificationToken() string    { return "TOKEN1" }
func (scriptedTokens) AntiForgeryChallenge() string { return "CSRF1" }

func newConsoleModule(t *testing.T) votingcore.Module {
	t.Helper()
	transform, err := confidentiality.NewXOR(confidentiality.DefaultKey)
	if err != nil {
		t.Fatalf("new transform: %v", err)
	}
	module := votingcore.NewModule(votingcore.Dependencies{
		Hasher:    credentials.Bcrypt{Cost: credentials.MinCost},
		Transform: transform,
		Tokens:    scriptedTokens{},
		Seed:      commands.DefaultSeed(),
	})
	if _, err := module.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	return module
}

func runScript(t *testing.T, lines ...string) string {
	t.Helper()
	module := newConsoleModule(t)

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	if err := module.Run(context.Background(), cliadapter.NewTerminal(in, &out)); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String()
}

func assertContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(output, fragment) {
			t.Fatalf("expected output to contain %q, got:\n%s", fragment, output)
		}
	}
}

func TestConsoleVoterSession(t *testing.T) {
	output := runScript(t,
		"3",
		"1", "alice", "Passw0rd!", "Alice Smith", "TOKEN1",
		"2", "alice", "Passw0rd!",
		"3", "2", "CSRF1",
		"3",
		"4",
		"5",
		"x",
		"9",
		"6",
	)
	assertContains(t, output,
		"Error: User not logged in!",
		"Verification token sent to alice: TOKEN1",
		"Registration successful!",
		"Welcome, Alice Smith!",
		"1: John Doe - Candidate 1",
		"Enter CSRF token (CSRF1): ",
		"Vote recorded successfully!",
		"Receipt: ",
		"You have already voted!",
		"Jane Smith - Candidate 2: 1 votes",
		"Error: Access denied!",
		"Invalid input!",
		"Invalid choice!",
		"Exiting...",
	)
	if strings.Index(output, "Jane Smith - Candidate 2: 1 votes") > strings.Index(output, "John Doe - Candidate 1: 0 votes") {
		t.Fatalf("results should list the leader first:\n%s", output)
	}
}

func TestConsoleRejectedAttempts(t *testing.T) {
	output := runScript(t,
		"1", "bob", "short1", "Bob",
		"1", "bob", "Passw0rd!", "Bob", "TOKEN9",
		"2", "bob", "Passw0rd!",
		"2", "admin@example.com", "wrong",
		"2", "admin@example.com", "Admin@123",
	)
	assertContains(t, output,
		"Password does not meet complexity requirements!",
		"Verification failed!",
		"Invalid credentials or email not verified!",
		"Rate limit exceeded. Try again later.",
	)
}

func TestConsoleAdminSession(t *testing.T) {
	output := runScript(t,
		"2", "admin@example.com", "Admin@123",
		"5",
		"1", "Grace Lee", "Candidate 3",
		"2",
		"3",
		"3", "3", "CSRF0",
		"4",
	)
	assertContains(t, output,
		"Welcome, Admin User!",
		"Admin Menu:",
		"Candidate added!",
		"Audit Logs:",
		"User: admin@example.com, Action: Login,",
		"Details: Added candidate 3",
		"3: Grace Lee - Candidate 3",
		"CSRF verification failed!",
		"Grace Lee - Candidate 3: 0 votes",
	)
}

func TestConsoleStopsWhenContextIsCancelledMidPrompt(t *testing.T) {
	module := newConsoleModule(t)
	reader, writer := io.Pipe()
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- module.Run(ctx, cliadapter.NewTerminal(reader, io.Discard))
	}()

	if _, err := io.WriteString(writer, "2\nadmin@example.com\nAdmin@123\n"); err != nil {
		t.Fatalf("write script: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for module.Session.Current() == nil {
		if time.Now().After(deadline) {
			t.Fatalf("admin never signed in")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("console kept waiting for input after cancellation")
	}

	if module.Session.Current() != nil {
		t.Fatalf("cancellation should sign the admin out")
	}
	entries, err := module.Store.ListAuditEntries(context.Background())
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if last := entries[len(entries)-1]; last.Action != entities.AuditActionLogout {
		t.Fatalf("expected Logout as last audit entry, got %+v", last)
	}
}
