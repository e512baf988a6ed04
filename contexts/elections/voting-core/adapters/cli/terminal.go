package cliadapter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

var errInputClosed = errors.New("input closed")

type readResult struct {
	text string
	err  error
}

// Terminal is the line-oriented prompt/response channel of the console.
// Reads run one at a time in the background so a prompt can be abandoned
// when the context is cancelled.
type Terminal struct {
	scanner  *bufio.Scanner
	out      io.Writer
	secretFD int
	hidden   bool
	pending  chan readResult
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// HideSecretsOn reads passwords with echo disabled when fd is a terminal.
// Piped input keeps plain line reads.
func (t *Terminal) HideSecretsOn(fd int) {
	if term.IsTerminal(fd) {
		t.secretFD = fd
		t.hidden = true
	}
}

func (t *Terminal) Printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}

func (t *Terminal) Println(text string) {
	fmt.Fprintln(t.out, text)
}

// Prompt prints label and waits for one trimmed line, EOF or cancellation.
func (t *Terminal) Prompt(ctx context.Context, label string) (string, error) {
	fmt.Fprint(t.out, label)
	return t.await(ctx, func() readResult {
		if !t.scanner.Scan() {
			if err := t.scanner.Err(); err != nil {
				return readResult{err: err}
			}
			return readResult{err: errInputClosed}
		}
		return readResult{text: t.scanner.Text()}
	})
}

// PromptSecret is Prompt with echo disabled on a terminal. Both paths trim
// the answer the same way.
func (t *Terminal) PromptSecret(ctx context.Context, label string) (string, error) {
	if !t.hidden {
		return t.Prompt(ctx, label)
	}
	fmt.Fprint(t.out, label)
	secret, err := t.await(ctx, func() readResult {
		raw, err := term.ReadPassword(t.secretFD)
		if err != nil {
			return readResult{err: fmt.Errorf("read hidden input: %w", err)}
		}
		return readResult{text: string(raw)}
	})
	fmt.Fprintln(t.out)
	return secret, err
}

// await starts read unless an earlier abandoned read is still outstanding,
// in which case its result answers this prompt.
func (t *Terminal) await(ctx context.Context, read func() readResult) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if t.pending == nil {
		pending := make(chan readResult, 1)
		go func() { pending <- read() }()
		t.pending = pending
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case result := <-t.pending:
		t.pending = nil
		if result.err != nil {
			return "", result.err
		}
		return strings.TrimSpace(result.text), nil
	}
}
