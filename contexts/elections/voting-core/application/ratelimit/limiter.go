package ratelimit

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "ballotbox/contexts/elections/voting-core/application"
	"ballotbox/contexts/elections/voting-core/ports"
)

const DefaultWindow = time.Minute

// Limiter throttles login attempts per username with a sliding window
// anchored on the last accepted attempt.
type Limiter struct {
	Attempts ports.AttemptStore
	Clock    ports.Clock
	Window   time.Duration
	Logger   *slog.Logger
}

func (l Limiter) Allow(ctx context.Context, username string) (bool, error) {
	logger := application.ResolveLogger(l.Logger)
	username = strings.TrimSpace(username)

	allowed, err := l.Attempts.AcceptAttempt(ctx, username, l.now(), l.window())
	if err != nil {
		logger.Error("login attempt bookkeeping failed",
			"event", "voting_core_rate_limit_record_failed",
			"module", "elections/voting-core",
			"layer", "application",
			"username", username,
			"error", err.Error(),
		)
		return false, err
	}
	if !allowed {
		logger.Warn("login attempt throttled",
			"event", "voting_core_rate_limit_rejected",
			"module", "elections/voting-core",
			"layer", "application",
			"username", username,
			"window", l.window().String(),
		)
	}
	return allowed, nil
}

func (l Limiter) window() time.Duration {
	if l.Window <= 0 {
		return DefaultWindow
	}
	return l.Window
}

func (l Limiter) now() time.Time {
	if l.Clock == nil {
		return time.Now().UTC()
	}
	return l.Clock.Now().UTC()
}
