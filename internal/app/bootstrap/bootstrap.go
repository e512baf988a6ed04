package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	votingcore "ballotbox/contexts/elections/voting-core"
	cliadapter "ballotbox/contexts/elections/voting-core/adapters/cli"
	"ballotbox/contexts/elections/voting-core/adapters/confidentiality"
	"ballotbox/contexts/elections/voting-core/adapters/credentials"
	"ballotbox/contexts/elections/voting-core/adapters/flatfile"
	postgresadapter "ballotbox/contexts/elections/voting-core/adapters/postgres"
	"ballotbox/contexts/elections/voting-core/adapters/tokens"
	"ballotbox/contexts/elections/voting-core/application/commands"
	"ballotbox/contexts/elections/voting-core/ports"
	clitransport "ballotbox/contexts/elections/voting-core/transport/cli"
	"ballotbox/internal/platform/config"
	"ballotbox/internal/platform/db"
	"ballotbox/internal/platform/logging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type ConsoleApp struct {
	module     votingcore.Module
	hydrated   commands.HydrateResult
	postgres   *db.Postgres
	logCloser  io.Closer
	in         io.Reader
	out        io.Writer
	hideSecret bool
	logger     *slog.Logger
}

// BuildConsole loads configuration from args and the environment, restores
// persisted state and returns an app ready to drive the menu over in/out.
func BuildConsole(ctx context.Context, args []string, in io.Reader, out io.Writer) (*ConsoleApp, error) {
	cfg, err := config.Load(args)
	if err != nil {
		return nil, err
	}

	baseLogger, logCloser, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := baseLogger.With("service", cfg.ServiceName, "process", "console")
	app := &ConsoleApp{
		logCloser:  logCloser,
		in:         in,
		out:        out,
		hideSecret: cfg.HidePasswordInput,
		logger:     logger,
	}

	state, err := app.buildState(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	transform, err := buildTransform(cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	seed := commands.Seed{}
	if cfg.SeedDefaults {
		seed = commands.DefaultSeed()
	}
	app.module = votingcore.NewModule(votingcore.Dependencies{
		State:           state,
		Hasher:          credentials.Bcrypt{Cost: cfg.BcryptCost},
		Transform:       transform,
		Tokens:          tokens.Random{},
		RateLimitWindow: cfg.RateLimitWindow,
		Seed:            seed,
		Logger:          logger,
	})

	hydrated, err := app.module.Hydrate(ctx)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.hydrated = hydrated

	logger.Info("console app built",
		"event", "bootstrap_console_built",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"storage", cfg.Storage,
		"confidentiality", cfg.Confidentiality,
		"identities", hydrated.Identities,
		"candidates", hydrated.Candidates,
		"votes", hydrated.Votes,
	)
	return app, nil
}

func (a *ConsoleApp) buildState(ctx context.Context, cfg config.Config) (ports.StateStore, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return nil, nil
	case config.StoragePostgres:
		pg, err := db.Connect(ctx, cfg.PostgresDSN, a.logger)
		if err != nil {
			return nil, err
		}
		a.postgres = pg
		repo := postgresadapter.NewRepository(pg.DB, a.logger)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return flatfile.NewStore(cfg.DataDir, a.logger)
	}
}

func buildTransform(cfg config.Config) (ports.ConfidentialityTransform, error) {
	switch cfg.Confidentiality {
	case config.ConfidentialitySealed:
		return confidentiality.NewSealed(cfg.ConfidentialityKey)
	default:
		return confidentiality.NewXOR(cfg.ConfidentialityKey)
	}
}

func (a *ConsoleApp) Run(ctx context.Context) error {
	terminal := cliadapter.NewTerminal(a.in, a.out)
	if file, ok := a.in.(*os.File); ok && a.hideSecret {
		terminal.HideSecretsOn(int(file.Fd()))
	}
	if a.hydrated.StorageErr != nil {
		terminal.Println(clitransport.Warning("Warning: stored state could not be read. Starting with what was loaded."))
	}
	a.logger.Info("console app started",
		"event", "bootstrap_console_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return a.module.Run(ctx, terminal)
}

func (a *ConsoleApp) Close() error {
	var errs []error
	if a.postgres != nil {
		errs = append(errs, a.postgres.Close())
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}
