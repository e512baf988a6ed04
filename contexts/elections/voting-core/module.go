package votingcore

import (
	"context"
	"log/slog"
	"time"

	cliadapter "ballotbox/contexts/elections/voting-core/adapters/cli"
	"ballotbox/contexts/elections/voting-core/adapters/confidentiality"
	"ballotbox/contexts/elections/voting-core/adapters/credentials"
	"ballotbox/contexts/elections/voting-core/adapters/memory"
	"ballotbox/contexts/elections/voting-core/adapters/tokens"
	"ballotbox/contexts/elections/voting-core/application/commands"
	"ballotbox/contexts/elections/voting-core/application/queries"
	"ballotbox/contexts/elections/voting-core/application/ratelimit"
	"ballotbox/contexts/elections/voting-core/application/session"
	"ballotbox/contexts/elections/voting-core/ports"
)

// Module is the wired voting core: the console driver, startup hydration and
// the shared session and store behind them.
type Module struct {
	Console   cliadapter.Console
	Hydration commands.HydrationUseCase
	Session   *session.Session
	Store     *memory.Store
}

// Dependencies are the adapters NewModule wires in. Nil Store, Clock and IDGen
// default to a fresh memory store.
type Dependencies struct {
	Store           *memory.Store
	State           ports.StateStore
	Hasher          ports.CredentialHasher
	Transform       ports.ConfidentialityTransform
	Tokens          ports.TokenSource
	Clock           ports.Clock
	IDGen           ports.IDGenerator
	RateLimitWindow time.Duration
	Seed            commands.Seed
	Logger          *slog.Logger
}

// NewModule wires use cases around one authoritative in-memory store. State
// may be nil, in which case nothing is persisted.
func NewModule(deps Dependencies) Module {
	store := deps.Store
	if store == nil {
		store = memory.NewStore()
	}
	clock := deps.Clock
	if clock == nil {
		clock = store
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = store
	}
	current := session.New()

	audit := commands.AuditTrail{
		Audit:  store,
		State:  deps.State,
		Clock:  clock,
		Logger: deps.Logger,
	}
	ballot := commands.CandidateUseCase{
		Candidates: store,
		State:      deps.State,
		Audit:      audit,
		Logger:     deps.Logger,
	}

	return Module{
		Console: cliadapter.Console{
			Registration: commands.RegistrationUseCase{
				Identities: store,
				Hasher:     deps.Hasher,
				Tokens:     deps.Tokens,
				State:      deps.State,
				Audit:      audit,
				Logger:     deps.Logger,
			},
			Authentication: commands.AuthenticationUseCase{
				Identities: store,
				Hasher:     deps.Hasher,
				Limiter: ratelimit.Limiter{
					Attempts: store,
					Clock:    clock,
					Window:   deps.RateLimitWindow,
					Logger:   deps.Logger,
				},
				Session: current,
				Audit:   audit,
				Logger:  deps.Logger,
			},
			Candidates: ballot,
			Votes: commands.VoteUseCase{
				Identities: store,
				Votes:      store,
				Ballot:     ballot,
				Transform:  deps.Transform,
				Tokens:     deps.Tokens,
				State:      deps.State,
				Audit:      audit,
				Clock:      clock,
				IDGen:      idGen,
				Logger:     deps.Logger,
			},
			Tally: queries.TallyUseCase{
				Candidates: store,
			},
			AuditLog: queries.AuditLogUseCase{
				Audit:  store,
				Logger: deps.Logger,
			},
			Session: current,
			Logger:  deps.Logger,
		},
		Hydration: commands.HydrationUseCase{
			State:      deps.State,
			Identities: store,
			Ballot:     ballot,
			Votes:      store,
			Audit:      store,
			Transform:  deps.Transform,
			Hasher:     deps.Hasher,
			Seed:       deps.Seed,
			Logger:     deps.Logger,
		},
		Session: current,
		Store:   store,
	}
}

// NewInMemoryModule builds a module with no durable storage, the default
// XOR transform, random tokens and bcrypt at its minimum cost.
func NewInMemoryModule(seed commands.Seed, logger *slog.Logger) (Module, error) {
	transform, err := confidentiality.NewXOR(confidentiality.DefaultKey)
	if err != nil {
		return Module{}, err
	}
	module := NewModule(Dependencies{
		Hasher:    credentials.Bcrypt{Cost: credentials.MinCost},
		Transform: transform,
		Tokens:    tokens.Random{},
		Seed:      seed,
		Logger:    logger,
	})
	if _, err := module.Hydrate(context.Background()); err != nil {
		return Module{}, err
	}
	return module, nil
}

func (m Module) Hydrate(ctx context.Context) (commands.HydrateResult, error) {
	return m.Hydration.Hydrate(ctx)
}

func (m Module) Run(ctx context.Context, terminal *cliadapter.Terminal) error {
	return m.Console.Run(ctx, terminal)
}
