// Package app assembles the store, text generator, events and readings
// service shared by the API, the worker and kiractl.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"kira/internal/adapter/postgrest"
	"kira/internal/adapter/repo"
	"kira/internal/adapter/sqlite"
	"kira/internal/domain"
	"kira/internal/entitlement"
	"kira/internal/events"
	"kira/internal/generation"
	"kira/internal/infra"
	"kira/internal/infra/credentials"
	"kira/internal/migrations"
	"kira/internal/password"
	"kira/internal/providers/textgen"
	"kira/internal/readings"
)

// Container holds the wired dependencies of one process.
type Container struct {
	Config *infra.Config
	Logger zerolog.Logger

	Pool   *pgxpool.Pool
	SQLite *sql.DB

	Accounts  domain.AccountRepository
	Artifacts domain.ArtifactRepository
	// Credentials is nil unless the postgres driver is in use.
	Credentials *credentials.Store

	Events    *events.Emitter
	Generator textgen.Generator
	Service   *readings.Service

	closers []func()
}

// NewContainer opens the configured store and builds the service. With
// withGenerator false no provider client is built, which is enough for
// operator commands that never generate text.
func NewContainer(ctx context.Context, cfg *infra.Config, logger zerolog.Logger, withGenerator bool) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}
	if err := c.openStore(ctx); err != nil {
		c.Close()
		return nil, err
	}

	c.Events = events.NewEmitter(c.newPublisher(), logger)
	c.closers = append(c.closers, func() { _ = c.Events.Close() })

	if withGenerator {
		gen, err := c.newGenerator(ctx)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Generator = gen
	}

	deps := readings.Deps{
		Accounts:   c.Accounts,
		Artifacts:  c.Artifacts,
		Hasher:     password.NewHasher(cfg.PasswordSalt),
		Events:     c.Events,
		Logger:     logger,
		Policy:     entitlement.Policy{TrialDuration: cfg.TrialDuration},
		DailyPause: cfg.DailyAccountPause,
	}
	if c.Generator != nil {
		deps.Generator = generation.NewGateway(c.Generator, logger)
	}
	c.Service = readings.NewService(deps)
	return c, nil
}

func (c *Container) openStore(ctx context.Context) error {
	cfg := c.Config
	switch cfg.StoreDriver {
	case infra.StorePostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return err
		}
		c.Pool = pool
		c.closers = append(c.closers, pool.Close)
		runner := infra.NewSQLRunner(pool, c.Logger)
		c.Accounts = repo.NewAccountRepository(runner)
		c.Artifacts = repo.NewArtifactRepository(runner)
		c.Credentials = credentials.NewStore(runner)

	case infra.StorePostgREST:
		client, err := postgrest.NewClient(postgrest.Options{
			BaseURL:    cfg.PostgRESTURL,
			APIKey:     cfg.PostgRESTKey,
			HTTPClient: &http.Client{Timeout: cfg.StoreTimeout},
		})
		if err != nil {
			return err
		}
		c.Accounts = postgrest.NewAccountRepository(client)
		c.Artifacts = postgrest.NewArtifactRepository(client)

	case infra.StoreSQLite:
		db, err := infra.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		c.SQLite = db
		c.closers = append(c.closers, func() { _ = db.Close() })
		if err := migrations.RunSQLite(ctx, db); err != nil {
			return fmt.Errorf("sqlite migrations: %w", err)
		}
		c.Accounts = sqlite.NewAccountRepository(db)
		c.Artifacts = sqlite.NewArtifactRepository(db)

	default:
		return fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
	c.Logger.Info().Str("driver", cfg.StoreDriver).Msg("store ready")
	return nil
}

func (c *Container) newPublisher() events.Publisher {
	if c.Config.AMQPURL == "" {
		return nil
	}
	pub, err := events.NewRabbitMQPublisher(c.Config.AMQPURL, c.Config.AMQPExchange, c.Logger)
	if err != nil {
		c.Logger.Warn().Err(err).Msg("rabbitmq unavailable, events will only be logged")
		return nil
	}
	return pub
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
