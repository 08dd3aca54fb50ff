// Package identitycore is the identity-and-grant persistence core of an
// OpenID-Connect-style provider. It resolves end-user identity from
// credentials, stores account profiles, and manages the lifecycle of
// opaque authorization artifacts against an eventually-consistent
// document store. The protocol layer plugs in through the account lookup
// callback and one grant adapter per artifact kind.
package identitycore

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/languelink/identity-core/config"
	"github.com/languelink/identity-core/internal/application"
	"github.com/languelink/identity-core/internal/domain/repository"
	"github.com/languelink/identity-core/internal/infrastructure/memstore"
	"github.com/languelink/identity-core/internal/infrastructure/pgstore"
	"github.com/languelink/identity-core/internal/infrastructure/redisstore"
	"github.com/languelink/identity-core/pkg/helpers"
)

// Core wires the store backend, the identity resolver and the grant
// adapter factory. Construct one per process with New and pass it down
// by dependency injection; Close releases the owned connections.
type Core struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Store    repository.Store
	Accounts *application.AccountService

	rdb    *redis.Client
	pool   *pgxpool.Pool
	events *helpers.RabbitPublisher
	es     *elasticsearch.Client
}

// New builds a Core from configuration: it opens the configured store
// backend and the optional event/search clients, then assembles the
// account service on top.
func New(ctx context.Context, cfg *config.Config) (*Core, error) {
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)

	c := &Core{Config: cfg, Logger: logger}
	switch cfg.StoreBackend {
	case "redis":
		c.rdb = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		c.Store = redisstore.New(c.rdb)
	case "postgres":
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pgstore.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		c.pool = pool
		c.Store = pgstore.New(pool)
	case "memory":
		c.Store = memstore.New()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	if cfg.RabbitMQURL != "" {
		events, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventsQ)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		c.events = events
	}

	if cfg.ElasticsearchAddrs != "" {
		es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init elasticsearch: %w", err)
		}
		c.es = es
	}

	c.Accounts = application.NewAccountService(c.Store, logger, c.es, cfg.ESAccountsIndex, c.events)
	return c, nil
}

// Adapter returns the persistence adapter for one protocol artifact
// kind, e.g. "AccessToken", "AuthorizationCode", "Session" or "Client".
func (c *Core) Adapter(name string) *application.GrantAdapter {
	return application.NewGrantAdapter(name, c.Store, c.Logger, c.events)
}

// Connect probes the store backend. The protocol layer invokes it once
// at provider startup.
func (c *Core) Connect(ctx context.Context) error {
	return c.Store.Ping(ctx)
}

// Close releases the connections the core owns.
func (c *Core) Close() {
	if c.events != nil {
		c.events.Close()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	if c.pool != nil {
		c.pool.Close()
	}
}
