// @title                      Cascade Forum Portal API
// @version                    1.0
// @description                Session-backed front end for event registration and payments.
// @BasePath                   /
// @securityDefinitions.apikey SessionCookie
// @in                         cookie
// @name                       cf_session
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/cascadeforum/portal/internal/api"
	"github.com/cascadeforum/portal/internal/api/handler"
	"github.com/cascadeforum/portal/internal/api/middleware"
	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
	"github.com/cascadeforum/portal/internal/core/service"
	"github.com/cascadeforum/portal/internal/infrastructure/backend"
	"github.com/cascadeforum/portal/internal/infrastructure/db/memory"
	"github.com/cascadeforum/portal/internal/infrastructure/db/mongo"
	"github.com/cascadeforum/portal/internal/infrastructure/db/redis"
	"github.com/cascadeforum/portal/internal/infrastructure/queue"
	"github.com/cascadeforum/portal/internal/pkg/config"
	"github.com/cascadeforum/portal/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:       cfg.LogLevel,
		Pretty:      !cfg.IsProduction(),
		Service:     "portal",
		Environment: cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.Check{}

	// --- Session and checkout flow store ---
	var (
		sessionStore ports.SessionStore
		flowStore    ports.CheckoutRepository
	)
	switch cfg.Session.Store {
	case "redis":
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			ClientName: "portal",
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis unavailable")
		}
		defer func() { _ = rdb.Close() }()

		sessionStore = redis.NewSessionStore(rdb)
		flowStore = redis.NewCheckoutStore(rdb, cfg.Checkout.FlowTTL)
		checks["redis"] = redisCheck(rdb)
	default:
		log.Warn().Msg("using in-memory session store; sessions are lost on restart")
		mem := memory.NewSessionStore()
		defer mem.Close()
		sessionStore = mem
		flows := memory.NewCheckoutStore(cfg.Checkout.FlowTTL)
		defer flows.Close()
		flowStore = flows
	}

	// --- Checkout journal ---
	// The journal outlives the signal: it stops only after the server has
	// finished its in-flight requests.
	journalCtx, stopJournal := context.WithCancel(context.Background())
	defer stopJournal()

	var (
		journal    service.Journal
		reader     handler.JournalReader
		dispatcher *queue.Dispatcher
	)
	if cfg.Journal.Enabled {
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "portal",
		})
		if err != nil {
			log.Fatal().Err(err).Msg("mongo unavailable")
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		repo := mongo.NewJournalRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("could not ensure journal indexes")
		}

		dispatcher = queue.NewDispatcher(cfg.Journal.Workers, repo, logger.Component("journal"))
		dispatcher.Start(journalCtx)
		journal, reader = dispatcher, repo
		checks["mongo"] = mongoCheck(client)
	}

	// --- Backend and services ---
	client := backend.New(backend.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
	}, logger.Component("backend"))

	sessions := middleware.NewSessions(sessionStore, middleware.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.Secure,
	}, cfg.Session.TTL, logger.Component("session"))

	checkout := service.NewCheckoutService(client, flowStore, journal, service.CheckoutConfig{
		Profile: domain.CheckoutProfile{
			Key:         cfg.Checkout.KeyID,
			Name:        cfg.Checkout.Merchant,
			Description: cfg.Checkout.Description,
			ThemeColor:  cfg.Checkout.ThemeColor,
		},
		ScriptURL: cfg.Checkout.ScriptURL,
	}, logger.Component("checkout"))

	e := api.NewRouter(api.Dependencies{
		Log:       logger.Component("http"),
		Sessions:  sessions,
		Guard:     service.NewGuard(logger.Component("guard")),
		Auth:      service.NewAuthService(client, logger.Component("auth")),
		Events:    service.NewEventService(client, client, logger.Component("events")),
		Admin:     service.NewAdminService(client, logger.Component("admin")),
		Developer: service.NewDeveloperService(client, logger.Component("developer")),
		Checkout:  checkout,
		Journal:   reader,
		Checks:    checks,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend.URL).Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	stopJournal()
	if dispatcher != nil {
		select {
		case <-dispatcher.Done():
		case <-shutdownCtx.Done():
			log.Warn().Msg("journal did not drain before shutdown deadline")
		}
	}
}

func redisCheck(rdb *goredis.Client) handler.Check {
	return func(ctx context.Context) error {
		return redis.Ping(ctx, rdb, 0)
	}
}

func mongoCheck(client *mongodriver.Client) handler.Check {
	return func(ctx context.Context) error {
		return mongo.Ping(ctx, client)
	}
}
