package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/baf/identity-service/internal/api"
	"github.com/baf/identity-service/internal/api/handler"
	"github.com/baf/identity-service/internal/core/service"
	"github.com/baf/identity-service/internal/infrastructure/config"
	"github.com/baf/identity-service/internal/infrastructure/db/mongo"
	"github.com/baf/identity-service/internal/infrastructure/db/redis"
	"github.com/baf/identity-service/internal/infrastructure/queue"
	"github.com/baf/identity-service/internal/infrastructure/upstream"
	"github.com/baf/identity-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load(zerolog.New(os.Stderr).With().Timestamp().Logger())
	log, err := logger.New(os.Stdout, logger.Settings{
		Level:   cfg.LogLevel,
		Console: !cfg.IsProduction(),
		Service: "identity-service",
	})
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Repositories ---
	users := mongo.NewUserRepository(db)
	tenants := mongo.NewTenantRepository(db)
	memberships := mongo.NewMembershipRepository(db)
	apiKeys := mongo.NewAPIKeyRepository(db)
	authEvents := mongo.NewAuthEventRepository(db)
	if err := mongo.EnsureIndexes(ctx, users, memberships, apiKeys, authEvents); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}
	tx := mongo.NewTransactor(mongoClient, cfg.Mongo.Transactions)

	// --- Audit trail ---
	auditLog := logger.Component(log, "audit")
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, service.NewAuditService(authEvents, auditLog), auditLog)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)

	// --- Services ---
	details := service.NewAuthenticationDetailsService(users, tenants, memberships)
	provider := service.NewOAuth2AuthenticationProvider(details)
	sessions := redis.NewSessionStore(rdb)
	verifier := upstream.NewJWTVerifier(cfg.OAuth2.ClientSecrets, cfg.OAuth2.Issuer)
	authLog := logger.Component(log, "auth")
	auth := service.NewAuthService(verifier, redis.NewReplayGuard(rdb), provider, sessions, dispatcher, cfg.Session.TTL, authLog)

	router := api.NewRouter(api.Dependencies{
		Auth:         auth,
		Registration: service.NewRegistrationService(users, tenants, memberships, tx, authLog),
		TenantSwitch: service.NewTenantSwitchService(memberships, provider, sessions, dispatcher, authLog),
		APIKeys:      service.NewAPIKeyService(apiKeys, tenants, dispatcher, logger.Component(log, "api_keys")),
		Members:      service.NewMemberService(users, memberships, tx, dispatcher, logger.Component(log, "members")),
		Readiness: map[string]handler.DependencyCheck{
			"mongodb": handler.MongoCheck(db),
			"redis":   handler.RedisCheck(rdb),
		},
		SecureCookies: cfg.Session.CookieSecure,
		Log:           log,
	})

	go func() {
		if err := router.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Int("registrations", len(cfg.OAuth2.ClientSecrets)).Msg("identity service started")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("identity service stopped cleanly")
}
