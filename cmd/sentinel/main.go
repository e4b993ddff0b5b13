package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/layer-3/sentinel/adapters/events"
	"github.com/layer-3/sentinel/adapters/metrics"
	"github.com/layer-3/sentinel/adapters/password"
	"github.com/layer-3/sentinel/adapters/store"
	"github.com/layer-3/sentinel/adapters/store/postgres"
	"github.com/layer-3/sentinel/adapters/tokenizer"
	"github.com/layer-3/sentinel/config"
	"github.com/layer-3/sentinel/ports"
	"github.com/layer-3/sentinel/service"
	transport "github.com/layer-3/sentinel/transport/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type repositories struct {
	users     ports.UserRepository
	refresh   ports.RefreshTokenRepository
	blacklist ports.BlacklistRepository
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	logger.Info("Config loaded", zap.Stringer("config", cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Failed to parse Redis URL", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	repos, db, err := openRepositories(ctx, cfg, redisClient)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	var eventPub ports.EventPublisher = events.NopPublisher{}
	if redisClient != nil {
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			events.NewZapLoggerAdapter(logger.Named("events")),
		)
		if err != nil {
			logger.Fatal("Failed to create Redis publisher", zap.Error(err))
		}
		defer publisher.Close()
		eventPub = events.NewWatermillPublisher(publisher)
	}

	secret, err := cfg.Secret()
	if err != nil {
		logger.Fatal("Invalid signing key", zap.Error(err))
	}
	tk := tokenizer.NewJWTTokenizer(secret, cfg.JWTIssuer)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(reg)

	revocations := service.NewRevocations(tk, repos.blacklist)
	authService := service.NewAuthService(
		repos.users,
		password.NewDefault(),
		tk,
		service.NewRefreshTokens(repos.refresh, cfg.RefreshTokenTTL),
		revocations,
		eventPub,
		service.WithAccessTTL(cfg.AccessTokenTTL),
		service.WithMetrics(recorder),
		service.WithLogger(logger.Named("auth")),
	)

	go revocations.RunCleanup(ctx, cfg.CleanupInterval, logger.Named("cleanup"))

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: transport.SetupRouter(transport.RouterDeps{
			AuthService: authService,
			Metrics:     recorder,
			Gatherer:    reg,
			Logger:      logger.Named("http"),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// openRepositories selects the storage backend. The blacklist lives in Redis
// whenever a client is configured, regardless of backend.
func openRepositories(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (*repositories, *sql.DB, error) {
	repos := &repositories{}
	var db *sql.DB

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		var err error
		db, err = postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		repos.users = postgres.NewUserRepository(db)
		repos.refresh = postgres.NewRefreshTokenRepository(db)
		repos.blacklist = postgres.NewBlacklistRepository(db)
	default:
		repos.users = store.NewMemoryUserStore()
		repos.refresh = store.NewMemoryRefreshTokenStore()
		repos.blacklist = store.NewMemoryBlacklistStore()
	}

	if redisClient != nil {
		repos.blacklist = store.NewRedisBlacklistStore(redisClient)
	}
	return repos, db, nil
}
