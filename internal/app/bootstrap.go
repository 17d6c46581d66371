package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quotes-sharer/internal/auth"
	"quotes-sharer/internal/config"
	"quotes-sharer/internal/db"
	"quotes-sharer/internal/maintenance"
	"quotes-sharer/internal/observability"
	"quotes-sharer/internal/provider"
	"quotes-sharer/internal/quote"
	"quotes-sharer/internal/token"
	"quotes-sharer/internal/user"
)

type Options struct {
	LoadDotEnv    bool
	RunMigrations bool
}

type Runtime struct {
	Handler http.Handler
	Addr    string
	Close   func() error
}

// Build wires the whole application from environment configuration. Any
// missing required configuration, including the token signing secret, fails
// here: the process never serves protected routes half-configured.
func Build(options Options) (*Runtime, error) {
	if options.LoadDotEnv {
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(cfg.AppEnv)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	flushSentry, err := observability.SetupSentry(cfg.SentryDSN, cfg.AppEnv)
	if err != nil {
		logger.Error("init_sentry_failed", zap.Error(err))
	}

	database, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)
	database.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	database.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if options.RunMigrations {
		if err := db.RunMigrations(database); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.TokenIssuer)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("init token codec: %w", err)
	}

	var refreshStore token.RefreshStore
	var staleDeleter maintenance.StaleDeleter
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			_ = database.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		refreshStore = token.NewRedisStore(redisClient, cfg.RefreshTokenTTL)
	} else {
		pgStore := token.NewPostgresStore(database)
		refreshStore = pgStore
		staleDeleter = pgStore
	}

	issuer := token.NewIssuer(codec, refreshStore, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	binder := auth.NewCookieBinder(cfg.CookieDomain, cfg.IsProduction(), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	gate := auth.NewGate(codec, refreshStore, issuer, binder, logger)

	naverClient := provider.NewClient(cfg.NaverClientID, cfg.NaverClientSecret, cfg.NaverAuthState)
	users := user.NewRepository(database)
	authHandler := auth.NewHandler(naverClient, users, issuer, refreshStore, codec, binder, logger)

	quoteHandler := quote.NewHandler(quote.NewRepository(database))

	cleanupHandler := maintenance.NewCleanupHandler(
		staleDeleter,
		logger,
		cfg.CronSecret,
		cfg.RefreshTokenTTL,
		cfg.CleanupBatchSize,
	)

	loginLimiter := auth.NewLoginRateLimiter(cfg.LoginRateLimitMax, cfg.LoginRateLimitWindow)

	mux := http.NewServeMux()
	mux.Handle("GET /auth", loginLimiter.Middleware(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /health", healthHandler(database))
	mux.HandleFunc("GET /internal/maintenance/cleanup", cleanupHandler.Handle)
	mux.HandleFunc("POST /internal/maintenance/cleanup", cleanupHandler.Handle)
	mux.Handle("GET /quotes", gate.Middleware(http.HandlerFunc(quoteHandler.ListQuotes)))
	mux.Handle("POST /quotes", gate.Middleware(http.HandlerFunc(quoteHandler.CreateQuote)))
	mux.Handle("PUT /quotes/{id}", gate.Middleware(http.HandlerFunc(quoteHandler.UpdateQuote)))
	mux.Handle("DELETE /quotes/{id}", gate.Middleware(http.HandlerFunc(quoteHandler.DeleteQuote)))

	handler := corsMiddleware(cfg.CORSOrigins,
		observability.RecoverMiddleware(logger,
			observability.RequestLoggingMiddleware(logger, mux)))

	return &Runtime{
		Handler: handler,
		Addr:    ":" + cfg.Port,
		Close: func() error {
			flushSentry()
			_ = logger.Sync()
			if redisClient != nil {
				_ = redisClient.Close()
			}
			return database.Close()
		},
	}, nil
}

func healthHandler(database *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]any{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)}
		if err := database.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body = map[string]any{"status": "degraded", "time": time.Now().UTC().Format(time.RFC3339)}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
