package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/personal-library/internal/auth"
	"github.com/ayush/personal-library/internal/books"
	"github.com/ayush/personal-library/internal/config"
	"github.com/ayush/personal-library/internal/middleware"
	"github.com/ayush/personal-library/internal/server"
	"github.com/ayush/personal-library/internal/store"
)

// libraryStore is what both the auth and books flows need from persistence.
type libraryStore interface {
	auth.UserStore
	books.BookStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// ── Persistence ──────────────────────────────────────────
	db, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("store init failed", slog.String("backend", cfg.StoreBackend), slog.Any("error", err))
		os.Exit(1)
	}
	defer closeDB()
	logger.Info("store ready", slog.String("backend", cfg.StoreBackend))

	// ── Redis (optional rate limiting) ───────────────────────
	var limiter middleware.Counter
	if cfg.RateLimitEnabled() {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Error("redis connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer rdb.Close()
		limiter = store.NewRedisCounter(rdb, "ratelimit:")
		logger.Info("auth rate limiting enabled",
			slog.Int("limit", cfg.AuthRateLimit), slog.Duration("window", cfg.AuthRateWindow))
	}

	// ── MinIO (optional covers) ──────────────────────────────
	var files books.FileStore
	if cfg.CoversEnabled() {
		minioStore, err := store.NewMinioStore(
			ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
		if err != nil {
			logger.Error("minio connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		files = minioStore
		logger.Info("cover storage enabled", slog.String("bucket", cfg.MinioBucket))
	}

	// ── Services ─────────────────────────────────────────────
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	creds, err := auth.NewCredentialStore(db, cfg.BcryptCost)
	if err != nil {
		logger.Error("credential store init failed", slog.Any("error", err))
		os.Exit(1)
	}
	authHandler := auth.NewHandler(auth.NewService(creds, db, tokens), logger)
	booksHandler := books.NewHandler(books.NewService(db, files, logger), logger)

	// ── Router ───────────────────────────────────────────────
	r := server.NewRouter(server.Deps{
		Logger:      logger,
		Auth:        authHandler,
		Books:       booksHandler,
		Tokens:      tokens,
		RateLimiter: limiter,
		RateLimit:   cfg.AuthRateLimit,
		RateWindow:  cfg.AuthRateWindow,
		CORSOrigins: cfg.CORSOrigins,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error("shutdown failed", slog.Any("error", err))
	}
}

// openStore connects the configured backend and prepares its schema.
func openStore(ctx context.Context, cfg *config.Config) (libraryStore, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		if err := client.Ping(ctx, nil); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("mongo ping: %w", err)
		}
		s := store.NewMongoStore(client.Database(cfg.MongoDB))
		if err := s.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		return s, closeFn, nil

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		s := store.NewPostgresStore(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return s, pool.Close, nil

	default:
		return store.NewMemoryStore(), func() {}, nil
	}
}
