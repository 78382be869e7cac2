package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/config"
	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/handlers"
	"github.com/cliptube/backend/internal/httpserver"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/storage"
)

// Run bootstraps the cliptube backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve or migrate")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "migrate":
		return runMigrations(ctx)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	deps, err := buildDependencies(ctx, pool, cfg)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)

	handler := middleware.RequestLogger(logger)(mux)

	srv := httpserver.New(cfg.AppPort, handler)

	logger.Info("starting http server", "port", cfg.AppPort, "asset_backend", cfg.AssetBackend)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func runMigrations(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, cfg.MigrationDir); err != nil {
		return err
	}
	logger.Info("migrations applied", "dir", cfg.MigrationDir)
	return nil
}

func buildDependencies(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) (handlers.Dependencies, error) {
	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	comments := repositories.NewPostgresCommentRepository(pool)
	likes := repositories.NewPostgresLikeRepository(pool)
	subscriptions := repositories.NewPostgresSubscriptionRepository(pool)
	playlists := repositories.NewPostgresPlaylistRepository(pool)

	assets, err := buildAssetStore(ctx, cfg)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	sessions := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL, users)

	uploads := handlers.UploadStaging{Dir: cfg.UploadDir, MaxBytes: cfg.UploadMaxBytes}

	authLimiter := middleware.NewIPRateLimiter(
		cfg.AuthRateLimit, cfg.AuthRateWindow, cfg.AuthRateLimit, 10*time.Minute)

	return handlers.Dependencies{
		Users: &handlers.UserHandler{
			Users:    users,
			Sessions: sessions,
			Assets:   assets,
			Uploads:  uploads,
		},
		Videos: &handlers.VideoHandler{
			Videos:  videos,
			Assets:  assets,
			Uploads: uploads,
		},
		Comments: &handlers.CommentHandler{
			Comments: comments,
			Videos:   videos,
		},
		Likes: &handlers.LikeHandler{
			Likes:    likes,
			Videos:   videos,
			Comments: comments,
		},
		Subscriptions: &handlers.SubscriptionHandler{
			Subscriptions: subscriptions,
			Users:         users,
		},
		Playlists: &handlers.PlaylistHandler{
			Playlists: playlists,
			Videos:    videos,
		},
		Health:      &handlers.HealthHandler{DB: pool},
		Tokens:      sessions,
		AuthLimiter: authLimiter,
	}, nil
}

func buildAssetStore(ctx context.Context, cfg config.Config) (storage.AssetStore, error) {
	switch strings.ToLower(cfg.AssetBackend) {
	case "cloudinary":
		return storage.NewCloudinaryStorage(cfg.Cloudinary)
	case "s3", "":
		return storage.NewS3Storage(ctx, cfg.ObjectStore)
	default:
		return nil, fmt.Errorf("unknown asset backend %q", cfg.AssetBackend)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl, AddSource: true}))
}
