package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/amitsuman46/video-progress-tracker/internal/auth"
	"github.com/amitsuman46/video-progress-tracker/internal/config"
	"github.com/amitsuman46/video-progress-tracker/internal/database"
	"github.com/amitsuman46/video-progress-tracker/internal/drive"
	"github.com/amitsuman46/video-progress-tracker/internal/handlers"
	"github.com/amitsuman46/video-progress-tracker/internal/middleware"
	"github.com/amitsuman46/video-progress-tracker/internal/routes"
	"github.com/amitsuman46/video-progress-tracker/internal/services"
	"github.com/amitsuman46/video-progress-tracker/internal/store"
	"github.com/amitsuman46/video-progress-tracker/internal/streamtoken"
	coursesync "github.com/amitsuman46/video-progress-tracker/internal/sync"
	"github.com/amitsuman46/video-progress-tracker/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("development")
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init(cfg.Env)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	catalog, progress, healthCheck, closeStores, err := buildStores(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to init catalog backend")
	}
	defer closeStores()

	cache := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	defer cache.Close()

	verifier, err := auth.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.GoogleCredentials, cfg.ServiceAccountJSON)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to init token verifier")
	}
	allowlist := auth.NewAllowlist(cfg.AdminList())

	driveClient, err := drive.NewGoogleClient(ctx, cfg.GoogleCredentials, cfg.ServiceAccountJSON)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to init Drive client")
	}

	tokens := streamtoken.NewStore()
	syncer := coursesync.New(catalog, driveClient)
	leaderboard := services.NewLeaderboard(catalog, progress)

	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL))

	r.GET("/health", func(c *gin.Context) {
		status := gin.H{
			"status":  "ok",
			"backend": cfg.CatalogBackend,
			"cache":   cache.Configured(),
		}
		if err := healthCheck(c.Request.Context()); err != nil {
			status["status"] = "degraded"
			status["backendError"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		c.JSON(http.StatusOK, status)
	})

	routes.Setup(r, verifier, allowlist, routes.Handlers{
		Me:       handlers.NewMeHandler(allowlist),
		Courses:  handlers.NewCourseHandler(catalog, cache, leaderboard),
		Progress: handlers.NewProgressHandler(catalog, progress),
		Stream:   handlers.NewStreamHandler(catalog, tokens, driveClient, cfg.PublicAPIURL),
		Admin:    handlers.NewAdminHandler(syncer, cache, leaderboard),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// No write timeout: the stream proxy holds long-lived responses
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Forced shutdown")
	}
	logger.Info().Msg("Server stopped")
}

// buildStores wires the configured persistence backend behind the store
// interfaces. Both backends satisfy Catalog and Progress with one value.
func buildStores(ctx context.Context, cfg *config.Config) (store.Catalog, store.Progress, func(context.Context) error, func(), error) {
	switch cfg.CatalogBackend {
	case config.BackendFirestore:
		var opts []option.ClientOption
		switch {
		case cfg.ServiceAccountJSON != "":
			opts = append(opts, option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)))
		case cfg.GoogleCredentials != "":
			opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentials))
		}
		client, err := firestore.NewClient(ctx, cfg.FirebaseProjectID, opts...)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		s := store.NewFirestoreStore(client)
		health := func(ctx context.Context) error {
			// A cheap read confirms credentials and connectivity
			_, err := client.Collections(ctx).Next()
			if err == iterator.Done {
				return nil
			}
			return err
		}
		return s, s, health, func() { client.Close() }, nil

	default:
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, nil, nil, nil, err
		}
		s := store.NewGormStore(db)
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, nil, nil, err
		}
		health := func(ctx context.Context) error { return sqlDB.PingContext(ctx) }
		return s, s, health, func() { sqlDB.Close() }, nil
	}
}
