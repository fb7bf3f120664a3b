package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/getsentry/sentry-go"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/careerpoint/institute-api/docs"
	"github.com/careerpoint/institute-api/internal/config"
	"github.com/careerpoint/institute-api/internal/database"
	"github.com/careerpoint/institute-api/internal/handlers"
	"github.com/careerpoint/institute-api/internal/jobs"
	"github.com/careerpoint/institute-api/internal/middleware"
	"github.com/careerpoint/institute-api/internal/repository"
	"github.com/careerpoint/institute-api/internal/services"
	"github.com/careerpoint/institute-api/internal/storage"
	"github.com/careerpoint/institute-api/pkg/logger"
)

// @title Institute Management API
// @version 1.0
// @description Student, enrollment and fee settlement API for Career Point Institute
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Setup("development")
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Environment)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			logger.Warn("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	db, err := database.Connect(cfg.DatabaseURL, time.Duration(cfg.DBSlowQueryMS)*time.Millisecond)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)
	svc := services.NewServices(repos, cfg, store)

	worker := jobs.NewWorker(cfg.WorkerCount)
	defer worker.Stop()
	worker.ScheduleEvery("dues-reminders", 24*time.Hour, svc.Notification.SendDuesReminders)
	worker.ScheduleEvery("enquiry-follow-ups", 24*time.Hour, svc.Notification.SendFollowUpReminders)
	worker.ScheduleEvery("expired-token-cleanup", 12*time.Hour, func(ctx context.Context) error {
		n, err := repos.RefreshToken.DeleteExpired(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("expired refresh tokens removed", "count", n)
		}
		return nil
	})

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.SentryDSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	h := handlers.NewHandlers(svc)
	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}
