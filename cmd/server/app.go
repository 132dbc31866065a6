package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"autoposter-api/api/routes"
	"autoposter-api/internal/activity"
	"autoposter-api/internal/autopost"
	"autoposter-api/internal/common"
	"autoposter-api/internal/config"
	"autoposter-api/internal/database"
	"autoposter-api/internal/events"
	"autoposter-api/internal/llm"
	"autoposter-api/internal/metrics"
	"autoposter-api/internal/notify"
	"autoposter-api/internal/scheduler"
	"autoposter-api/internal/social"
	"autoposter-api/internal/storage"
	"autoposter-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// app holds the wired process components shared by the commands
type app struct {
	cfg       *config.Config
	logger    *logger.Logger
	db        *gorm.DB
	eventBus  events.EventBus
	metrics   *metrics.Metrics
	service   autopost.Service
	scheduler scheduler.Scheduler
	redis     *redis.Client
}

// bootstrap loads config and opens the database
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(cfg.Server.Environment)
	zapLogger := log.Desugar()

	db, err := database.NewPostgresConnection(ctx, cfg.Database, zapLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := storage.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &app{cfg: cfg, logger: log, db: db}, nil
}

// wire builds the service graph on top of bootstrap
func (a *app) wire(ctx context.Context) error {
	zapLogger := a.logger.Desugar()
	location := a.cfg.Server.Location()

	store := storage.NewGormStore(a.db, zapLogger)
	a.eventBus = events.NewEventBus(zapLogger)
	a.metrics = metrics.New()

	if err := activity.NewRecorder(store, zapLogger).Subscribe(a.eventBus); err != nil {
		return fmt.Errorf("failed to subscribe activity recorder: %w", err)
	}

	if a.cfg.Telegram.Enabled {
		sender, err := notify.NewTelegramSender(a.cfg.Telegram.Token, zapLogger)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram notifier: %w", err)
		}
		if err := notify.NewNotifier(a.cfg.Telegram, sender, zapLogger).Subscribe(a.eventBus); err != nil {
			return fmt.Errorf("failed to subscribe telegram notifier: %w", err)
		}
		a.logger.Infow("Telegram notifications enabled", "chat_id", a.cfg.Telegram.ChatID)
	}

	generator, err := llm.NewOpenAIProvider(a.cfg.LLM, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize content generator: %w", err)
	}
	publisher, err := social.NewXClient(a.cfg.Social, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize social publisher: %w", err)
	}

	a.service = autopost.NewService(autopost.Dependencies{
		Store:     store,
		Generator: generator,
		Publisher: publisher,
		EventBus:  a.eventBus,
		Clock:     common.NewRealClock(),
		Location:  location,
		Metrics:   a.metrics,
		Logger:    zapLogger,
	})

	locker, err := a.locker(ctx)
	if err != nil {
		return err
	}

	a.scheduler, err = scheduler.NewScheduler(scheduler.Dependencies{
		Config:   a.cfg.Scheduler,
		Work:     a.service,
		Users:    store,
		Locker:   locker,
		Location: location,
		Metrics:  a.metrics,
		Logger:   zapLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	return nil
}

// locker returns the redis lock when redis is enabled so replicas do not run
// the same cycle twice
func (a *app) locker(ctx context.Context) (scheduler.Locker, error) {
	if !a.cfg.Redis.Enabled {
		return scheduler.NewLocalLocker(), nil
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err := a.redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", a.cfg.Redis.Addr, err)
	}
	a.logger.Infow("Using redis job lock", "addr", a.cfg.Redis.Addr)
	return scheduler.NewRedisLocker(a.redis, a.logger.Desugar()), nil
}

func (a *app) close() {
	if a.eventBus != nil {
		if err := a.eventBus.Close(); err != nil {
			a.logger.Errorw("Failed to close event bus", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Errorw("Failed to close redis client", "error", err)
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}

func runMigrate(ctx context.Context) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.Infow("Migrations applied")
	return nil
}

func newRunJobCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "run-job <name>",
		Short:     "Run one cycle of a scheduler job and exit",
		Long:      "Run one cycle of a scheduler job and exit. Jobs: " + strings.Join(scheduler.JobNames(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: scheduler.JobNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd.Context(), args[0])
		},
	}
}

func runJob(ctx context.Context, name string) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.wire(ctx); err != nil {
		return err
	}

	start := time.Now()
	if err := a.scheduler.RunJob(ctx, name); err != nil {
		a.logger.Errorw("Job failed", "job", name, "error", err)
		return err
	}
	a.logger.Infow("Job completed", "job", name, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func runServe(ctx context.Context) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.wire(ctx); err != nil {
		return err
	}

	if a.cfg.Scheduler.Enabled {
		if err := a.scheduler.Start(context.Background()); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		a.logger.Infow("Job scheduler started",
			"poll_interval", a.cfg.Scheduler.PollInterval,
			"concurrency", a.cfg.Scheduler.Concurrency,
			"redis_lock", a.cfg.Redis.Enabled)
	} else {
		a.logger.Infow("Job scheduler disabled")
	}

	// Setup Gin router
	if a.cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var sched scheduler.Scheduler
	if a.cfg.Scheduler.Enabled {
		sched = a.scheduler
	}

	router := gin.New()
	routes.SetupRoutes(router, routes.Dependencies{
		DB:        a.db,
		Service:   a.service,
		Scheduler: sched,
		Metrics:   a.metrics,
		Config:    a.cfg,
		Logger:    a.logger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Infow("Starting server", "port", a.cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		a.logger.Errorw("Server failed", "error", err)
		a.stopScheduler()
		return err
	}

	a.logger.Infow("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.Scheduler.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Errorw("Server forced to shutdown", "error", err)
	}

	// Stop scheduler after the server so in-flight requests can finish first
	a.stopScheduler()

	a.logger.Infow("Server exited")
	return nil
}

func (a *app) stopScheduler() {
	if !a.scheduler.IsRunning() {
		return
	}
	a.logger.Infow("Stopping job scheduler...")
	if err := a.scheduler.Stop(); err != nil {
		a.logger.Errorw("Failed to stop scheduler gracefully", "error", err)
		return
	}
	a.logger.Infow("Job scheduler stopped successfully")
}
