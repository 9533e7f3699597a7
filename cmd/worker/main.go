// Package main - точка входа для фоновых процессов (Worker) Lingua Academy Hub.
//
// Worker отвечает за периодические задачи:
// - Ночной sweep абонементов: истёкшие планы переводятся в pending
// - Публикация событий о завершённых sweep'ах
//
// Sweep — единственный источник истины по срокам: даже если родитель ни разу
// не открыл кабинет, просроченный абонемент будет закрыт не позднее
// следующего запуска.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lingua-hub/lingua-academy-hub/config"
	"github.com/lingua-hub/lingua-academy-hub/internal/application/eventhandler"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/infrastructure/messaging"
	"github.com/lingua-hub/lingua-academy-hub/internal/infrastructure/notify"
	"github.com/lingua-hub/lingua-academy-hub/internal/infrastructure/persistence/postgres"
	"github.com/lingua-hub/lingua-academy-hub/internal/infrastructure/persistence/redis"
	"github.com/lingua-hub/lingua-academy-hub/internal/infrastructure/scheduler"
	"github.com/lingua-hub/lingua-academy-hub/internal/infrastructure/scheduler/jobs"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ
	// ─────────────────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Lingua Academy Hub Worker",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"sweep_time", fmt.Sprintf("%02d:%02d", cfg.Scheduler.ExpirySweepHour, cfg.Scheduler.ExpirySweepMinute),
	)

	if !cfg.Scheduler.Enabled {
		log.Warn("scheduler is disabled, worker has nothing to do")
		return nil
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. POSTGRESQL
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (опционально — sweep чистит кеш статусов, если он есть)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var statusPurger jobs.StatusCachePurger

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, cache purge disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			statusPurger = redisCache
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS И УВЕДОМЛЕНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	parentRepo := postgres.NewParentRepository(dbConn)
	studentRepo := postgres.NewStudentRepository(dbConn)
	sender := notify.NewConsoleSender(log)

	if err := eventBus.Subscribe(shared.EventPlanExpired,
		eventhandler.NewOnPlanExpired(parentRepo, sender, cfg.Features, log)); err != nil {
		return fmt.Errorf("failed to subscribe plan expired handler: %w", err)
	}
	if err := eventBus.Subscribe(shared.EventPlanPaymentFailed,
		eventhandler.NewOnPaymentFailed(
			eventhandler.NewRepoParentLookup(studentRepo, parentRepo),
			sender, cfg.Features, log)); err != nil {
		return fmt.Errorf("failed to subscribe payment failed handler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Config{
		Logger:     log,
		Timezone:   time.Local,
		JobTimeout: cfg.Scheduler.JobTimeout,
	})

	sweepJob := jobs.NewExpirePlansJob(studentRepo, statusPurger, eventBus, cfg.Features, log)
	sweepSchedule := scheduler.MustDailySchedule(
		cfg.Scheduler.ExpirySweepHour,
		cfg.Scheduler.ExpirySweepMinute,
		time.Local,
	)
	if err := sched.Register(sweepJob, sweepSchedule); err != nil {
		return fmt.Errorf("failed to register sweep job: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	log.Info("Lingua Academy Hub Worker is running")

	// ─────────────────────────────────────────────────────────────────────────
	// 7. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())
	if err := sched.Stop(); err != nil {
		log.Warn("scheduler stop", "error", err)
	}

	log.Info("shutdown completed successfully")
	return nil
}

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Observability.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
