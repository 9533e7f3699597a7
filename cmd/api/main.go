// Package main - точка входа для REST API Lingua Academy Hub.
//
// API обслуживает родительский кабинет и внутренние инструменты школы:
// - Регистрация родителей и учеников
// - Статус абонемента и его продление через billing-провайдера
// - Бронирование пробных и обычных занятий
// - Посещаемость и выплаты преподавателям
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lingua-hub/lingua-academy-hub/config"
	"github.com/lingua-hub/lingua-academy-hub/internal/application/command"
	"github.com/lingua-hub/lingua-academy-hub/internal/application/eventhandler"
	"github.com/lingua-hub/lingua-academy-hub/internal/application/query"
	"github.com/lingua-hub/lingua-academy-hub/internal/application/saga"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"
	"github.com/lingua-hub/lingua-academy-hub/internal/infrastructure/external/billing"
	"github.com/lingua-hub/lingua-academy-hub/internal/infrastructure/messaging"
	"github.com/lingua-hub/lingua-academy-hub/internal/infrastructure/notify"
	"github.com/lingua-hub/lingua-academy-hub/internal/infrastructure/persistence/postgres"
	"github.com/lingua-hub/lingua-academy-hub/internal/infrastructure/persistence/redis"
	httpapi "github.com/lingua-hub/lingua-academy-hub/internal/interface/http"
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
	_ = godotenv.Load() // .env необязателен, в production переменные приходят извне

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Lingua Academy Hub API",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

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
	// 4. REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var statusCache student.StatusCache
	var counterCache teacher.CounterCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			statusCache = redis.NewPlanStatusCache(redisCache)
			counterCache = redis.NewCounterCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = log

	var eventBus interface {
		shared.EventPublisher
		Subscribe(eventType shared.EventType, handler shared.EventHandler) error
		Close() error
	}

	if redisCache != nil {
		eventBus, err = messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         redisCache.Client(),
			LocalBusConfig: busCfg,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("failed to create event bus: %w", err)
		}
	} else {
		eventBus = messaging.NewInMemoryEventBus(busCfg)
	}
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. РЕПОЗИТОРИИ
	// ─────────────────────────────────────────────────────────────────────────
	parentRepo := postgres.NewParentRepository(dbConn)
	studentRepo := postgres.NewStudentRepository(dbConn)
	teacherRepo := postgres.NewTeacherRepository(dbConn)
	bookingRepo := postgres.NewBookingRepository(dbConn)
	attendanceRepo := postgres.NewAttendanceRepository(dbConn)
	trialRepo := postgres.NewTrialRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. BILLING ПРОВАЙДЕР
	// ─────────────────────────────────────────────────────────────────────────
	billingCfg := billing.DefaultClientConfig(cfg.Billing.BaseURL)
	billingCfg.APIKey = cfg.Billing.APIKey
	billingCfg.WebhookSecret = cfg.Billing.WebhookSecret
	billingCfg.Timeout = cfg.Billing.RequestTimeout
	billingCfg.Logger = log
	billingCfg.Debug = cfg.App.Debug
	billingClient := billing.NewClient(billingCfg)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ОБРАБОТЧИКИ СОБЫТИЙ (уведомления)
	// ─────────────────────────────────────────────────────────────────────────
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
	// 9. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	deps := httpapi.Dependencies{
		RegisterParent:       command.NewRegisterParentHandler(parentRepo, eventBus),
		AuthenticateParent:   command.NewAuthenticateParentHandler(parentRepo),
		ChangeParentPassword: command.NewChangeParentPasswordHandler(parentRepo),
		AddStudent:           command.NewAddStudentHandler(studentRepo, parentRepo),
		AddTeacher:           command.NewAddTeacherHandler(teacherRepo),
		UpdateTeacherRate:    command.NewUpdateTeacherRateHandler(teacherRepo),
		EvaluatePlan:         command.NewEvaluatePlanHandler(studentRepo, parentRepo, statusCache, eventBus),
		ConfirmPayment:       command.NewConfirmPaymentHandler(studentRepo, billingClient, statusCache, eventBus, cfg.Features),
		BookTrial:            command.NewBookTrialHandler(trialRepo, parentRepo, studentRepo, bookingRepo, eventBus),
		BookSession:          command.NewBookSessionHandler(bookingRepo, studentRepo, eventBus),
		RecordAttendance:     command.NewRecordAttendanceHandler(bookingRepo, attendanceRepo, teacherRepo, counterCache, studentRepo, eventBus),

		PlanStatus:        query.NewPlanStatusHandler(studentRepo, statusCache, cfg.Features),
		TrialEligibility:  query.NewTrialEligibilityHandler(trialRepo),
		TodaysSessions:    query.NewTodaysSessionsHandler(studentRepo, bookingRepo),
		MonthlyAttendance: query.NewMonthlyAttendanceHandler(teacherRepo, attendanceRepo),
		PayoutHistory:     query.NewPayoutHistoryHandler(teacherRepo),
		TeacherProfile:    query.NewTeacherProfileHandler(teacherRepo, counterCache),

		PayoutFlow: saga.NewPayoutFlowSaga(teacherRepo, attendanceRepo, counterCache, eventBus),

		WebhookVerifier: billingClient,
		Logger:          log,
		HealthChecker: &healthChecker{
			db:      dbConn,
			cache:   redisCache,
			billing: billingClient,
		},
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HTTP СЕРВЕР
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpapi.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout

	server := httpapi.NewServer(serverCfg, deps)
	serverErr := server.StartAsync()

	log.Info("Lingua Academy Hub API is running", "address", serverCfg.Address())

	// ─────────────────────────────────────────────────────────────────────────
	// 11. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH CHECKER
// ══════════════════════════════════════════════════════════════════════════════

// healthChecker aggregates backing-service probes for the /health endpoint.
// Redis is optional infrastructure and degrades the report without failing it.
type healthChecker struct {
	db      *postgres.Connection
	cache   *redis.Cache
	billing *billing.Client
}

func (h *healthChecker) Check(ctx context.Context) httpapi.HealthStatus {
	status := httpapi.HealthStatus{Healthy: true, Checks: make(map[string]string)}

	if err := h.db.Ping(ctx); err != nil {
		status.Healthy = false
		status.Checks["postgres"] = err.Error()
	} else {
		status.Checks["postgres"] = "ok"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			status.Checks["redis"] = err.Error()
		} else {
			status.Checks["redis"] = "ok"
		}
	} else {
		status.Checks["redis"] = "disabled"
	}

	if h.billing.IsHealthy(ctx) {
		status.Checks["billing"] = "ok"
	} else {
		status.Checks["billing"] = fmt.Sprintf("degraded (breaker %s)", h.billing.BreakerState())
	}

	return status
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

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
