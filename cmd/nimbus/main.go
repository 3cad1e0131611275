package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nimbus-hr/nimbus-hr/internal/app"
	"github.com/nimbus-hr/nimbus-hr/internal/audit"
	"github.com/nimbus-hr/nimbus-hr/internal/auth"
	"github.com/nimbus-hr/nimbus-hr/internal/employees"
	"github.com/nimbus-hr/nimbus-hr/internal/idp"
	"github.com/nimbus-hr/nimbus-hr/internal/observability"
	"github.com/nimbus-hr/nimbus-hr/internal/orgs"
	"github.com/nimbus-hr/nimbus-hr/internal/platform/cache"
	"github.com/nimbus-hr/nimbus-hr/internal/platform/db"
	"github.com/nimbus-hr/nimbus-hr/internal/rbac"
	"github.com/nimbus-hr/nimbus-hr/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, rbac cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	idpClient := idp.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceKey, cfg.IdPTimeout)

	rbacCache := rbac.NewCache(redisClient, cfg.RBACCacheTTL)
	resolver := rbac.NewResolver(pool, rbacCache)

	metrics := observability.NewMetrics()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Warn("job client unavailable, audit trail disabled", slog.Any("error", err))
		jobClient = nil
	} else {
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
	}

	guard := rbac.Guard{
		Verifier: idpClient,
		Resolver: resolver,
		Logger:   logger,
		OnDeny: func(ctx context.Context, subjectID, path, reason string) {
			metrics.CountDenial(reason)
			if jobClient == nil {
				return
			}
			_ = jobClient.Enqueue(ctx, audit.Event{
				ActorID: subjectID,
				Action:  audit.ActionAccessDenied,
				Path:    path,
				Meta:    map[string]any{"reason": reason},
			})
		},
	}

	var auditor auth.Enqueuer
	if jobClient != nil {
		auditor = jobClient
	}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(logger, idpClient, authRepo, resolver, resolver, auditor)
	authHandler := auth.NewHandler(logger, authService, guard)

	orgsRepo := orgs.NewRepository(pool)
	orgsService := orgs.NewService(logger, orgsRepo, authService)
	orgsHandler := orgs.NewHandler(logger, orgsService, guard)

	employeesRepo := employees.NewRepository(pool)
	employeesService := employees.NewService(logger, employeesRepo)
	employeesHandler := employees.NewHandler(logger, employeesService, guard)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthHandler:      authHandler,
		OrgsHandler:      orgsHandler,
		EmployeesHandler: employeesHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
