package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"hospadmin/internal/db"
	"hospadmin/internal/domain/audit"
	"hospadmin/internal/domain/criteria"
	"hospadmin/internal/domain/duties"
	"hospadmin/internal/domain/evaluation"
	"hospadmin/internal/domain/notifications"
	"hospadmin/internal/domain/workitem"
	"hospadmin/internal/platform/config"
	"hospadmin/internal/platform/email"
	"hospadmin/internal/platform/jobs"
	"hospadmin/internal/platform/metrics"
	"hospadmin/internal/transport/http/api"
	audithandler "hospadmin/internal/transport/http/handlers/audit"
	criteriahandler "hospadmin/internal/transport/http/handlers/criteria"
	dutieshandler "hospadmin/internal/transport/http/handlers/duties"
	evaluationhandler "hospadmin/internal/transport/http/handlers/evaluation"
	notificationshandler "hospadmin/internal/transport/http/handlers/notifications"
	workitemhandler "hospadmin/internal/transport/http/handlers/workitem"
	"hospadmin/internal/transport/http/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		slog.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			slog.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}
	if cfg.SeedDemoData {
		if err := db.Seed(ctx, pool); err != nil {
			slog.Error("seeding failed", "err", err)
			os.Exit(1)
		}
	}

	criteriaStore := criteria.NewStore(pool)
	criteriaSvc := criteria.NewService(criteriaStore)
	dutySvc := duties.NewService(duties.NewStore(pool))
	workItemSvc := workitem.NewService(workitem.NewStore(pool))
	evaluationSvc := evaluation.NewService(evaluation.NewStore(pool), criteriaStore)
	notifySvc := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom, cfg.EmailEnabled)
	auditSvc := audit.New(pool)
	collector := metrics.New()

	jobSvc := jobs.New(pool, cfg, workItemSvc, notifySvc)
	jobSvc.Start(ctx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, map[string]string{"status": "ok"}, middleware.GetRequestID(r.Context()))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			api.Fail(w, http.StatusServiceUnavailable, "not_ready", "database unreachable", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, map[string]string{"status": "ready"}, middleware.GetRequestID(r.Context()))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))

		criteriahandler.NewHandler(criteriaSvc, auditSvc).RegisterRoutes(r)
		dutieshandler.NewHandler(dutySvc).RegisterRoutes(r)
		workitemhandler.NewHandler(workItemSvc, notifySvc, auditSvc).RegisterRoutes(r)
		evaluationhandler.NewHandler(evaluationSvc, dutySvc, notifySvc, auditSvc).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)

		if cfg.MetricsEnabled {
			r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
			})
		}
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "err", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Addr, "env", cfg.Environment)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
