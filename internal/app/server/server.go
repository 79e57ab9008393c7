package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/compliance"
	"workforce/internal/domain/core"
	"workforce/internal/domain/notifications"
	"workforce/internal/domain/reports"
	"workforce/internal/domain/shifts"
	"workforce/internal/platform/config"
	cryptoutil "workforce/internal/platform/crypto"
	"workforce/internal/platform/db"
	"workforce/internal/platform/email"
	"workforce/internal/platform/jobs"
	"workforce/internal/platform/metrics"
	"workforce/internal/platform/telemetry"
	"workforce/internal/transport/http/api"
	audithandler "workforce/internal/transport/http/handlers/audit"
	authhandler "workforce/internal/transport/http/handlers/auth"
	compliancehandler "workforce/internal/transport/http/handlers/compliance"
	corehandler "workforce/internal/transport/http/handlers/core"
	jobshandler "workforce/internal/transport/http/handlers/jobs"
	notificationshandler "workforce/internal/transport/http/handlers/notifications"
	reportshandler "workforce/internal/transport/http/handlers/reports"
	shiftshandler "workforce/internal/transport/http/handlers/shifts"
	"workforce/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *db.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector

	shutdownTelemetry func(context.Context) error
}

// New connects to the database, prepares the schema and seed data and wires
// every service into the HTTP router. Background jobs are not started.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	shutdownTelemetry := telemetry.Setup(ctx, cfg)

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	fail := func(err error) (*App, error) {
		pool.Close()
		_ = shutdownTelemetry(context.Background())
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			return fail(fmt.Errorf("migrations: %w", err))
		}
	}

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return fail(fmt.Errorf("encryption key: %w", err))
	}
	if !crypto.Configured() {
		slog.Warn("DATA_ENCRYPTION_KEY not set, national ids are stored in the clear")
	}

	collector := metrics.New()
	auditSvc := audit.New(pool)
	authStore := auth.NewStore(pool)
	authSvc := auth.NewService(authStore, cfg.JWTSecret)
	complianceSvc := compliance.NewService(compliance.NewStore(pool), auditSvc)
	coreSvc := core.NewService(core.NewStore(pool, crypto), complianceSvc, auditSvc)

	notifySvc := notifications.New(notifications.NewStore(pool), email.New(cfg))
	notifySvc.DefaultFrom = cfg.EmailFrom
	shiftsSvc := shifts.NewService(shifts.NewStore(pool), auditSvc).WithNotifier(notifySvc)
	reportsSvc := reports.NewService(reports.NewStore(pool), complianceSvc, shiftsSvc, cfg.ReportsDir)

	jobsSvc := jobs.New(pool, cfg, complianceSvc, notifySvc)
	jobsSvc.Metrics = collector

	if cfg.RunSeed {
		tenantID, err := db.Seed(ctx, pool, cfg)
		if err != nil {
			return fail(fmt.Errorf("seed: %w", err))
		}
		if cfg.SeedDemoEmployees > 0 {
			if err := db.SeedDemo(ctx, pool, tenantID, cfg.SeedDemoEmployees, coreSvc, shiftsSvc); err != nil {
				return fail(fmt.Errorf("demo seed: %w", err))
			}
		}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Metrics(collector))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Total-Count", "X-Unread-Count", "X-Request-ID", "Idempotent-Replay"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, authStore))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequirePermission(auth.PermAuditRead, authSvc)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authSvc, coreSvc).RegisterRoutes(r)
		corehandler.NewHandler(coreSvc, complianceSvc, authSvc, middleware.NewIdempotencyStore(pool)).RegisterRoutes(r)
		compliancehandler.NewHandler(complianceSvc, authSvc).RegisterRoutes(r)
		shiftshandler.NewHandler(shiftsSvc, coreSvc, authSvc).RegisterRoutes(r)
		reportshandler.NewHandler(reportsSvc, authSvc).RegisterRoutes(r)
		jobshandler.NewHandler(jobsSvc, authSvc).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc, authSvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc, authSvc).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return &App{
		Config:            cfg,
		DB:                pool,
		Router:            otelhttp.NewHandler(router, cfg.OTelServiceName),
		Jobs:              jobsSvc,
		Metrics:           collector,
		shutdownTelemetry: shutdownTelemetry,
	}, nil
}

func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdownTelemetry(ctx); err != nil {
		slog.Warn("telemetry shutdown failed", "err", err)
	}
	a.DB.Close()
}

func Run() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	app.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("workforce server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown error", "err", err)
		}
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
