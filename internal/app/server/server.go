package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hrms/internal/domain/audit"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/department"
	"hrms/internal/domain/employee"
	"hrms/internal/domain/notifications"
	"hrms/internal/domain/payroll"
	"hrms/internal/domain/position"
	"hrms/internal/domain/reports"
	"hrms/internal/platform/cache"
	"hrms/internal/platform/config"
	"hrms/internal/platform/db"
	"hrms/internal/platform/email"
	"hrms/internal/platform/jobs"
	"hrms/internal/platform/metrics"
	accesshandler "hrms/internal/transport/http/handlers/access"
	audithandler "hrms/internal/transport/http/handlers/audit"
	authhandler "hrms/internal/transport/http/handlers/auth"
	departmenthandler "hrms/internal/transport/http/handlers/department"
	employeehandler "hrms/internal/transport/http/handlers/employee"
	notificationshandler "hrms/internal/transport/http/handlers/notifications"
	payrollhandler "hrms/internal/transport/http/handlers/payroll"
	positionhandler "hrms/internal/transport/http/handlers/position"
	reportshandler "hrms/internal/transport/http/handlers/reports"
	"hrms/internal/transport/http/middleware"
)

const APIPrefix = "/api/v1"

type App struct {
	Config  config.Config
	DB      *db.Pool
	Redis   *redis.Client
	Router  http.Handler
	Jobs    *jobs.Service
	Payroll *payroll.Service

	logger  *zap.Logger
	metrics *metrics.Collector
	closers []func()
}

// New connects the database (and redis when configured), applies
// migrations and seed data as configured, and builds the router.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	app := &App{Config: cfg, logger: logger}
	if cfg.MetricsEnabled {
		app.metrics = metrics.New()
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	app.DB = pool
	app.closers = append(app.closers, pool.Close)

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir, logger); err != nil {
			app.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := auth.Seed(ctx, pool, cfg, logger); err != nil {
			app.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	if cfg.RedisAddr != "" {
		app.Redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := app.Redis.Ping(ctx).Err(); err != nil {
			app.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		app.closers = append(app.closers, func() { _ = app.Redis.Close() })
	}

	if err := app.wire(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wire() error {
	cfg, logger := a.Config, a.logger

	lookupCache, err := cache.New(cfg, a.Redis)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if local, ok := lookupCache.(*cache.Local); ok {
		a.closers = append(a.closers, local.Close)
	}

	renderer, err := email.NewRenderer()
	if err != nil {
		return fmt.Errorf("email templates: %w", err)
	}
	sender := email.NewSender(email.NewMailer(cfg), renderer, cfg.EmailFrom, cfg.EmailWorkers, logger, a.metrics)

	authService := auth.NewService(
		auth.NewStore(a.DB),
		auth.NewResolver(auth.NewStore(a.DB), lookupCache, a.metrics, logger),
		cfg.JWTSecret, cfg.TokenTTL, logger,
	)
	departmentService := department.NewService(department.NewStore(a.DB), logger)
	positionService := position.NewService(position.NewStore(a.DB))
	employeeService := employee.NewService(employee.NewStore(a.DB), logger).WithWelcome(sender)
	notificationService := notifications.New(notifications.NewStore(a.DB), sender, logger)
	auditService := audit.NewService(audit.NewStore(a.DB), logger)
	a.Payroll = payroll.NewService(payroll.NewStore(a.DB), sender, notificationService, a.metrics, logger)

	var locker jobs.Locker
	if a.Redis != nil {
		locker = jobs.NewRedisLocker(a.Redis, cfg.JobLockTTL)
	}
	a.Jobs = jobs.New(a.DB, locker, logger, a.metrics)

	trustedProxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.ClientIP(trustedProxies))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.Logger(logger, a.metrics))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes, cfg.MaxUploadBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", a.handleReady)
	if a.metrics != nil {
		router.Handle("/metrics", a.metrics.Handler())
	}

	var rateCounter middleware.RateCounter = middleware.NewMemoryCounter()
	if a.Redis != nil {
		rateCounter = middleware.NewRedisCounter(a.Redis, "hrms:ratelimit:")
	}
	authHandler := authhandler.NewHandler(authService, logger,
		middleware.LoginRateLimit(rateCounter, cfg.LoginRatePerMin, time.Minute, logger))
	idempotency := middleware.Idempotency(middleware.NewIdempotencyStore(a.DB), logger)

	router.Route(APIPrefix, func(r chi.Router) {
		authHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RateLimit(rateCounter, cfg.APIRatePerMin, time.Minute, logger))
			r.Use(middleware.Audit(auditService))
			authHandler.RegisterRoutes(r)
			notificationHandler := notificationshandler.NewHandler(notificationService)
			notificationHandler.RegisterRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authorize(authService.Resolver(), logger))
				departmenthandler.NewHandler(departmentService).RegisterRoutes(r)
				positionhandler.NewHandler(positionService).RegisterRoutes(r)
				employeehandler.NewHandler(employeeService, logger).RegisterRoutes(r)
				payrollhandler.NewHandler(a.Payroll, logger, idempotency).RegisterRoutes(r)
				accesshandler.NewHandler(authService).RegisterRoutes(r)
				notificationHandler.RegisterAdminRoutes(r)
				audithandler.NewHandler(auditService).RegisterRoutes(r)
				reportshandler.NewHandler(reports.NewService(reports.NewStore(a.DB))).RegisterRoutes(r)
			})
		})
	})

	if cfg.FrontendDir != "" {
		router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	}

	a.Router = router
	return nil
}

func (a *App) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.DB.Ping(ctx); err != nil {
		http.Error(w, "db not ready", http.StatusServiceUnavailable)
		return
	}
	if a.Redis != nil {
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			http.Error(w, "redis not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Run serves HTTP and runs the scheduler until ctx is cancelled, then
// shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a.Config.PayrollCron != "" {
		if err := a.Jobs.Schedule(ctx, jobs.JobPayrollGenerate, a.Config.PayrollCron, func(ctx context.Context) (any, error) {
			return a.Payroll.GenerateCurrentPeriod(ctx)
		}); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("hrms server listening", zap.String("addr", a.Config.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		a.Jobs.Start(gctx)
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases the connections New opened, newest first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
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
