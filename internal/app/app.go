package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskAssistant/internal/assistant"
	"taskAssistant/internal/auth"
	"taskAssistant/internal/config"
	"taskAssistant/internal/constants"
	"taskAssistant/internal/handlers"
	"taskAssistant/internal/logger"
	"taskAssistant/internal/middleware"
	"taskAssistant/internal/ratelimit"
	"taskAssistant/internal/repository/inmemory"
	"taskAssistant/internal/repository/postgres"
	"taskAssistant/internal/service"
	"taskAssistant/internal/web"
	"taskAssistant/internal/worker"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Storage is everything the services need from a backing store.
type Storage interface {
	service.TaskRepository
	service.ThreadRepository
	service.MessageRepository
	service.DashboardRepository
	auth.Store
	HealthCheck(ctx context.Context) error
}

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	storage   Storage
	limiter   *ratelimit.Limiter
	auth      *auth.Service
	sweeper   *worker.Sweeper
	shutdowns []func(context.Context) error
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(context.Context) error, 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.onShutdown(func(context.Context) error {
		logger.Info("Shutting down logging")
		logger.Sync()
		return nil
	})

	bot, err := assistant.New(assistant.Config{
		OpenAIAPIKey:    a.config.Assistant.OpenAIAPIKey,
		AnthropicAPIKey: a.config.Assistant.AnthropicAPIKey,
	})
	if err != nil {
		return fmt.Errorf("configuring assistant: %w", err)
	}

	if err := a.initStorage(ctx); err != nil {
		return err
	}

	a.limiter = ratelimit.New(a.rateLimitRules())
	a.auth = auth.NewService(a.storage, auth.Config{
		Secret:          []byte(a.config.Auth.Secret),
		Issuer:          a.config.Auth.Issuer,
		AccessTokenTTL:  a.config.Auth.AccessTokenTTL,
		RefreshTokenTTL: a.config.Auth.RefreshTokenTTL,
	})

	taskService := service.NewTaskService(a.storage, a.limiter)
	assistantService := service.NewAssistantService(a.storage, a.storage, bot, a.limiter)
	dashboardService := service.NewDashboardService(a.storage)

	webHandler, err := web.New(taskService, a.auth, a.config.SecureCookies())
	if err != nil {
		return fmt.Errorf("loading pages: %w", err)
	}

	a.router = a.buildRouter(
		handlers.NewTaskHandler(taskService),
		handlers.NewAssistantHandler(assistantService),
		handlers.NewDashboardHandler(dashboardService),
		handlers.NewAuthHandler(a.auth, a.config.SecureCookies()),
		handlers.NewHealthHandler(a.storage, a.config.DeploymentID),
		webHandler,
	)

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(a.router, "task-assistant"),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	a.sweeper = worker.NewSweeper(a.auth, a.limiter, &a.config.Worker.Interval, &a.config.Worker.BucketIdle)

	return nil
}

func (a *App) initStorage(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		storage, err := postgres.New(ctx, a.config.Database.URL, postgres.Options{
			MaxConns:        int32(a.config.Database.MaxConnections),
			MinConns:        int32(a.config.Database.MinConnections),
			MaxConnIdleTime: a.config.Database.IdleTimeout,
			ConnectTimeout:  a.config.Database.ConnectTimeout,
		})
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		a.onShutdown(func(context.Context) error {
			logger.Info("Closing database pool")
			storage.Close()
			return nil
		})
		if err := storage.Migrate(); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		a.storage = storage
	default:
		logger.Warn("Using the in-memory repository; data is lost on restart")
		a.storage = inmemory.NewStorage()
	}
	logger.Info("Storage ready", zap.String("type", a.config.Repository.Type))
	return nil
}

func (a *App) rateLimitRules() map[string]ratelimit.Rule {
	rules := make(map[string]ratelimit.Rule, len(a.config.RateLimit))
	for name, r := range a.config.RateLimit {
		rules[name] = ratelimit.Rule{Requests: r.Requests, Period: r.Period, Burst: r.Burst}
	}
	return rules
}

func (a *App) allowedOrigins() []string {
	if len(a.config.CORS.AllowedOrigins) > 0 {
		return a.config.CORS.AllowedOrigins
	}
	return []string{a.config.Server.SiteURL}
}

func (a *App) buildRouter(
	tasks *handlers.TaskHandler,
	threads *handlers.AssistantHandler,
	dashboard *handlers.DashboardHandler,
	authHandler *handlers.AuthHandler,
	health *handlers.HealthHandler,
	pages *web.Handler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(a.config.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.allowedOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Retry-After", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Authenticate(a.auth))

	authLimit := middleware.RateLimit(a.limiter, constants.RuleAuth)

	r.Get("/health", health.HealthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Use(authLimit)
		r.Post("/signup", authHandler.SignUp)
		r.Post("/signin", authHandler.SignIn)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/signout", authHandler.SignOut)
		r.Get("/session", authHandler.Session)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", tasks.ListTasks)
			r.Post("/", tasks.CreateTask)
			r.Get("/active", tasks.ListActiveTasks)
			r.Get("/completed", tasks.ListCompletedTasks)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", tasks.GetTask)
				r.Put("/", tasks.UpdateTask)
				r.Delete("/", tasks.RemoveTask)
				r.Post("/complete", tasks.CompleteTask)
				r.Post("/reactivate", tasks.ReactivateTask)
				r.Delete("/permanent", tasks.PermanentlyDeleteTask)
			})
		})

		r.Route("/threads", func(r chi.Router) {
			r.Get("/", threads.ListThreads)
			r.Post("/", threads.CreateThread)
			r.Get("/active", threads.ListActiveThreads)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", threads.GetThread)
				r.Put("/", threads.UpdateThread)
				r.Delete("/", threads.DeleteThread)
				r.Post("/archive", threads.ArchiveThread)
				r.Post("/unarchive", threads.UnarchiveThread)
				r.Post("/messages", threads.SendMessage)
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/summary", dashboard.Summary)
			r.Get("/recent", dashboard.Recent)
		})
	})

	pages.Routes(r, authLimit)

	return r
}

func (a *App) onShutdown(fn func(context.Context) error) {
	a.shutdowns = append(a.shutdowns, fn)
}

// Handler exposes the instrumented router.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until ctx is cancelled or the listener fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		a.sweeper.Start(workerCtx)
	}()
	a.onShutdown(func(context.Context) error {
		stopWorker()
		<-workerDone
		return nil
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("serving http: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	return multierr.Append(runErr, a.Shutdown(shutdownCtx))
}

// Shutdown stops the server, then runs the registered hooks in reverse order.
func (a *App) Shutdown(ctx context.Context) error {
	var err error
	if a.server != nil {
		start := time.Now()
		err = multierr.Append(err, a.server.Shutdown(ctx))
		logger.Info("HTTP server stopped", zap.Duration("ms", time.Since(start)))
	}
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.shutdowns[i](ctx))
	}
	a.shutdowns = nil
	return err
}
