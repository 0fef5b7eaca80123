package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"todoLifecycle/internal/config"
	"todoLifecycle/internal/handlers"
	"todoLifecycle/internal/lifecycle"
	"todoLifecycle/internal/logger"
	"todoLifecycle/internal/middleware"
	"todoLifecycle/internal/repository/todo/inmemory"
	"todoLifecycle/internal/repository/todo/postgres"
	"todoLifecycle/internal/worker"

	"github.com/go-chi/chi/v5"
)

// шлюз целиком: контракт прогона плюс операторские методы
type Storage interface {
	lifecycle.TodoRepository
	HealthCheck(ctx context.Context) error
}

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	storage   Storage
	runner    *lifecycle.Runner
	worker    *worker.LifecycleWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	switch a.config.Repository.Type {
	case "postgres":
		storage, err := postgres.New(ctx, a.config.Database.URL)
		if err != nil {
			return fmt.Errorf("подключение к postgres: %w", err)
		}
		if err := storage.Migrate(ctx); err != nil {
			return fmt.Errorf("применение миграций: %w", err)
		}
		a.shutdowns = append(a.shutdowns, storage.Close)
		a.storage = storage
	default:
		a.storage = inmemory.NewTodoStorage()
	}

	a.runner = lifecycle.NewRunner(
		a.storage,
		a.config.Lifecycle.ExpireAfterDays,
		a.config.Lifecycle.PurgeAfterDays,
		a.config.Lifecycle.ResetAddDays,
	)

	interval := a.config.Worker.GetInterval()
	a.worker = worker.NewLifecycleWorker(a.runner, &interval)

	handler := handlers.NewLifecycleHandler(a.runner, a.storage)

	a.router = chi.NewRouter()
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logging)
	a.router.Use(middleware.Timeout(30 * time.Second))
	a.router.Use(middleware.RateLimit(100))

	a.router.Get("/health", handler.HealthCheck)
	a.router.Post("/run", handler.RunLifecycle)
	a.router.Get("/todos", handler.GetTodos)

	a.server = &http.Server{
		Addr:    a.config.GetServerAddr(),
		Handler: a.router,
	}

	return nil
}

// RunOnce выполняет единичный прогон без запуска воркера и сервера
func (a *App) RunOnce(ctx context.Context) lifecycle.Result {
	return a.runner.Run(ctx)
}

// Run держит воркер и http-сервер до отмены контекста
func (a *App) Run(ctx context.Context) error {
	go a.worker.Start(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.server.Shutdown(shutdownCtx)
	}()

	logger.Info("Сервер запущен")
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http-сервер: %w", err)
	}
	return nil
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
