package handlers

import (
	"context"
	"net/http"
	"time"

	"todoLifecycle/internal/handlers/dto"
	"todoLifecycle/internal/lifecycle"
	"todoLifecycle/internal/logger"
	"todoLifecycle/internal/models/todo"

	"go.uber.org/zap"
)

// операторский срез хранилища: снимок для просмотра и проверка соединения
type Store interface {
	Snapshot(ctx context.Context) ([]*todo.Todo, error)
	HealthCheck(ctx context.Context) error
}

type LifecycleHandler struct {
	runner *lifecycle.Runner
	store  Store
}

func NewLifecycleHandler(runner *lifecycle.Runner, store Store) LifecycleHandler {
	return LifecycleHandler{
		runner: runner,
		store:  store,
	}
}

// POST /run - ручной запуск одного прогона
func (h *LifecycleHandler) RunLifecycle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.Info("HTTP: Ручной запуск прогона",
		zap.String("client_ip", r.RemoteAddr))

	result := h.runner.Run(r.Context())
	if result.State == lifecycle.StateFailed {
		logger.Error("HTTP: Прогон завершился ошибкой", result.Err)
		responseWithJSON(w, http.StatusInternalServerError,
			toPayload("run", dto.FromResult(result)),
			toPayload("error", result.Err.Error()),
		)
		return
	}

	logger.Info("HTTP_OUT: Прогон завершён",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("run", dto.FromResult(result)))
}

// GET /todos - текущий снимок записей
func (h *LifecycleHandler) GetTodos(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	snapshot, err := h.store.Snapshot(r.Context())
	if err != nil {
		logger.Error("HTTP: Ошибка чтения снимка", err)
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Снимок получен",
		zap.Int("count", len(snapshot)),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, toPayload("todos", dto.FromTodoList(snapshot)))
}

func (h *LifecycleHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.store.HealthCheck(r.Context()); err != nil {
		responseWithError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}
