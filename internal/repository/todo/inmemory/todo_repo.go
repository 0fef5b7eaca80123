package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"todoLifecycle/internal/lifecycle"
	"todoLifecycle/internal/logger"
	"todoLifecycle/internal/models/todo"
	repo "todoLifecycle/internal/repository"

	"github.com/google/uuid"
)

// TodoStorage - хранилище в памяти, для локального запуска и тестов.
// Нулевое значение - хранилище без источника данных, Snapshot на нём
// возвращает ErrNoData.
type TodoStorage struct {
	storage map[uuid.UUID]*todo.Todo
	mtx     sync.RWMutex
	ids     []uuid.UUID
}

func NewTodoStorage() *TodoStorage {
	return &TodoStorage{
		storage: make(map[uuid.UUID]*todo.Todo),
		ids:     []uuid.UUID{},
	}
}

func (s *TodoStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

// Create кладёт запись как есть, используется для наполнения хранилища
func (s *TodoStorage) Create(ctx context.Context, todoToCreate *todo.Todo) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.storage == nil {
		return repo.ErrNoData
	}

	s.storage[todoToCreate.ID] = todoToCreate.Clone()
	s.ids = append(s.ids, todoToCreate.ID)
	return nil
}

// Snapshot отдаёт копии всех записей в порядке добавления
func (s *TodoStorage) Snapshot(ctx context.Context) ([]*todo.Todo, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if s.storage == nil {
		return nil, repo.ErrNoData
	}

	snapshot := []*todo.Todo{}
	for _, id := range s.ids {
		snapshot = append(snapshot, s.storage[id].Clone())
	}
	return snapshot, nil
}

// SubmitBatch применяет пакет целиком или не применяет вовсе:
// сначала проверяются все предусловия, запись начинается только
// когда ни одно из них не нарушено.
func (s *TodoStorage) SubmitBatch(ctx context.Context, batch lifecycle.Batch) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.storage == nil {
		return repo.ErrNoData
	}

	for _, op := range batch {
		switch op := op.(type) {
		case lifecycle.UpdateStatus:
			if _, ok := s.storage[op.ID]; !ok {
				return fmt.Errorf("обновление %s: %w", op.ID, repo.ErrNotFound)
			}
		case lifecycle.CreateIfAbsent:
			if _, ok := s.storage[op.Todo.ID]; ok {
				return fmt.Errorf("вставка %s: %w", op.Todo.ID, repo.ErrAlreadyExists)
			}
		case lifecycle.DeleteByID:
			// удаление отсутствующей записи не считается нарушением
		default:
			return fmt.Errorf("неизвестная операция %T", op)
		}
	}

	now := time.Now()
	for _, op := range batch {
		switch op := op.(type) {
		case lifecycle.UpdateStatus:
			existing := s.storage[op.ID]
			existing.Status = op.NewStatus
			existing.UpdatedAt = now
		case lifecycle.CreateIfAbsent:
			s.storage[op.Todo.ID] = op.Todo.Clone()
			s.ids = append(s.ids, op.Todo.ID)
		case lifecycle.DeleteByID:
			delete(s.storage, op.ID)
			for ind, val := range s.ids {
				if val == op.ID {
					s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
					break
				}
			}
		}
	}

	return nil
}
