package lifecycle

import (
	"context"
	"fmt"
	"time"

	"todoLifecycle/internal/logger"
	"todoLifecycle/internal/models/todo"

	"go.uber.org/zap"
)

// шлюз к хранилищу: снимок на чтение и атомарный пакет на запись
type TodoRepository interface {
	Snapshot(ctx context.Context) ([]*todo.Todo, error)
	SubmitBatch(ctx context.Context, batch Batch) error
}

type State string

const (
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Result - итог одного прогона
type Result struct {
	State   State
	Updated int
	Created int
	Deleted int
	Err     error
}

type Runner struct {
	repo            TodoRepository
	expireAfterDays int
	purgeAfterDays  int
	resetAddDays    int
}

func NewRunner(repo TodoRepository, expireAfterDays, purgeAfterDays, resetAddDays int) *Runner {
	if expireAfterDays <= 0 {
		expireAfterDays = 7
	}
	if purgeAfterDays <= 0 {
		purgeAfterDays = 7
	}
	if resetAddDays <= 0 {
		resetAddDays = 3
	}
	return &Runner{
		repo:            repo,
		expireAfterDays: expireAfterDays,
		purgeAfterDays:  purgeAfterDays,
		resetAddDays:    resetAddDays,
	}
}

func (r *Runner) Run(ctx context.Context) Result {
	return r.RunAt(ctx, time.Now())
}

// RunAt выполняет один прогон от единого момента now:
// снимок -> классификация -> преемники -> сведение -> атомарная запись.
// До шага записи состояние хранилища не меняется.
func (r *Runner) RunAt(ctx context.Context, now time.Time) Result {
	start := time.Now()

	snapshot, err := r.repo.Snapshot(ctx)
	if err != nil {
		logger.Error("Service: Не удалось прочитать снимок", err)
		return Result{State: StateFailed, Err: fmt.Errorf("чтение снимка: %w", err)}
	}

	decisions := Classify(snapshot, now, r.expireAfterDays, r.purgeAfterDays)

	updates := make([]UpdateStatus, 0, len(decisions.Expire))
	creates := []CreateIfAbsent{}
	for _, t := range decisions.Expire {
		updates = append(updates, UpdateStatus{ID: t.ID, NewStatus: todo.StatusExpired})
		if successor := CarryOver(t, now, r.resetAddDays); successor != nil {
			creates = append(creates, CreateIfAbsent{Todo: successor})
		}
	}

	deletes := make([]DeleteByID, 0, len(decisions.Purge))
	for _, t := range decisions.Purge {
		deletes = append(deletes, DeleteByID{ID: t.ID})
	}

	batch := Reconcile(updates, creates, deletes)
	if len(batch) == 0 {
		logger.Info("Service: Нет подходящих записей, запись не выполняется",
			zap.Int("checked", len(snapshot)),
			zap.Duration("ms", time.Since(start)))
		return Result{State: StateCompleted}
	}

	if err := r.repo.SubmitBatch(ctx, batch); err != nil {
		logger.Error("Service: Пакет отклонён хранилищем", err,
			zap.Int("operations", len(batch)))
		return Result{State: StateFailed, Err: fmt.Errorf("запись пакета: %w", err)}
	}

	result := Result{
		State:   StateCompleted,
		Updated: len(batch) - len(creates) - len(deletes),
		Created: len(creates),
		Deleted: len(deletes),
	}

	logger.Info("Service: Прогон завершён",
		zap.Int("checked", len(snapshot)),
		zap.Int("updated", result.Updated),
		zap.Int("created", result.Created),
		zap.Int("deleted", result.Deleted),
		zap.Duration("ms", time.Since(start)))

	return result
}
