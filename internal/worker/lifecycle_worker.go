package worker

import (
	"context"
	"time"

	"todoLifecycle/internal/lifecycle"
	"todoLifecycle/internal/logger"

	"go.uber.org/zap"
)

// LifecycleWorker запускает прогоны по расписанию. Прогоны идут строго
// последовательно, два одновременных прогона из одного воркера невозможны.
type LifecycleWorker struct {
	runner   *lifecycle.Runner
	interval time.Duration
}

func NewLifecycleWorker(runner *lifecycle.Runner, interval *time.Duration) *LifecycleWorker {
	var intervalToSet time.Duration
	if interval == nil || *interval <= 0 {
		intervalToSet = 24 * time.Hour
	} else {
		intervalToSet = *interval
	}

	return &LifecycleWorker{
		runner:   runner,
		interval: intervalToSet,
	}
}

func (w *LifecycleWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: Плановый прогон жизненного цикла", zap.Time("started_at", time.Now()))
			w.RunOnce(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Остановка плановых прогонов")
			return
		}
	}
}

// RunOnce выполняет один прогон и логирует итог.
// Неудачный прогон не повторяется, следующий тик разберёт те же записи,
// потому что при ошибке хранилище не изменилось.
func (w *LifecycleWorker) RunOnce(ctx context.Context) lifecycle.Result {
	result := w.runner.Run(ctx)
	if result.State == lifecycle.StateFailed {
		logger.Warn("Worker: Прогон завершился ошибкой", zap.Error(result.Err))
	}
	return result
}
