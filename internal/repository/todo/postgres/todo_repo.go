package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"todoLifecycle/internal/lifecycle"
	"todoLifecycle/internal/logger"
	"todoLifecycle/internal/models/todo"
	repo "todoLifecycle/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SQLSTATE: таблица не существует
const undefinedTableCode = "42P01"

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка разбора строки подключения", err)
		return nil, fmt.Errorf("разбор строки подключения: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

// Snapshot читает все записи, порядок фиксирован по created_at и id
func (s *Storage) Snapshot(ctx context.Context) ([]*todo.Todo, error) {
	start := time.Now()

	query := `SELECT
				id,
				status,
				title,
				comment,
				url,
				target_at,
				carry_over,
				created_at,
				updated_at,
				updated_user,
				owner
				FROM todos
				ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == undefinedTableCode {
			logger.Error("Repository: Таблица todos отсутствует", err)
			return nil, repo.ErrNoData
		}
		logger.Error("Repository: Не удалось прочитать снимок", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("чтение снимка: %w", err)
	}
	defer rows.Close()

	todos := []*todo.Todo{}
	for rows.Next() {
		t := &todo.Todo{}
		var comment []byte

		err := rows.Scan(
			&t.ID,
			&t.Status,
			&t.Title,
			&comment,
			&t.URL,
			&t.TargetAt,
			&t.CarryOver,
			&t.CreatedAt,
			&t.UpdatedAt,
			&t.UpdatedUser,
			&t.Owner,
		)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования записи", err)
			return nil, fmt.Errorf("сканирование записи: %w", err)
		}

		if err := json.Unmarshal(comment, &t.Comment); err != nil {
			logger.Error("Repository: Ошибка разбора комментария", err,
				zap.String("todo_id", t.ID.String()))
			return nil, fmt.Errorf("разбор комментария: %w", err)
		}

		todos = append(todos, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return todos, nil
}

// SubmitBatch выполняет пакет в одной транзакции. Нарушение любого
// предусловия откатывает весь пакет.
func (s *Storage) SubmitBatch(ctx context.Context, batch lifecycle.Batch) error {
	start := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось открыть транзакцию", err)
		return fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, op := range batch {
		switch op := op.(type) {
		case lifecycle.UpdateStatus:
			tag, err := tx.Exec(ctx,
				`UPDATE todos SET status = $1, updated_at = NOW() WHERE id = $2`,
				op.NewStatus, op.ID)
			if err != nil {
				logger.Error("Repository: Не удалось обновить статус", err,
					zap.String("todo_id", op.ID.String()))
				return fmt.Errorf("обновление статуса: %w", err)
			}
			if tag.RowsAffected() == 0 {
				logger.Warn("Repository: Запись для обновления отсутствует",
					zap.String("todo_id", op.ID.String()))
				return fmt.Errorf("обновление %s: %w", op.ID, repo.ErrNotFound)
			}

		case lifecycle.CreateIfAbsent:
			comment, err := json.Marshal(op.Todo.Comment)
			if err != nil {
				return fmt.Errorf("сериализация комментария: %w", err)
			}

			tag, err := tx.Exec(ctx,
				`INSERT INTO todos
					(id, status, title, comment, url, target_at, carry_over, created_at, updated_at, updated_user, owner)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
					ON CONFLICT (id) DO NOTHING`,
				op.Todo.ID,
				op.Todo.Status,
				op.Todo.Title,
				comment,
				op.Todo.URL,
				op.Todo.TargetAt,
				op.Todo.CarryOver,
				op.Todo.CreatedAt,
				op.Todo.UpdatedAt,
				op.Todo.UpdatedUser,
				op.Todo.Owner)
			if err != nil {
				logger.Error("Repository: Не удалось вставить запись", err,
					zap.String("todo_id", op.Todo.ID.String()))
				return fmt.Errorf("вставка записи: %w", err)
			}
			if tag.RowsAffected() == 0 {
				logger.Warn("Repository: Конфликт id при вставке",
					zap.String("todo_id", op.Todo.ID.String()))
				return fmt.Errorf("вставка %s: %w", op.Todo.ID, repo.ErrAlreadyExists)
			}

		case lifecycle.DeleteByID:
			if _, err := tx.Exec(ctx, `DELETE FROM todos WHERE id = $1`, op.ID); err != nil {
				logger.Error("Repository: Не удалось удалить запись", err,
					zap.String("todo_id", op.ID.String()))
				return fmt.Errorf("удаление записи: %w", err)
			}

		default:
			return fmt.Errorf("неизвестная операция %T", op)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err)
		return fmt.Errorf("фиксация транзакции: %w", err)
	}

	if time.Since(start) > time.Millisecond*50+time.Millisecond*10*time.Duration(len(batch)) {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}

	return nil
}

func (s *Storage) Migrate(ctx context.Context) error {
	logger.Info("Repository: Применение миграций")

	initUp, err := os.ReadFile("internal/migrations/001_init.up.sql")
	if err != nil {
		logger.Error("Repository: Не удалось прочитать 001_init.up.sql", err)
		return err
	}

	indexesUp, err := os.ReadFile("internal/migrations/002_indexes.up.sql")
	if err != nil {
		logger.Error("Repository: Не удалось прочитать 002_indexes.up.sql", err)
		return err
	}

	if _, err = s.pool.Exec(ctx, string(initUp)); err != nil {
		logger.Error("Repository: Не удалось применить 001_init", err)
		return err
	}

	if _, err = s.pool.Exec(ctx, string(indexesUp)); err != nil {
		logger.Error("Repository: Не удалось применить 002_indexes", err)
		return err
	}

	logger.Info("Repository: Миграции применены")
	return nil
}

func (s *Storage) Down(ctx context.Context) error {
	logger.Info("Repository: Откат миграций")

	indexesDown, err := os.ReadFile("internal/migrations/002_indexes.down.sql")
	if err != nil {
		logger.Error("Repository: Не удалось прочитать 002_indexes.down.sql", err)
		return err
	}

	initDown, err := os.ReadFile("internal/migrations/001_init.down.sql")
	if err != nil {
		logger.Error("Repository: Не удалось прочитать 001_init.down.sql", err)
		return err
	}

	if _, err = s.pool.Exec(ctx, string(indexesDown)); err != nil {
		logger.Error("Repository: Не удалось откатить 002_indexes", err)
		return err
	}

	if _, err = s.pool.Exec(ctx, string(initDown)); err != nil {
		logger.Error("Repository: Не удалось откатить 001_init", err)
		return err
	}

	logger.Info("Repository: Миграции откатаны")
	return nil
}
