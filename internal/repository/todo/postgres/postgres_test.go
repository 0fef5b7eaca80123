package postgres_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"todoLifecycle/internal/lifecycle"
	"todoLifecycle/internal/logger"
	"todoLifecycle/internal/models/todo"
	"todoLifecycle/internal/repository"
	"todoLifecycle/internal/repository/todo/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS todos (
	id UUID PRIMARY KEY,
	status SMALLINT NOT NULL DEFAULT 0,
	title TEXT NOT NULL,
	comment JSONB NOT NULL DEFAULT '{}'::jsonb,
	url TEXT NOT NULL DEFAULT '',
	target_at TIMESTAMPTZ NOT NULL,
	carry_over BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_user TEXT NOT NULL DEFAULT '',
	owner TEXT NOT NULL DEFAULT ''
)`

// PostgresTestSuite для интеграционных тестов с PostgreSQL
type PostgresTestSuite struct {
	suite.Suite
	container testcontainers.Container
	storage   *postgres.Storage
	pool      *pgxpool.Pool
	ctx       context.Context
}

// SetupSuite запускается один раз перед всеми тестами
func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()
	logger.Init(true)

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)

	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb", host, port.Port())

	s.storage, err = postgres.New(s.ctx, connString)
	require.NoError(s.T(), err)

	// отдельный пул для подготовки схемы и проверок
	s.pool, err = pgxpool.New(s.ctx, connString)
	require.NoError(s.T(), err)

	_, err = s.pool.Exec(s.ctx, createTableSQL)
	require.NoError(s.T(), err)
}

// TearDownSuite очищает после всех тестов
func (s *PostgresTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

// SetupTest очищает таблицу перед каждым тестом
func (s *PostgresTestSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `TRUNCATE todos`)
	require.NoError(s.T(), err)
}

func (s *PostgresTestSuite) insertTodo(t *todo.Todo) {
	comment, err := json.Marshal(t.Comment)
	require.NoError(s.T(), err)

	_, err = s.pool.Exec(s.ctx,
		`INSERT INTO todos
			(id, status, title, comment, url, target_at, carry_over, created_at, updated_at, updated_user, owner)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Status, t.Title, comment, t.URL, t.TargetAt, t.CarryOver,
		t.CreatedAt, t.UpdatedAt, t.UpdatedUser, t.Owner)
	require.NoError(s.T(), err)
}

func testTodo() *todo.Todo {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &todo.Todo{
		ID:     uuid.New(),
		Status: todo.StatusActive,
		Title:  "Test Todo",
		Comment: todo.Comment{
			Type:        "checklist",
			FreeComment: "заметка",
			ContentList: []todo.ContentItem{
				{Complete: true, Content: "готово"},
				{Complete: false, Content: "осталось"},
			},
		},
		URL:         "https://example.com",
		TargetAt:    now.AddDate(0, 0, 3),
		CarryOver:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
		UpdatedUser: "user-1",
		Owner:       "owner-1",
	}
}

func (s *PostgresTestSuite) TestSnapshotEmpty() {
	snapshot, err := s.storage.Snapshot(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), snapshot)
}

func (s *PostgresTestSuite) TestSnapshotRoundTrip() {
	original := testTodo()
	s.insertTodo(original)

	snapshot, err := s.storage.Snapshot(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), snapshot, 1)

	got := snapshot[0]
	assert.Equal(s.T(), original.ID, got.ID)
	assert.Equal(s.T(), original.Status, got.Status)
	assert.Equal(s.T(), original.Title, got.Title)
	assert.Equal(s.T(), original.Comment, got.Comment)
	assert.Equal(s.T(), original.URL, got.URL)
	assert.True(s.T(), original.TargetAt.Equal(got.TargetAt))
	assert.Equal(s.T(), original.CarryOver, got.CarryOver)
	assert.Equal(s.T(), original.UpdatedUser, got.UpdatedUser)
	assert.Equal(s.T(), original.Owner, got.Owner)
}

func (s *PostgresTestSuite) TestSubmitBatchCreate() {
	successor := testTodo()

	err := s.storage.SubmitBatch(s.ctx, lifecycle.Batch{
		lifecycle.CreateIfAbsent{Todo: successor},
	})
	require.NoError(s.T(), err)

	snapshot, err := s.storage.Snapshot(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), snapshot, 1)
	assert.Equal(s.T(), successor.ID, snapshot[0].ID)
	assert.Equal(s.T(), successor.Comment, snapshot[0].Comment)
}

func (s *PostgresTestSuite) TestSubmitBatchUpdateStampsUpdatedAt() {
	original := testTodo()
	original.UpdatedAt = time.Now().UTC().AddDate(0, 0, -5)
	s.insertTodo(original)

	before := time.Now().Add(-time.Minute)

	err := s.storage.SubmitBatch(s.ctx, lifecycle.Batch{
		lifecycle.UpdateStatus{ID: original.ID, NewStatus: todo.StatusExpired},
	})
	require.NoError(s.T(), err)

	snapshot, err := s.storage.Snapshot(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), snapshot, 1)
	assert.Equal(s.T(), todo.StatusExpired, snapshot[0].Status)
	assert.True(s.T(), snapshot[0].UpdatedAt.After(before))
}

func (s *PostgresTestSuite) TestSubmitBatchDelete() {
	original := testTodo()
	s.insertTodo(original)

	err := s.storage.SubmitBatch(s.ctx, lifecycle.Batch{
		lifecycle.DeleteByID{ID: original.ID},
	})
	require.NoError(s.T(), err)

	snapshot, err := s.storage.Snapshot(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), snapshot)
}

// конфликт id при вставке откатывает весь пакет, обновление включительно
func (s *PostgresTestSuite) TestSubmitBatchAtomicRollback() {
	existing := testTodo()
	s.insertTodo(existing)

	duplicate := testTodo()
	duplicate.ID = existing.ID

	err := s.storage.SubmitBatch(s.ctx, lifecycle.Batch{
		lifecycle.UpdateStatus{ID: existing.ID, NewStatus: todo.StatusExpired},
		lifecycle.CreateIfAbsent{Todo: duplicate},
	})
	require.ErrorIs(s.T(), err, repository.ErrAlreadyExists)

	var status todo.Status
	queryErr := s.pool.QueryRow(s.ctx,
		`SELECT status FROM todos WHERE id = $1`, existing.ID).Scan(&status)
	require.NoError(s.T(), queryErr)
	assert.Equal(s.T(), todo.StatusActive, status)
}

func (s *PostgresTestSuite) TestSubmitBatchUpdateMissing() {
	err := s.storage.SubmitBatch(s.ctx, lifecycle.Batch{
		lifecycle.UpdateStatus{ID: uuid.New(), NewStatus: todo.StatusExpired},
	})
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestSnapshotNoTable() {
	_, err := s.pool.Exec(s.ctx, `DROP TABLE todos`)
	require.NoError(s.T(), err)

	_, err = s.storage.Snapshot(s.ctx)
	assert.ErrorIs(s.T(), err, repository.ErrNoData)

	// возвращаем таблицу остальным тестам
	_, err = s.pool.Exec(s.ctx, createTableSQL)
	require.NoError(s.T(), err)
}

func TestPostgresTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("интеграционный тест, требуется docker")
	}
	suite.Run(t, new(PostgresTestSuite))
}
