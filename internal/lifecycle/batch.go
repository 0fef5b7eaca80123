package lifecycle

import (
	"todoLifecycle/internal/models/todo"

	"github.com/google/uuid"
)

// Operation - одна операция записи в хранилище.
// Закрытый набор вариантов, шлюз разбирает их через type switch.
type Operation interface {
	isOperation()
}

// перевод существующей записи в новый статус,
// отметку updated_at проставляет шлюз в момент применения
type UpdateStatus struct {
	ID        uuid.UUID
	NewStatus todo.Status
}

// вставка с условием отсутствия id - защита от повторного прогона
type CreateIfAbsent struct {
	Todo *todo.Todo
}

type DeleteByID struct {
	ID uuid.UUID
}

func (UpdateStatus) isOperation()   {}
func (CreateIfAbsent) isOperation() {}
func (DeleteByID) isOperation()     {}

// Batch применяется хранилищем целиком или не применяется вовсе
type Batch []Operation
