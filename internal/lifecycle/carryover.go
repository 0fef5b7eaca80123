package lifecycle

import (
	"time"

	"todoLifecycle/internal/models/todo"

	"github.com/google/uuid"
)

// CarryOver строит преемника для просроченной записи или возвращает nil.
// Преемник наследует только невыполненные пункты чек-листа; если таких
// нет - преемник не создаётся, даже когда флаг carry_over взведён.
func CarryOver(t *todo.Todo, now time.Time, resetAddDays int) *todo.Todo {
	if !t.CarryOver {
		return nil
	}

	remaining := t.Comment.IncompleteItems()
	if len(remaining) == 0 {
		return nil
	}

	return &todo.Todo{
		ID:     uuid.New(),
		Status: t.Status, // на момент генерации запись ещё active
		Title:  t.Title,
		Comment: todo.Comment{
			Type:        t.Comment.Type,
			FreeComment: t.Comment.FreeComment,
			ContentList: remaining,
		},
		URL:         t.URL,
		TargetAt:    now.AddDate(0, 0, resetAddDays),
		CarryOver:   t.CarryOver,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   now,
		UpdatedUser: t.UpdatedUser,
		Owner:       "",
	}
}
