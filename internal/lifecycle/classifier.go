package lifecycle

import (
	"time"

	"todoLifecycle/internal/models/todo"
)

// Decisions - результат разбора снимка: кого просрочить, кого удалить
type Decisions struct {
	Expire []*todo.Todo
	Purge  []*todo.Todo
}

// Classify разбирает снимок на кандидатов к просрочке и к удалению.
// Пороги считаются один раз от единого now, записи не изменяются.
func Classify(snapshot []*todo.Todo, now time.Time, expireAfterDays, purgeAfterDays int) Decisions {
	expireBefore := now.AddDate(0, 0, -expireAfterDays)
	purgeBefore := now.AddDate(0, 0, -purgeAfterDays)

	decisions := Decisions{}
	for _, t := range snapshot {
		switch t.Status {
		case todo.StatusActive:
			// target_at <= порог, граница включительно
			if !t.TargetAt.After(expireBefore) {
				decisions.Expire = append(decisions.Expire, t)
			}
		case todo.StatusExpired:
			// updated_at хранит момент перевода в expired
			if !t.UpdatedAt.After(purgeBefore) {
				decisions.Purge = append(decisions.Purge, t)
			}
		}
	}
	return decisions
}
