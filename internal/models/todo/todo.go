package todo

import (
	"time"

	"github.com/google/uuid"
)

type Status int

const (
	StatusActive  Status = 0
	StatusExpired Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// один пункт чек-листа внутри комментария
type ContentItem struct {
	Complete bool   `json:"complete"`
	Content  string `json:"content"`
}

type Comment struct {
	Type        string        `json:"comment_type"`
	FreeComment string        `json:"free_comment"`
	ContentList []ContentItem `json:"content_list"`
}

// невыполненные пункты в исходном порядке
func (c Comment) IncompleteItems() []ContentItem {
	items := []ContentItem{}
	for _, item := range c.ContentList {
		if !item.Complete {
			items = append(items, item)
		}
	}
	return items
}

type Todo struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Status      Status    `json:"status" db:"status"`
	Title       string    `json:"title" db:"title"`
	Comment     Comment   `json:"comment" db:"comment"`
	URL         string    `json:"url" db:"url"`
	TargetAt    time.Time `json:"target_at" db:"target_at"`
	CarryOver   bool      `json:"carry_over" db:"carry_over"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	UpdatedUser string    `json:"updated_user" db:"updated_user"`
	Owner       string    `json:"owner,omitempty" db:"owner"`
}

// глубокая копия, чтобы снимок нельзя было испортить снаружи
func (t *Todo) Clone() *Todo {
	copied := *t
	if t.Comment.ContentList != nil {
		copied.Comment.ContentList = make([]ContentItem, len(t.Comment.ContentList))
		copy(copied.Comment.ContentList, t.Comment.ContentList)
	}
	return &copied
}
