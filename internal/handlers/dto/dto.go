package dto

import (
	"time"

	"todoLifecycle/internal/lifecycle"
	"todoLifecycle/internal/models/todo"

	"github.com/google/uuid"
)

type ContentItemResponse struct {
	Complete bool   `json:"complete"`
	Content  string `json:"content"`
}

type TodoResponse struct {
	ID          uuid.UUID             `json:"id"`
	Status      string                `json:"status"`
	Title       string                `json:"title"`
	FreeComment string                `json:"free_comment,omitempty"`
	ContentList []ContentItemResponse `json:"content_list"`
	URL         string                `json:"url,omitempty"`
	TargetAt    time.Time             `json:"target_at"`
	CarryOver   bool                  `json:"carry_over"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	Owner       string                `json:"owner,omitempty"`
	Overdue     bool                  `json:"overdue"`
}

type RunResponse struct {
	State   string `json:"state"`
	Updated int    `json:"updated"`
	Created int    `json:"created"`
	Deleted int    `json:"deleted"`
}

func FromTodo(t *todo.Todo) TodoResponse {
	items := make([]ContentItemResponse, len(t.Comment.ContentList))
	for i, item := range t.Comment.ContentList {
		items[i] = ContentItemResponse{Complete: item.Complete, Content: item.Content}
	}

	return TodoResponse{
		ID:          t.ID,
		Status:      t.Status.String(),
		Title:       t.Title,
		FreeComment: t.Comment.FreeComment,
		ContentList: items,
		URL:         t.URL,
		TargetAt:    t.TargetAt,
		CarryOver:   t.CarryOver,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Owner:       t.Owner,
		Overdue: t.Status == todo.StatusExpired ||
			(t.Status == todo.StatusActive && t.TargetAt.Before(time.Now())),
	}
}

func FromTodoList(todos []*todo.Todo) []TodoResponse {
	result := make([]TodoResponse, len(todos))
	for i, t := range todos {
		result[i] = FromTodo(t)
	}
	return result
}

func FromResult(res lifecycle.Result) RunResponse {
	return RunResponse{
		State:   string(res.State),
		Updated: res.Updated,
		Created: res.Created,
		Deleted: res.Deleted,
	}
}
