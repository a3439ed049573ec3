package dto

import (
	"time"

	dom "github.com/jtaylorisbell/lakebase-todo-app/internal/domain"
)

type CreateTodoRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=500"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Priority    string  `json:"priority" binding:"omitempty,oneof=low medium high"`
}

type UpdateTodoRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=500"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Completed   *bool   `json:"completed"`
	Priority    *string `json:"priority" binding:"omitempty,oneof=low medium high"`
}

type TodoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	Priority    string    `json:"priority"`
	UserEmail   *string   `json:"user_email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TodoListResponse struct {
	Todos []TodoResponse `json:"todos"`
	Total int            `json:"total"`
}

type TodoStatsResponse struct {
	Total        int64 `json:"total"`
	Completed    int64 `json:"completed"`
	Pending      int64 `json:"pending"`
	HighPriority int64 `json:"high_priority"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// FromTodo converts a domain todo to its wire shape.
func FromTodo(t dom.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		UserEmail:   t.UserEmail,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// FromTodos converts a list of domain todos; never returns nil.
func FromTodos(list []dom.Todo) []TodoResponse {
	out := make([]TodoResponse, len(list))
	for i := range list {
		out[i] = FromTodo(list[i])
	}
	return out
}
