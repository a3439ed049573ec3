package domain

import "time"

// Priority is the ordinal importance tag of a todo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Domain entity: the single persisted task record.
// Does not depend on Gin, Postgres or Redis.
type Todo struct {
	ID          string
	Title       string
	Description *string
	Completed   bool
	Priority    Priority
	UserEmail   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TodoPatch carries a partial update; nil fields are left untouched.
type TodoPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *Priority
}

// Empty reports whether the patch changes nothing.
func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil && p.Priority == nil
}

// TodoFilter selects which todos a list query returns.
type TodoFilter struct {
	// Completed filters by completion state; nil returns all.
	Completed *bool
	// UserEmail scopes the query to one creator; nil returns everyone's.
	UserEmail *string
	// Limit caps the result size; 0 means the repository default.
	Limit int
}

// Stats is the read-time aggregate over todos in scope.
type Stats struct {
	Total        int64
	Completed    int64
	Pending      int64
	HighPriority int64
}
