package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	dom "github.com/jtaylorisbell/lakebase-todo-app/internal/domain"
)

// MemoryTodoRepo is an in-memory TodoRepo used by tests and by local runs
// without a database. It mirrors PGTodoRepo semantics, including
// pgx.ErrNoRows for missing ids.
type MemoryTodoRepo struct {
	mu    sync.RWMutex
	todos map[string]dom.Todo

	// now is swappable so tests can control timestamps.
	now func() time.Time
}

func NewMemoryTodoRepo() *MemoryTodoRepo {
	return &MemoryTodoRepo{
		todos: make(map[string]dom.Todo),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Test hook.
func (r *MemoryTodoRepo) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *MemoryTodoRepo) Create(_ context.Context, t dom.Todo) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.todos[t.ID] = t
	return t, nil
}

func (r *MemoryTodoRepo) GetByID(_ context.Context, id string) (dom.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.todos[id]
	if !ok {
		return dom.Todo{}, pgx.ErrNoRows
	}
	return t, nil
}

func (r *MemoryTodoRepo) List(_ context.Context, f dom.TodoFilter) ([]dom.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []dom.Todo
	for _, t := range r.todos {
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		if f.UserEmail != nil && (t.UserEmail == nil || *t.UserEmail != *f.UserEmail) {
			continue
		}
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		// Stable order for records created within the same tick.
		return list[i].ID > list[j].ID
	})
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *MemoryTodoRepo) Update(_ context.Context, id string, patch dom.TodoPatch) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	if !ok {
		return dom.Todo{}, pgx.ErrNoRows
	}
	if patch.Empty() {
		return t, nil
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		d := *patch.Description
		t.Description = &d
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	t.UpdatedAt = r.now()
	r.todos[id] = t
	return t, nil
}

func (r *MemoryTodoRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.todos[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.todos, id)
	return nil
}

func (r *MemoryTodoRepo) Stats(_ context.Context, userEmail *string) (dom.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s dom.Stats
	for _, t := range r.todos {
		if userEmail != nil && (t.UserEmail == nil || *t.UserEmail != *userEmail) {
			continue
		}
		s.Total++
		if t.Completed {
			s.Completed++
		} else {
			s.Pending++
		}
		if t.Priority == dom.PriorityHigh {
			s.HighPriority++
		}
	}
	return s, nil
}
