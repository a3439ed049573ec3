package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"

	"github.com/jtaylorisbell/lakebase-todo-app/internal/cache"
	dom "github.com/jtaylorisbell/lakebase-todo-app/internal/domain"
	"github.com/jtaylorisbell/lakebase-todo-app/internal/repo"
	"github.com/jtaylorisbell/lakebase-todo-app/internal/utils"
)

var (
	ErrNotFound    = errors.New("todo not found")
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("database unavailable")
)

type TodoService struct {
	repo  repo.TodoRepo
	cache *cache.TodoCache
	sf    singleflight.Group
}

// NewTodoService creates a TodoService. If c is nil, list caching is disabled.
func NewTodoService(r repo.TodoRepo, c *cache.TodoCache) *TodoService {
	return &TodoService{repo: r, cache: c}
}

// Create validates and persists a new todo. Priority defaults to medium,
// completed starts false, and the caller identity (if any) is recorded.
func (s *TodoService) Create(ctx context.Context, user dom.CurrentUser, title string, description *string, priority string) (dom.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return dom.Todo{}, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	p := dom.PriorityMedium
	if priority != "" {
		p = dom.Priority(priority)
		if !p.Valid() {
			return dom.Todo{}, fmt.Errorf("%w: priority must be low, medium or high", ErrValidation)
		}
	}

	t, err := s.repo.Create(ctx, dom.Todo{
		Title:       title,
		Description: description,
		Priority:    p,
		UserEmail:   user.EmailPtr(),
	})
	if err != nil {
		return dom.Todo{}, storeErr(err)
	}
	s.invalidateCache(ctx)
	return t, nil
}

// Get returns a single todo by id.
func (s *TodoService) Get(ctx context.Context, id string) (dom.Todo, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.Todo{}, storeErr(err)
	}
	return t, nil
}

// List returns todos matching the filter, newest first. Results go through
// the redis cache behind a singleflight group when caching is enabled.
func (s *TodoService) List(ctx context.Context, f dom.TodoFilter) ([]dom.Todo, error) {
	if s.cache == nil {
		list, err := s.repo.List(ctx, f)
		if err != nil {
			return nil, storeErr(err)
		}
		return list, nil
	}
	v, err, _ := s.sf.Do(cache.ListKey(f), func() (interface{}, error) {
		if list, err := s.cache.GetList(ctx, f); err == nil && list != nil {
			return list, nil
		}
		list, err := s.repo.List(ctx, f)
		if err != nil {
			return nil, err
		}
		_ = s.cache.SetList(ctx, f, list)
		return list, nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return v.([]dom.Todo), nil
}

// Update applies a partial update; nil fields are left untouched.
func (s *TodoService) Update(ctx context.Context, id string, title, description *string, completed *bool, priority *string) (dom.Todo, error) {
	patch := dom.TodoPatch{
		Description: description,
		Completed:   completed,
	}
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return dom.Todo{}, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		patch.Title = &trimmed
	}
	if priority != nil {
		p := dom.Priority(*priority)
		if !p.Valid() {
			return dom.Todo{}, fmt.Errorf("%w: priority must be low, medium or high", ErrValidation)
		}
		patch.Priority = &p
	}

	t, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return dom.Todo{}, storeErr(err)
	}
	s.invalidateCache(ctx)
	return t, nil
}

// Toggle flips the completed flag. Two calls return a todo to its original
// state; each call refreshes updated_at.
func (s *TodoService) Toggle(ctx context.Context, id string) (dom.Todo, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.Todo{}, storeErr(err)
	}
	flipped := !existing.Completed
	t, err := s.repo.Update(ctx, id, dom.TodoPatch{Completed: &flipped})
	if err != nil {
		return dom.Todo{}, storeErr(err)
	}
	s.invalidateCache(ctx)
	return t, nil
}

// Delete permanently removes a todo.
func (s *TodoService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr(err)
	}
	s.invalidateCache(ctx)
	return nil
}

// Stats computes the aggregate counts from current store state. Never
// cached: every call reflects the latest committed data.
func (s *TodoService) Stats(ctx context.Context, userEmail *string) (dom.Stats, error) {
	st, err := s.repo.Stats(ctx, userEmail)
	if err != nil {
		return dom.Stats{}, storeErr(err)
	}
	return st, nil
}

func (s *TodoService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateAll(ctx)
	}
}

// storeErr maps data-access failures onto the service error taxonomy.
func storeErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if utils.IsPGConnectionError(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
