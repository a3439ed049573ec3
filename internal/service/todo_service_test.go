package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/jtaylorisbell/lakebase-todo-app/internal/domain"
	"github.com/jtaylorisbell/lakebase-todo-app/internal/repo"
)

func newService(t *testing.T) (*TodoService, *repo.MemoryTodoRepo) {
	t.Helper()
	r := repo.NewMemoryTodoRepo()
	// Monotonic clock so every repo write gets a strictly later timestamp.
	base := time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC)
	tick := 0
	r.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	})
	return NewTodoService(r, nil), r
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreateDefaults(t *testing.T) {
	svc, _ := newService(t)

	todo, err := svc.Create(context.Background(), dom.CurrentUser{}, "buy milk", nil, "")
	require.NoError(t, err)

	assert.NotEmpty(t, todo.ID)
	assert.Equal(t, "buy milk", todo.Title)
	assert.False(t, todo.Completed)
	assert.Equal(t, dom.PriorityMedium, todo.Priority)
	assert.Nil(t, todo.UserEmail)
	assert.True(t, todo.CreatedAt.Equal(todo.UpdatedAt))
}

func TestCreateRecordsCallerEmail(t *testing.T) {
	svc, _ := newService(t)

	user := dom.CurrentUser{Email: "ada@example.com", Name: "Ada"}
	todo, err := svc.Create(context.Background(), user, "review patch", nil, "high")
	require.NoError(t, err)

	require.NotNil(t, todo.UserEmail)
	assert.Equal(t, "ada@example.com", *todo.UserEmail)
	assert.Equal(t, dom.PriorityHigh, todo.Priority)
}

func TestCreateEmptyTitle(t *testing.T) {
	svc, r := newService(t)

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := svc.Create(context.Background(), dom.CurrentUser{}, title, nil, "")
		assert.ErrorIs(t, err, ErrValidation, "title %q", title)
	}

	// Nothing was persisted by the failed creates.
	list, err := r.List(context.Background(), dom.TodoFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateInvalidPriority(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), dom.CurrentUser{}, "x", nil, "urgent")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Get(context.Background(), "1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFilterAndOrder(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, dom.CurrentUser{}, "first", nil, "")
	require.NoError(t, err)
	second, err := svc.Create(ctx, dom.CurrentUser{}, "second", nil, "")
	require.NoError(t, err)
	third, err := svc.Create(ctx, dom.CurrentUser{}, "third", nil, "")
	require.NoError(t, err)

	_, err = svc.Toggle(ctx, second.ID)
	require.NoError(t, err)

	all, err := svc.List(ctx, dom.TodoFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
	assert.Equal(t, first.ID, all[2].ID)

	done, err := svc.List(ctx, dom.TodoFilter{Completed: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, second.ID, done[0].ID)

	pending, err := svc.List(ctx, dom.TodoFilter{Completed: boolPtr(false)})
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestToggleTwiceRestoresState(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, dom.CurrentUser{}, "flip me", nil, "")
	require.NoError(t, err)
	require.False(t, todo.Completed)

	once, err := svc.Toggle(ctx, todo.ID)
	require.NoError(t, err)
	assert.True(t, once.Completed)
	assert.True(t, once.UpdatedAt.After(todo.UpdatedAt))

	twice, err := svc.Toggle(ctx, todo.ID)
	require.NoError(t, err)
	assert.False(t, twice.Completed)
	assert.True(t, twice.UpdatedAt.After(once.UpdatedAt))
}

func TestToggleNotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Toggle(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePartial(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, dom.CurrentUser{}, "original", strPtr("keep me"), "high")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, todo.ID, nil, nil, boolPtr(true), nil)
	require.NoError(t, err)

	assert.Equal(t, "original", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "keep me", *updated.Description)
	assert.Equal(t, dom.PriorityHigh, updated.Priority)
	assert.True(t, updated.Completed)
	assert.True(t, updated.UpdatedAt.After(todo.UpdatedAt))
}

func TestUpdateValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, dom.CurrentUser{}, "valid", nil, "")
	require.NoError(t, err)

	_, err = svc.Update(ctx, todo.ID, strPtr("  "), nil, nil, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(ctx, todo.ID, nil, nil, nil, strPtr("critical"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(ctx, "missing", strPtr("new title"), nil, nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteThenGet(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, dom.CurrentUser{}, "doomed", nil, "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, todo.ID))

	_, err = svc.Get(ctx, todo.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, todo.ID), ErrNotFound)
}

func TestStats(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, dom.CurrentUser{}, "a", nil, "high")
	require.NoError(t, err)
	_, err = svc.Create(ctx, dom.CurrentUser{}, "b", nil, "high")
	require.NoError(t, err)
	_, err = svc.Create(ctx, dom.CurrentUser{}, "c", nil, "low")
	require.NoError(t, err)

	_, err = svc.Toggle(ctx, a.ID)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, dom.Stats{Total: 3, Completed: 1, Pending: 2, HighPriority: 2}, stats)
}

func TestStatsScopedByUser(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	ada := dom.CurrentUser{Email: "ada@example.com"}
	_, err := svc.Create(ctx, ada, "mine", nil, "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, dom.CurrentUser{Email: "bob@example.com"}, "theirs", nil, "")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, ada.EmailPtr())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
}

type failingRepo struct {
	repo.TodoRepo
	err error
}

func (f failingRepo) GetByID(context.Context, string) (dom.Todo, error) {
	return dom.Todo{}, f.err
}

func TestStoreErrPassthrough(t *testing.T) {
	boom := errors.New("boom")
	svc := NewTodoService(failingRepo{err: boom}, nil)

	_, err := svc.Get(context.Background(), "any")
	assert.ErrorIs(t, err, boom)
}
