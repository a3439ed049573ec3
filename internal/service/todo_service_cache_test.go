package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtaylorisbell/lakebase-todo-app/internal/cache"
	dom "github.com/jtaylorisbell/lakebase-todo-app/internal/domain"
	"github.com/jtaylorisbell/lakebase-todo-app/internal/repo"
)

// countingRepo wraps the memory repo to observe how often List hits it.
type countingRepo struct {
	*repo.MemoryTodoRepo
	listCalls int
}

func (c *countingRepo) List(ctx context.Context, f dom.TodoFilter) ([]dom.Todo, error) {
	c.listCalls++
	return c.MemoryTodoRepo.List(ctx, f)
}

func newCachedService(t *testing.T) (*TodoService, *countingRepo) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := &countingRepo{MemoryTodoRepo: repo.NewMemoryTodoRepo()}
	return NewTodoService(r, cache.NewTodoCache(rdb, time.Minute)), r
}

func TestListServedFromCache(t *testing.T) {
	svc, r := newCachedService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, dom.CurrentUser{}, "cached", nil, "")
	require.NoError(t, err)

	first, err := svc.List(ctx, dom.TodoFilter{})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, r.listCalls)

	second, err := svc.List(ctx, dom.TodoFilter{})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, r.listCalls, "second list should come from cache")
}

func TestMutationInvalidatesCache(t *testing.T) {
	svc, r := newCachedService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, dom.CurrentUser{}, "first", nil, "")
	require.NoError(t, err)

	_, err = svc.List(ctx, dom.TodoFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, r.listCalls)

	// Each mutation clears every cached list, so the next read sees the
	// latest committed data.
	_, err = svc.Toggle(ctx, todo.ID)
	require.NoError(t, err)

	list, err := svc.List(ctx, dom.TodoFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Completed)
	assert.Equal(t, 2, r.listCalls)

	require.NoError(t, svc.Delete(ctx, todo.ID))

	list, err = svc.List(ctx, dom.TodoFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 3, r.listCalls)
}
