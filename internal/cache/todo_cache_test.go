package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/jtaylorisbell/lakebase-todo-app/internal/domain"
)

func newTestCache(t *testing.T) (*TodoCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewTodoCache(rdb, time.Minute), mr
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestListKeyDistinguishesFilters(t *testing.T) {
	keys := map[string]bool{}
	for _, f := range []dom.TodoFilter{
		{},
		{Completed: boolPtr(true)},
		{Completed: boolPtr(false)},
		{UserEmail: strPtr("ada@example.com")},
		{Limit: 50},
	} {
		keys[ListKey(f)] = true
	}
	assert.Len(t, keys, 5)
}

func TestGetListMiss(t *testing.T) {
	c, _ := newTestCache(t)

	list, err := c.GetList(context.Background(), dom.TodoFilter{})
	require.NoError(t, err)
	assert.Nil(t, list)
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	f := dom.TodoFilter{Completed: boolPtr(false)}
	todos := []dom.Todo{
		{ID: "a", Title: "first", Priority: dom.PriorityHigh, CreatedAt: time.Now().UTC().Truncate(time.Second)},
		{ID: "b", Title: "second", Priority: dom.PriorityLow, CreatedAt: time.Now().UTC().Truncate(time.Second)},
	}
	require.NoError(t, c.SetList(ctx, f, todos))

	got, err := c.GetList(ctx, f)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Title)
	assert.Equal(t, dom.PriorityHigh, got[0].Priority)

	// A different filter is still a miss.
	other, err := c.GetList(ctx, dom.TodoFilter{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestEmptyListIsNotAMiss(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetList(ctx, dom.TodoFilter{}, nil))

	got, err := c.GetList(ctx, dom.TodoFilter{})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestInvalidateAll(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetList(ctx, dom.TodoFilter{}, []dom.Todo{{ID: "a"}}))
	require.NoError(t, c.SetList(ctx, dom.TodoFilter{Completed: boolPtr(true)}, []dom.Todo{{ID: "b"}}))
	mr.Set("unrelated:key", "stays")

	require.NoError(t, c.InvalidateAll(ctx))

	got, err := c.GetList(ctx, dom.TodoFilter{})
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.True(t, mr.Exists("unrelated:key"))
}

func TestExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetList(ctx, dom.TodoFilter{}, []dom.Todo{{ID: "a"}}))
	mr.FastForward(2 * time.Minute)

	got, err := c.GetList(ctx, dom.TodoFilter{})
	require.NoError(t, err)
	assert.Nil(t, got)
}
