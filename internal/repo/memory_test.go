package repo

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/jtaylorisbell/lakebase-todo-app/internal/domain"
)

func newClockedRepo() *MemoryTodoRepo {
	r := NewMemoryTodoRepo()
	base := time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC)
	tick := 0
	r.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})
	return r
}

func TestMemoryCreateAssignsIDAndTimestamps(t *testing.T) {
	r := newClockedRepo()

	todo, err := r.Create(context.Background(), dom.Todo{Title: "t", Priority: dom.PriorityMedium})
	require.NoError(t, err)
	assert.NotEmpty(t, todo.ID)
	assert.True(t, todo.CreatedAt.Equal(todo.UpdatedAt))
}

func TestMemoryMissingIDsReturnNoRows(t *testing.T) {
	r := newClockedRepo()
	ctx := context.Background()

	_, err := r.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	_, err = r.Update(ctx, "nope", dom.TodoPatch{})
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	assert.ErrorIs(t, r.Delete(ctx, "nope"), pgx.ErrNoRows)
}

func TestMemoryListOrderAndLimit(t *testing.T) {
	r := newClockedRepo()
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		todo, err := r.Create(ctx, dom.Todo{Title: title, Priority: dom.PriorityMedium})
		require.NoError(t, err)
		ids = append(ids, todo.ID)
	}

	list, err := r.List(ctx, dom.TodoFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[0], list[2].ID)

	list, err = r.List(ctx, dom.TodoFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestMemoryUpdateDoesNotTouchOtherFields(t *testing.T) {
	r := newClockedRepo()
	ctx := context.Background()

	desc := "details"
	todo, err := r.Create(ctx, dom.Todo{Title: "t", Description: &desc, Priority: dom.PriorityHigh})
	require.NoError(t, err)

	done := true
	updated, err := r.Update(ctx, todo.ID, dom.TodoPatch{Completed: &done})
	require.NoError(t, err)
	assert.Equal(t, "t", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "details", *updated.Description)
	assert.Equal(t, dom.PriorityHigh, updated.Priority)
	assert.True(t, updated.Completed)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
}

func TestMemoryStats(t *testing.T) {
	r := newClockedRepo()
	ctx := context.Background()

	email := "ada@example.com"
	_, err := r.Create(ctx, dom.Todo{Title: "a", Priority: dom.PriorityHigh, UserEmail: &email})
	require.NoError(t, err)
	b, err := r.Create(ctx, dom.Todo{Title: "b", Priority: dom.PriorityHigh})
	require.NoError(t, err)
	_, err = r.Create(ctx, dom.Todo{Title: "c", Priority: dom.PriorityLow})
	require.NoError(t, err)

	done := true
	_, err = r.Update(ctx, b.ID, dom.TodoPatch{Completed: &done})
	require.NoError(t, err)

	stats, err := r.Stats(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, dom.Stats{Total: 3, Completed: 1, Pending: 2, HighPriority: 2}, stats)

	scoped, err := r.Stats(ctx, &email)
	require.NoError(t, err)
	assert.Equal(t, int64(1), scoped.Total)
}
