package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	dom "github.com/jtaylorisbell/lakebase-todo-app/internal/domain"
)

const keyListPrefix = "todo:list:"

// TodoCache caches list query results in Redis, one key per filter.
// Stats and single-record reads are never cached.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

// ListKey builds the cache key for a filter. Exported for the service's
// singleflight grouping.
func ListKey(f dom.TodoFilter) string {
	completed := "all"
	if f.Completed != nil {
		completed = strconv.FormatBool(*f.Completed)
	}
	user := "-"
	if f.UserEmail != nil {
		user = *f.UserEmail
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	return keyListPrefix + completed + ":" + strconv.Itoa(limit) + ":" + user
}

// GetList returns the cached result for this filter, or nil on miss.
func (c *TodoCache) GetList(ctx context.Context, f dom.TodoFilter) ([]dom.Todo, error) {
	b, err := c.rdb.Get(ctx, ListKey(f)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Todo
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []dom.Todo{}
	}
	return list, nil
}

// SetList stores the result for this filter.
func (c *TodoCache) SetList(ctx context.Context, f dom.TodoFilter, list []dom.Todo) error {
	if list == nil {
		list = []dom.Todo{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, ListKey(f), b, c.ttl).Err()
}

// InvalidateAll removes every cached list (called after every mutation).
func (c *TodoCache) InvalidateAll(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, keyListPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
