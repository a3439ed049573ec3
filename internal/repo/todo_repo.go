package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	dom "github.com/jtaylorisbell/lakebase-todo-app/internal/domain"
)

// DefaultListLimit caps list queries when the caller does not set one.
const DefaultListLimit = 100

// TodoRepo is the data-access boundary for todos. Missing rows surface as
// pgx.ErrNoRows from every implementation.
type TodoRepo interface {
	Create(ctx context.Context, t dom.Todo) (dom.Todo, error)
	GetByID(ctx context.Context, id string) (dom.Todo, error)
	List(ctx context.Context, f dom.TodoFilter) ([]dom.Todo, error)
	Update(ctx context.Context, id string, patch dom.TodoPatch) (dom.Todo, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, userEmail *string) (dom.Stats, error)
}

const todoColumns = "id, title, description, completed, priority, user_email, created_at, updated_at"

type PGTodoRepo struct {
	db *pgxpool.Pool
}

func NewPGTodoRepo(db *pgxpool.Pool) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

func (r *PGTodoRepo) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	query := `
		INSERT INTO todos (id, title, description, completed, priority, user_email)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + todoColumns
	var out dom.Todo
	err := r.db.QueryRow(ctx, query,
		uuid.NewString(), t.Title, t.Description, t.Completed, t.Priority, t.UserEmail,
	).Scan(
		&out.ID, &out.Title, &out.Description, &out.Completed, &out.Priority,
		&out.UserEmail, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *PGTodoRepo) GetByID(ctx context.Context, id string) (dom.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`
	var t dom.Todo
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed, &t.Priority,
		&t.UserEmail, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *PGTodoRepo) List(ctx context.Context, f dom.TodoFilter) ([]dom.Todo, error) {
	var conds []string
	var args []any
	if f.UserEmail != nil {
		args = append(args, *f.UserEmail)
		conds = append(conds, fmt.Sprintf("user_email = $%d", len(args)))
	}
	if f.Completed != nil {
		args = append(args, *f.Completed)
		conds = append(conds, fmt.Sprintf("completed = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT %s FROM todos %s
		ORDER BY created_at DESC
		LIMIT $%d`, todoColumns, where, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Todo
	for rows.Next() {
		var t dom.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.Priority,
			&t.UserEmail, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Update applies only the supplied patch fields in a single statement and
// refreshes updated_at. An empty patch degrades to a plain read.
func (r *PGTodoRepo) Update(ctx context.Context, id string, patch dom.TodoPatch) (dom.Todo, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Completed != nil {
		add("completed", *patch.Completed)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE todos SET %s
		WHERE id = $%d
		RETURNING %s`, strings.Join(sets, ", "), len(args), todoColumns)
	var t dom.Todo
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed, &t.Priority,
		&t.UserEmail, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *PGTodoRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGTodoRepo) Stats(ctx context.Context, userEmail *string) (dom.Stats, error) {
	where := ""
	var args []any
	if userEmail != nil {
		where = "WHERE user_email = $1"
		args = append(args, *userEmail)
	}
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE completed = true) AS completed,
			COUNT(*) FILTER (WHERE completed = false) AS pending,
			COUNT(*) FILTER (WHERE priority = 'high') AS high_priority
		FROM todos %s`, where)
	var s dom.Stats
	err := r.db.QueryRow(ctx, query, args...).Scan(&s.Total, &s.Completed, &s.Pending, &s.HighPriority)
	return s, err
}
