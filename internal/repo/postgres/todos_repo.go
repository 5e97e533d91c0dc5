package postgres

import (
	"context"
	"errors"

	"github.com/chocobaby727/taskhub/internal/domain/todo"
	"github.com/chocobaby727/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const todoColumns = `id, user_id, title, description, priority, complete, created_at, updated_at`

type TodosRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTodosRepo(pool *pgxpool.Pool, prom *observability.Prom) *TodosRepo {
	return &TodosRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *TodosRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanTodo(row pgx.Row, t *todo.Todo) error {
	return row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Complete,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}

func (r *TodosRepo) Create(ctx context.Context, userID int64, req todo.CreateTodoRequest) (todo.Todo, error) {
	var t todo.Todo

	err := r.observe("todos.create", func() error {
		return scanTodo(r.pool.QueryRow(ctx,
			`INSERT INTO todos (user_id, title, description, priority, complete, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			RETURNING `+todoColumns,
			userID, req.Title, req.Description, req.Priority, req.Complete,
		), &t)
	})

	if err != nil {
		return todo.Todo{}, err
	}

	return t, nil
}

// ListForUser returns the caller's todos in creation order (id ascending).
func (r *TodosRepo) ListForUser(ctx context.Context, userID int64) ([]todo.Todo, error) {
	var out []todo.Todo

	err := r.observe("todos.list_for_user", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+todoColumns+` FROM todos WHERE user_id = $1 ORDER BY id ASC`,
			userID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]todo.Todo, 0)

		for rows.Next() {
			var t todo.Todo

			if err := scanTodo(rows, &t); err != nil {
				return err
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// GetByID is the ownership-scoped lookup: a todo owned by someone else is
// indistinguishable from a missing one.
func (r *TodosRepo) GetByID(ctx context.Context, id, userID int64) (todo.Todo, error) {
	var t todo.Todo

	err := r.observe("todos.get_by_id", func() error {
		return scanTodo(r.pool.QueryRow(ctx,
			`SELECT `+todoColumns+` FROM todos WHERE id = $1 AND user_id = $2`,
			id, userID,
		), &t)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todo.Todo{}, todo.ErrNotFound
		}

		return todo.Todo{}, err
	}

	return t, nil
}

// Update overwrites every mutable field and refreshes updated_at. The same
// ownership predicate as GetByID keeps foreign rows untouchable.
func (r *TodosRepo) Update(ctx context.Context, id, userID int64, req todo.UpdateTodoRequest) (todo.Todo, error) {
	var t todo.Todo

	err := r.observe("todos.update", func() error {
		return scanTodo(r.pool.QueryRow(ctx,
			`UPDATE todos
				SET title = $3,
					description = $4,
					priority = $5,
					complete = $6,
					updated_at = NOW()
			WHERE id = $1 AND user_id = $2
			RETURNING `+todoColumns,
			id, userID, req.Title, req.Description, req.Priority, req.Complete,
		), &t)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todo.Todo{}, todo.ErrNotFound
		}

		return todo.Todo{}, err
	}

	return t, nil
}

func (r *TodosRepo) Delete(ctx context.Context, id, userID int64) error {
	return r.observe("todos.delete", func() error {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM todos WHERE id = $1 AND user_id = $2`,
			id, userID,
		)

		if err != nil {
			return err
		}

		// repeated deletes land here, so the failure is idempotent
		if tag.RowsAffected() == 0 {
			return todo.ErrNotFound
		}

		return nil
	})
}

// ListAll returns every todo across every owner. Authorization is the
// caller's responsibility.
func (r *TodosRepo) ListAll(ctx context.Context) ([]todo.Todo, error) {
	var out []todo.Todo

	err := r.observe("todos.list_all", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+todoColumns+` FROM todos ORDER BY id ASC`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]todo.Todo, 0)

		for rows.Next() {
			var t todo.Todo

			if err := scanTodo(rows, &t); err != nil {
				return err
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
