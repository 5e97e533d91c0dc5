package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/chocobaby727/taskhub/internal/domain/user"
	"github.com/chocobaby727/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, username, first_name, last_name, hashed_password, is_active, role, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create inserts the user and returns the stored row, so the caller sees
// exactly what was committed (ids and timestamps included).
func (r *UsersRepo) Create(ctx context.Context, req user.CreateUserRequest, passwordHash string) (user.User, error) {
	var u user.User

	err := r.observe("users.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO users (email, username, first_name, last_name, hashed_password, is_active, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6, NOW(), NOW())
			RETURNING `+userColumns,
			req.Email, req.Username, req.FirstName, req.LastName, passwordHash, req.Role,
		).Scan(
			&u.ID,
			&u.Email,
			&u.Username,
			&u.FirstName,
			&u.LastName,
			&u.PasswordHash,
			&u.IsActive,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		return user.User{}, mapUniqueViolation(err)
	}

	return u, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_username", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE username = $1`,
			username,
		).Scan(
			&u.ID,
			&u.Email,
			&u.Username,
			&u.FirstName,
			&u.LastName,
			&u.PasswordHash,
			&u.IsActive,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		).Scan(
			&u.ID,
			&u.Email,
			&u.Username,
			&u.FirstName,
			&u.LastName,
			&u.PasswordHash,
			&u.IsActive,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// UpdatePassword replaces the stored hash in place.
func (r *UsersRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.observe("users.update_password", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users SET hashed_password = $2, updated_at = NOW() WHERE id = $1`,
			id, passwordHash,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "username") {
			return user.ErrUsernameTaken
		}

		return user.ErrEmailTaken
	}

	return err
}
