package db

import (
	"context"
	"errors"
	"time"

	"github.com/chocobaby727/taskhub/internal/config"
	"github.com/chocobaby727/taskhub/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser creates the configured admin account if it does not exist
// yet. A no-op when admin credentials are not configured.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, cfg.AdminUsername).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO users (email, username, first_name, last_name, hashed_password, is_active, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`,
		cfg.AdminEmail, cfg.AdminUsername, cfg.AdminFirstName, cfg.AdminLastName, hash, true, cfg.AdminRole, now, now,
	)

	return err
}
