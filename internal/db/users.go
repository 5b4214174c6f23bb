package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// User is a stored account, including its password hash.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Phone        string
	AvatarID     string
	PasswordHash string
	PasswordSet  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const userColumns = `id, name, email, phone, avatar_id, password_hash, password_set, created_at, updated_at`

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts an account without a password and returns its ID.
func (db *DB) CreateUser(ctx context.Context, name, email, phone, avatarID string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, phone, avatar_id) VALUES ($1, $2, $3, $4, $5)`,
		id, name, normalizeEmail(email), phone, avatarID,
	)
	if err != nil {
		return uuid.Nil, eris.Wrap(err, "failed to create user")
	}
	return id, nil
}

func (db *DB) getUserWhere(ctx context.Context, where string, arg any) (*User, error) {
	var u User
	err := db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.AvatarID,
		&u.PasswordHash, &u.PasswordSet, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to get user")
	}
	return &u, nil
}

// GetUser returns the user with id, or nil if none exists.
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return db.getUserWhere(ctx, "id = $1", id)
}

// GetUserByEmail returns the user with email (case-insensitive), or nil if none exists.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return db.getUserWhere(ctx, "email = $1", normalizeEmail(email))
}

// CheckEmailExists reports whether an account uses email.
func (db *DB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, normalizeEmail(email),
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrap(err, "failed to check email")
	}
	return exists, nil
}

// UpdatePassword stores a new password hash and marks the password as set.
func (db *DB) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, password_set = TRUE, updated_at = now() WHERE id = $2`,
		passwordHash, id,
	)
	if err != nil {
		return eris.Wrap(err, "failed to update password")
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "user %s", id)
	}
	return nil
}

// DeleteUser removes an account; saved profiles and history cascade.
func (db *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return eris.Wrap(err, "failed to delete user")
	}
	return nil
}
