package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jonathan/career-path/internal/types"
)

// User is an account row including its password hash.
type User struct {
	types.User
	PasswordHash string
}

const userColumns = `id, name, email, password_hash, is_active, profile_picture, last_login, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u         User
		picture   sql.NullString
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsActive,
		&picture, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if picture.Valid {
		p := picture.String
		u.ProfilePicture = &p
	}
	u.LastLogin = nullTime(lastLogin)
	return &u, nil
}

// CreateUserWithStats inserts an account and its empty stats row in one
// transaction.
func (s *Store) CreateUserWithStats(ctx context.Context, name, email, passwordHash string) (*User, error) {
	var user *User
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		u, err := scanUser(tx.QueryRowContext(ctx,
			`INSERT INTO users (name, email, password_hash)
			 VALUES ($1, $2, $3)
			 RETURNING `+userColumns,
			name, email, passwordHash,
		))
		if err != nil {
			if isUniqueViolation(err) {
				return ErrEmailAlreadyExists
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_stats (user_id) VALUES ($1)`, u.ID,
		); err != nil {
			return fmt.Errorf("failed to create user stats: %w", err)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID returns the account with id, or ErrNotFound.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns the account registered with email, or ErrNotFound.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// UpdateLastLogin stamps the account's last successful login.
func (s *Store) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// DeleteUser removes the account; dependent rows go with it via ON DELETE CASCADE.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}
