package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"datajanitor/internal/platform/storage"
	"datajanitor/pkg/platform/sentinel"
)

// SQLStore persists users in the auth database. Queries are written with
// '?' placeholders and rebound through the dialect, so the same store
// serves the SQLite and PostgreSQL backends.
type SQLStore struct {
	db *storage.DB
}

// NewSQLStore constructs a store over an open database handle.
func NewSQLStore(db *storage.DB) *SQLStore {
	return &SQLStore{db: db}
}

const userColumns = "user_id, username, email, mobile, hashed_password, role, is_active, created_at"

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(&u.UserID, &u.Username, &u.Email, &u.Mobile,
		&u.HashedPassword, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLStore) ListByRole(ctx context.Context, role string) ([]*User, error) {
	q := s.db.Dialect().Rebind(fmt.Sprintf(
		"SELECT %s FROM users WHERE LOWER(role) = LOWER(?) ORDER BY created_at", userColumns))
	rows, err := s.db.Runner(ctx).QueryContext(ctx, q, role)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	q := s.db.Dialect().Rebind(fmt.Sprintf(
		"SELECT %s FROM users WHERE username = ? OR email = ? ORDER BY created_at LIMIT 1", userColumns))
	u, err := scanUser(s.db.Runner(ctx).QueryRowContext(ctx, q, username, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by username or email: %w", err)
	}
	return u, nil
}

func (s *SQLStore) Create(ctx context.Context, u *User) error {
	q := s.db.Dialect().Rebind(fmt.Sprintf(
		"INSERT INTO users (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", userColumns))
	_, err := s.db.Runner(ctx).ExecContext(ctx, q,
		u.UserID, u.Username, u.Email, u.Mobile, u.HashedPassword, u.Role, u.IsActive, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("create user %s: %w", u.Username, err)
	}
	return nil
}

func (s *SQLStore) Update(ctx context.Context, u *User) error {
	q := s.db.Dialect().Rebind(
		"UPDATE users SET user_id = ?, email = ?, role = ?, is_active = ? WHERE username = ?")
	res, err := s.db.Runner(ctx).ExecContext(ctx, q,
		u.UserID, u.Email, u.Role, u.IsActive, u.Username)
	if err != nil {
		return fmt.Errorf("update user %s: %w", u.Username, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update user %s: %w", u.Username, sentinel.ErrNotFound)
	}
	return nil
}

func (s *SQLStore) SweepRole(ctx context.Context, role string) (int64, error) {
	// Only rows that actually deviate are touched, keeping the sweep
	// idempotent in reported counts as well as effect.
	q := s.db.Dialect().Rebind(`UPDATE users SET role = ?, is_active = ?
WHERE LOWER(role) = LOWER(?) AND (role <> ? OR NOT is_active)`)
	res, err := s.db.Runner(ctx).ExecContext(ctx, q, role, true, role, role)
	if err != nil {
		return 0, fmt.Errorf("sweep role %s: %w", role, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
