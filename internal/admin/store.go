package admin

import "context"

// Store is the persistence surface the ensure-admin service needs. The SQL
// implementation backs production; the in-memory one keeps service tests
// fast and deterministic.
type Store interface {
	// ListByRole returns all users whose role matches case-insensitively.
	ListByRole(ctx context.Context, role string) ([]*User, error)

	// FindByUsernameOrEmail returns the first user matching either value,
	// or sentinel.ErrNotFound.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)

	// Create inserts a new user.
	Create(ctx context.Context, u *User) error

	// Update rewrites the mutable fields of an existing user, keyed by
	// username.
	Update(ctx context.Context, u *User) error

	// SweepRole sets the canonical role casing and forces the active flag
	// for every user whose role matches case-insensitively, returning how
	// many rows actually changed.
	SweepRole(ctx context.Context, role string) (int64, error)
}
