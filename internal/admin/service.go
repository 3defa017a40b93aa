// Package admin ensures the auth database always converges to a state with
// at least one active, canonically-cased super_admin account once
// credentials have ever been supplied. The whole operation is idempotent:
// re-running it after partial failures or manual edits is safe, never
// deletes a privileged account, and never creates more than one new
// account per invocation.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"datajanitor/internal/admin/secrets"
	"datajanitor/internal/platform/metrics"
	"datajanitor/pkg/platform/sentinel"
)

// Outcome classifies what EnsureAdmin did.
type Outcome string

const (
	// OutcomeCreated: a new privileged account was inserted.
	OutcomeCreated Outcome = "created"
	// OutcomeUpdated: an existing account was promoted or corrected.
	OutcomeUpdated Outcome = "updated"
	// OutcomeUnchanged: everything already satisfied the invariants.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeNoAdmin: no privileged account exists and no credentials were
	// supplied; tables are in place and the caller should re-run with
	// credentials. Informational, not an error.
	OutcomeNoAdmin Outcome = "no-admin"
)

// Result reports what EnsureAdmin converged to.
type Result struct {
	Outcome  Outcome
	Username string
	Swept    int64
}

// Service runs the admin-invariant pass.
type Service struct {
	store   Store
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs the ensure-admin service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureAdmin converges the users table to the privileged-account
// invariants. creds may be nil, in which case nothing is created and only
// the final sweep runs. See the package comment for the guarantees.
func (s *Service) EnsureAdmin(ctx context.Context, creds *Credentials) (Result, error) {
	res := Result{Outcome: OutcomeUnchanged}

	admins, err := s.store.ListByRole(ctx, RoleSuperAdmin)
	if err != nil {
		return res, err
	}

	switch {
	case len(admins) == 0 && creds == nil:
		s.log.Warn().Msg("no super_admin account exists and no credentials provided; re-run with credentials to create one")
		res.Outcome = OutcomeNoAdmin

	case len(admins) == 0:
		outcome, username, err := s.createOrPromote(ctx, creds)
		if err != nil {
			return res, err
		}
		res.Outcome = outcome
		res.Username = username

	default:
		s.log.Info().Int("count", len(admins)).Msg("existing super_admin accounts found, skipping creation")
		if creds != nil {
			updated, err := s.correctExisting(ctx, creds)
			if err != nil {
				return res, err
			}
			if updated {
				res.Outcome = OutcomeUpdated
				res.Username = creds.Username
			}
		}
	}

	// Unconditional final sweep: normalize role casing and force the
	// active flag for every privileged account. This is what makes the
	// whole operation safe to re-run after partial failures or manual
	// edits.
	swept, err := s.store.SweepRole(ctx, RoleSuperAdmin)
	if err != nil {
		return res, err
	}
	res.Swept = swept
	if swept > 0 {
		s.log.Info().Int64("accounts", swept).Msg("normalized super_admin accounts in final sweep")
		if s.metrics != nil {
			s.metrics.AdminsSwept.Add(float64(swept))
		}
		if res.Outcome == OutcomeUnchanged {
			res.Outcome = OutcomeUpdated
		}
	}
	return res, nil
}

// createOrPromote handles the no-privileged-account branch: promote a
// matching existing account in place, or insert a fresh one.
func (s *Service) createOrPromote(ctx context.Context, creds *Credentials) (Outcome, string, error) {
	existing, err := s.store.FindByUsernameOrEmail(ctx, creds.Username, creds.Email)
	switch {
	case err == nil:
		existing.Role = RoleSuperAdmin
		existing.IsActive = true
		if existing.UserID == "" {
			existing.UserID = uuid.NewString()
		}
		if err := s.store.Update(ctx, existing); err != nil {
			return OutcomeUnchanged, "", err
		}
		s.log.Info().Str("username", existing.Username).Msg("promoted existing account to super_admin")
		return OutcomeUpdated, existing.Username, nil

	case errors.Is(err, sentinel.ErrNotFound):
		hashed, err := secrets.Hash(creds.Password)
		if err != nil {
			return OutcomeUnchanged, "", fmt.Errorf("hash admin password: %w", err)
		}
		u := &User{
			UserID:         uuid.NewString(),
			Username:       creds.Username,
			Email:          creds.Email,
			HashedPassword: hashed,
			Role:           RoleSuperAdmin,
			IsActive:       true,
			CreatedAt:      time.Now().UTC(),
		}
		if err := s.store.Create(ctx, u); err != nil {
			return OutcomeUnchanged, "", err
		}
		s.log.Info().Str("username", u.Username).Str("user_id", u.UserID).Msg("created super_admin account")
		return OutcomeCreated, u.Username, nil

	default:
		return OutcomeUnchanged, "", err
	}
}

// correctExisting backfills or reactivates the named account when
// privileged accounts already exist. Never inserts.
func (s *Service) correctExisting(ctx context.Context, creds *Credentials) (bool, error) {
	existing, err := s.store.FindByUsernameOrEmail(ctx, creds.Username, creds.Email)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	changed := false
	if existing.UserID == "" {
		existing.UserID = uuid.NewString()
		changed = true
	}
	if !existing.IsActive {
		existing.IsActive = true
		changed = true
	}
	if !existing.IsSuperAdmin() {
		existing.Role = RoleSuperAdmin
		changed = true
	}
	if !changed {
		return false, nil
	}
	if err := s.store.Update(ctx, existing); err != nil {
		return false, err
	}
	s.log.Info().Str("username", existing.Username).Msg("corrected existing admin account")
	return true, nil
}
