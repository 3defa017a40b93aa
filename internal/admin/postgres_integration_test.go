//go:build integration

package admin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"datajanitor/internal/admin"
	"datajanitor/internal/platform/storage"
	"datajanitor/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	db       *storage.DB
	store    *admin.SQLStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	ctx := context.Background()
	s.postgres = containers.NewPostgresContainer(s.T())

	db, err := storage.Open(ctx, storage.Config{
		Driver: storage.DriverPostgres,
		DSN:    s.postgres.DSN,
	})
	s.Require().NoError(err)
	s.db = db
	s.store = admin.NewSQLStore(db)
	s.Require().NoError(admin.EnsureSchema(ctx, db))
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.db != nil {
		s.Require().NoError(s.db.Close())
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.db.ExecContext(context.Background(), "TRUNCATE TABLE users RESTART IDENTITY")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestEnsureAdminLifecycle() {
	ctx := context.Background()
	svc := admin.NewService(s.store)
	creds := &admin.Credentials{Username: "admin", Email: "admin@x.com", Password: "longpassword1"}

	res, err := svc.EnsureAdmin(ctx, creds)
	s.Require().NoError(err)
	s.Equal(admin.OutcomeCreated, res.Outcome)

	admins, err := s.store.ListByRole(ctx, admin.RoleSuperAdmin)
	s.Require().NoError(err)
	s.Require().Len(admins, 1)
	s.True(admins[0].IsActive)
	s.NotEmpty(admins[0].UserID)

	res, err = svc.EnsureAdmin(ctx, creds)
	s.Require().NoError(err)
	s.Equal(admin.OutcomeUnchanged, res.Outcome)
}

func (s *PostgresStoreSuite) TestSweepRoleRebindsPlaceholders() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, &admin.User{
		UserID: "u-1", Username: "legacy", Email: "legacy@x.com",
		HashedPassword: "x", Role: "Super_Admin", IsActive: false,
	}))

	n, err := s.store.SweepRole(ctx, admin.RoleSuperAdmin)
	s.Require().NoError(err)
	s.EqualValues(1, n)
}

func (s *PostgresStoreSuite) TestTransactionRollbackLeavesTableUntouched() {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	s.Require().NoError(err)
	txCtx := storage.WithTx(ctx, tx)

	svc := admin.NewService(s.store)
	_, err = svc.EnsureAdmin(txCtx, &admin.Credentials{
		Username: "admin", Email: "admin@x.com", Password: "longpassword1",
	})
	s.Require().NoError(err)
	s.Require().NoError(tx.Rollback())

	admins, err := s.store.ListByRole(ctx, admin.RoleSuperAdmin)
	s.Require().NoError(err)
	s.Empty(admins)
}
