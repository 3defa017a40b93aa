package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"datajanitor/internal/admin/secrets"
)

type ServiceSuite struct {
	suite.Suite
	store *InMemoryStore
	svc   *Service
	ctx   context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryStore()
	s.svc = NewService(s.store)
}

func (s *ServiceSuite) creds() *Credentials {
	return &Credentials{Username: "admin", Email: "admin@x.com", Password: "longpassword1"}
}

func (s *ServiceSuite) admins() []*User {
	admins, err := s.store.ListByRole(s.ctx, RoleSuperAdmin)
	s.Require().NoError(err)
	return admins
}

func (s *ServiceSuite) TestCreatesAdminWhenNoneExists() {
	res, err := s.svc.EnsureAdmin(s.ctx, s.creds())
	s.Require().NoError(err)
	s.Equal(OutcomeCreated, res.Outcome)

	admins := s.admins()
	s.Require().Len(admins, 1)
	u := admins[0]
	s.Equal("admin", u.Username)
	s.Equal(RoleSuperAdmin, u.Role)
	s.True(u.IsActive)
	s.NotEmpty(u.UserID)

	// Password is stored hashed, never in plaintext.
	s.NotEqual("longpassword1", u.HashedPassword)
	s.True(secrets.Verify("longpassword1", u.HashedPassword))
}

func (s *ServiceSuite) TestPromotesExistingAccountMatchedByEmail() {
	s.Require().NoError(s.store.Create(s.ctx, &User{
		Username: "jane",
		Email:    "admin@x.com",
		Role:     "user",
		IsActive: false,
	}))

	res, err := s.svc.EnsureAdmin(s.ctx, s.creds())
	s.Require().NoError(err)
	s.Equal(OutcomeUpdated, res.Outcome)

	// Promoted in place; no second record inserted.
	admins := s.admins()
	s.Require().Len(admins, 1)
	s.Equal("jane", admins[0].Username)
	s.True(admins[0].IsActive)
	s.NotEmpty(admins[0].UserID)

	_, err = s.store.FindByUsernameOrEmail(s.ctx, "admin", "")
	s.Error(err)
}

func (s *ServiceSuite) TestNoCredentialsIsInformational() {
	res, err := s.svc.EnsureAdmin(s.ctx, nil)
	s.Require().NoError(err)
	s.Equal(OutcomeNoAdmin, res.Outcome)
	s.Empty(s.admins())
}

func (s *ServiceSuite) TestNeverCreatesSecondAdmin() {
	_, err := s.svc.EnsureAdmin(s.ctx, s.creds())
	s.Require().NoError(err)

	other := &Credentials{Username: "backup", Email: "backup@x.com", Password: "longpassword2"}
	res, err := s.svc.EnsureAdmin(s.ctx, other)
	s.Require().NoError(err)
	s.Equal(OutcomeUnchanged, res.Outcome)
	s.Len(s.admins(), 1)
}

func (s *ServiceSuite) TestSweepNormalizesCasingAndActivates() {
	s.Require().NoError(s.store.Create(s.ctx, &User{
		Username: "legacy",
		Email:    "legacy@x.com",
		UserID:   "u-1",
		Role:     "Super_Admin",
		IsActive: false,
	}))

	res, err := s.svc.EnsureAdmin(s.ctx, nil)
	s.Require().NoError(err)
	s.Equal(OutcomeUpdated, res.Outcome)
	s.EqualValues(1, res.Swept)

	admins := s.admins()
	s.Require().Len(admins, 1)
	s.Equal(RoleSuperAdmin, admins[0].Role)
	s.True(admins[0].IsActive)
}

func (s *ServiceSuite) TestIdempotentAcrossRuns() {
	first, err := s.svc.EnsureAdmin(s.ctx, s.creds())
	s.Require().NoError(err)
	s.Equal(OutcomeCreated, first.Outcome)

	second, err := s.svc.EnsureAdmin(s.ctx, s.creds())
	s.Require().NoError(err)
	s.Equal(OutcomeUnchanged, second.Outcome)
	s.Zero(second.Swept)
	s.Len(s.admins(), 1)
}

func (s *ServiceSuite) TestCorrectsExistingAdminRecord() {
	// Admins exist, and the named account lost its identifier and active
	// flag through manual edits.
	s.Require().NoError(s.store.Create(s.ctx, &User{
		Username: "root", Email: "root@x.com", UserID: "u-root",
		Role: RoleSuperAdmin, IsActive: true,
	}))
	s.Require().NoError(s.store.Create(s.ctx, &User{
		Username: "admin", Email: "admin@x.com",
		Role: "user", IsActive: false,
	}))

	res, err := s.svc.EnsureAdmin(s.ctx, s.creds())
	s.Require().NoError(err)
	s.Equal(OutcomeUpdated, res.Outcome)

	fixed, err := s.store.FindByUsernameOrEmail(s.ctx, "admin", "admin@x.com")
	s.Require().NoError(err)
	s.Equal(RoleSuperAdmin, fixed.Role)
	s.True(fixed.IsActive)
	s.NotEmpty(fixed.UserID)
	s.Len(s.admins(), 2)
}
