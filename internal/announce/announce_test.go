package announce

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"datajanitor/internal/platform/storage"
	"datajanitor/internal/reconcile"
)

type AnnounceSuite struct {
	suite.Suite
	db  *storage.DB
	ctx context.Context
}

func TestAnnounceSuite(t *testing.T) {
	suite.Run(t, new(AnnounceSuite))
}

func (s *AnnounceSuite) SetupTest() {
	s.ctx = context.Background()
	db, err := storage.Open(s.ctx, storage.Config{
		Driver: storage.DriverSQLite,
		Path:   filepath.Join(s.T().TempDir(), "announce_test.db"),
	})
	s.Require().NoError(err)
	s.db = db

	_, err = db.ExecContext(s.ctx, `CREATE TABLE corporate_announcements (
		announcement_id TEXT,
		headline TEXT,
		description TEXT,
		announcement_datetime TEXT,
		symbol TEXT,
		symbol_nse TEXT,
		symbol_bse TEXT,
		received_at TEXT
	)`)
	s.Require().NoError(err)
}

func (s *AnnounceSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func (s *AnnounceSuite) insert(id, headline, datetime, symNSE any) {
	_, err := s.db.ExecContext(s.ctx, `INSERT INTO corporate_announcements
		(announcement_id, headline, description, announcement_datetime, symbol_nse)
		VALUES (?, ?, 'desc', ?, ?)`, id, headline, datetime, symNSE)
	s.Require().NoError(err)
}

func (s *AnnounceSuite) TestPlanPassOrder() {
	plan := Plan()

	s.Equal(Table, plan.Relation.Name)
	s.Require().Len(plan.Dedupe, 3)

	// Identity key first, heuristic content keys after. The order is a
	// designed parameter; changing it changes which rows survive.
	s.Equal("announcement_id", plan.Dedupe[0].Name)
	s.Equal("headline_datetime", plan.Dedupe[1].Name)
	s.Equal("headline_symbol", plan.Dedupe[2].Name)
}

func (s *AnnounceSuite) TestExactAndContentDuplicatesCollapseToOne() {
	// Two exact copies by id plus one content duplicate under another id.
	s.insert("A1", "X", "2024-01-01", "ACME")
	s.insert("A1", "X", "2024-01-01", "ACME")
	s.insert("A2", "X", "2024-01-01", "ACME")

	rec := reconcile.New(s.db)
	report, err := rec.Run(s.ctx, Plan(), false)
	s.Require().NoError(err)

	s.EqualValues(3, report.Before)
	s.EqualValues(1, report.After)
	s.True(report.Clean())
}

func (s *AnnounceSuite) TestSymbolFallbackChain() {
	// Same headline, symbol carried in different columns that COALESCE to
	// the same value.
	_, err := s.db.ExecContext(s.ctx, `INSERT INTO corporate_announcements
		(announcement_id, headline, description, symbol_nse) VALUES ('B1', 'Results', 'd', 'ACME')`)
	s.Require().NoError(err)
	_, err = s.db.ExecContext(s.ctx, `INSERT INTO corporate_announcements
		(announcement_id, headline, description, symbol) VALUES ('B2', 'Results', 'd', 'ACME')`)
	s.Require().NoError(err)

	rec := reconcile.New(s.db)
	report, err := rec.Run(s.ctx, Plan(), false)
	s.Require().NoError(err)
	s.EqualValues(1, report.After)
}

func (s *AnnounceSuite) TestBlankRowsRemoved() {
	s.insert("C1", "Real headline", "2024-02-01", "ACME")
	_, err := s.db.ExecContext(s.ctx, `INSERT INTO corporate_announcements
		(announcement_id, headline, description) VALUES ('C2', '-', '-')`)
	s.Require().NoError(err)
	_, err = s.db.ExecContext(s.ctx, `INSERT INTO corporate_announcements
		(announcement_id, headline, description) VALUES ('C3', 'None', NULL)`)
	s.Require().NoError(err)

	rec := reconcile.New(s.db)
	report, err := rec.Run(s.ctx, Plan(), false)
	s.Require().NoError(err)

	s.EqualValues(2, report.Removed)
	s.EqualValues(1, report.After)
}

func (s *AnnounceSuite) TestEnsureTable() {
	s.NoError(EnsureTable(s.ctx, s.db))

	_, err := s.db.ExecContext(s.ctx, `DROP TABLE corporate_announcements`)
	s.Require().NoError(err)
	s.Error(EnsureTable(s.ctx, s.db))
}

func (s *AnnounceSuite) TestDatabasePath() {
	s.Equal(
		filepath.Join("/app/data", "Company Fundamentals", "corporate_announcements.db"),
		DatabasePath("/app/data"),
	)
}
