package inspect

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"datajanitor/internal/platform/storage"
	"datajanitor/pkg/platform/sentinel"
)

type InspectSuite struct {
	suite.Suite
	db  *storage.DB
	ins *Inspector
	ctx context.Context
}

func TestInspectSuite(t *testing.T) {
	suite.Run(t, new(InspectSuite))
}

func (s *InspectSuite) SetupTest() {
	s.ctx = context.Background()
	db, err := storage.Open(s.ctx, storage.Config{
		Driver: storage.DriverSQLite,
		Path:   filepath.Join(s.T().TempDir(), "inspect_test.db"),
	})
	s.Require().NoError(err)
	s.db = db
	s.ins = New(db, zerolog.Nop())

	_, err = db.ExecContext(s.ctx, `CREATE TABLE final_news (
		news_id TEXT,
		ticker TEXT,
		company_name TEXT,
		url TEXT
	)`)
	s.Require().NoError(err)
	for _, row := range [][]any{
		{"n1", "ACME", "Acme Corp", "https://example.com/1"},
		{"n2", "GLOB", "Globex", ""},
		{"n3", "INIT", "Initech", nil},
	} {
		_, err = db.ExecContext(s.ctx,
			`INSERT INTO final_news (news_id, ticker, company_name, url) VALUES (?, ?, ?, ?)`,
			row...)
		s.Require().NoError(err)
	}
}

func (s *InspectSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func (s *InspectSuite) TestColumnsAndCounts() {
	r, err := s.ins.Table(s.ctx, "final_news", Options{StatsColumn: "url"})
	s.Require().NoError(err)

	s.EqualValues(3, r.Total)
	s.EqualValues(1, r.NonBlank, "empty and NULL urls are both blank")

	names := make([]string, 0, len(r.Columns))
	for _, c := range r.Columns {
		names = append(names, c.Name)
	}
	s.Equal([]string{"news_id", "ticker", "company_name", "url"}, names)
}

func (s *InspectSuite) TestSampleRows() {
	r, err := s.ins.Table(s.ctx, "final_news", Options{SampleLimit: 2})
	s.Require().NoError(err)
	s.Require().Len(r.Samples, 2)
	s.Equal("n1", r.Samples[0]["news_id"])
	s.Equal("ACME", r.Samples[0]["ticker"])
}

func (s *InspectSuite) TestRequiredColumnPresence() {
	r, err := s.ins.Table(s.ctx, "final_news", Options{
		RequireColumns: []string{"url", "source_url"},
	})
	s.Require().NoError(err)
	s.Equal([]string{"source_url"}, r.MissingColumns)
}

func (s *InspectSuite) TestMissingTable() {
	_, err := s.ins.Table(s.ctx, "telegram_raw", Options{})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InspectSuite) TestTablesPreservesOrder() {
	_, err := s.db.ExecContext(s.ctx, `CREATE TABLE telegram_raw (msg_id TEXT, source_url TEXT)`)
	s.Require().NoError(err)

	reports, err := s.ins.Tables(s.ctx, []string{"telegram_raw", "final_news"}, Options{})
	s.Require().NoError(err)
	s.Require().Len(reports, 2)
	s.Equal("telegram_raw", reports[0].Table)
	s.Equal("final_news", reports[1].Table)
}
