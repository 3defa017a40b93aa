// Package announce holds the reconciliation rule set for the corporate
// announcements relation populated by the ingestion side.
package announce

import (
	"context"
	"fmt"
	"path/filepath"

	"datajanitor/internal/platform/storage"
	"datajanitor/internal/reconcile"
)

// Table is the relation the ingestion pipeline writes announcements to.
const Table = "corporate_announcements"

// Upstream feeds write a few different tokens where a value is missing.
var (
	headlineSentinels    = []string{"", "-", "null", "None"}
	descriptionSentinels = []string{"", "-"}
)

// Plan returns the full reconciliation plan for the announcements table.
//
// Pass order is deliberate. The announcement_id key is true identity and
// runs first; headline+datetime and headline+symbol are heuristic content
// keys and only act on what the identity pass left behind. Reordering
// changes which rows survive.
func Plan() reconcile.Plan {
	return reconcile.Plan{
		Relation: reconcile.Relation{Name: Table},
		Validity: []reconcile.ValidityRule{
			{
				Name: "blank",
				Blank: []reconcile.Field{
					{Column: "headline", Sentinels: headlineSentinels},
					{Column: "description", Sentinels: descriptionSentinels},
				},
			},
		},
		Dedupe: []reconcile.DedupeRule{
			{
				Name: "announcement_id",
				Key:  []string{"announcement_id"},
				Guard: []reconcile.Field{
					{Column: "announcement_id", Sentinels: []string{""}},
				},
			},
			{
				Name: "headline_datetime",
				Key:  []string{"headline", "announcement_datetime"},
				Guard: []reconcile.Field{
					{Column: "headline", Sentinels: []string{"", "-"}},
					{Column: "announcement_datetime"},
				},
			},
			{
				Name: "headline_symbol",
				Key:  []string{"headline", "COALESCE(symbol_nse, symbol_bse, symbol)"},
				Guard: []reconcile.Field{
					{Column: "headline", Sentinels: []string{"", "-"}},
				},
			},
		},
	}
}

// DatabasePath is where the announcements database lives under the data
// directory on the embedded backend.
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "Company Fundamentals", "corporate_announcements.db")
}

// EnsureTable verifies the relation exists before a run, so a missing or
// never-populated database fails with a clear message instead of a SQL
// error mid-transaction.
func EnsureTable(ctx context.Context, db *storage.DB) error {
	ok, err := db.Dialect().TableExists(ctx, db, Table)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("table %s does not exist; has ingestion run against this database?", Table)
	}
	return nil
}
