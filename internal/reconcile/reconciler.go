// Package reconcile converges a relation to a canonical state: no invalid
// rows, no duplicate groups. Every operation is idempotent and re-runnable;
// a full run executes inside one transaction so a mid-run failure leaves
// the table exactly as it was.
//
// Known race: a concurrent writer inserting rows mid-run is not prevented;
// rows that arrive after the passes scanned the table are picked up by the
// next run.
package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"datajanitor/internal/platform/metrics"
	"datajanitor/internal/platform/storage"
	"datajanitor/pkg/platform/sentinel"
)

// Reconciler executes validity and duplicate-collapse passes against one
// database. It holds no state between runs.
type Reconciler struct {
	db      *storage.DB
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Reconciler) { r.log = log }
}

// WithMetrics attaches run metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) { r.metrics = m }
}

// New constructs a Reconciler over an open database handle.
func New(db *storage.DB, opts ...Option) *Reconciler {
	r := &Reconciler{db: db, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) ordinal(rel Relation) string {
	if rel.Ordinal != "" {
		return rel.Ordinal
	}
	return r.db.Dialect().RowOrdinal()
}

// Count returns the current row count of the relation.
func (r *Reconciler) Count(ctx context.Context, rel Relation) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", rel.Name)
	if err := r.db.Runner(ctx).QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", rel.Name, err)
	}
	return n, nil
}

// RemoveInvalid deletes every row matching the rule's blank predicate and
// returns the number removed.
func (r *Reconciler) RemoveInvalid(ctx context.Context, rel Relation, rule ValidityRule) (int64, error) {
	pred, args := rule.predicate()
	q := r.db.Dialect().Rebind(fmt.Sprintf("DELETE FROM %s WHERE %s", rel.Name, pred))
	res, err := r.db.Runner(ctx).ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("remove invalid rows (%s) from %s: %w", rule.Name, rel.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// CollapseDuplicates keeps, for every group of rows agreeing on the rule's
// content key, exactly the row with the minimum ordinal, and deletes the
// rest. Rows excluded by the guards are untouched. Running it twice in a
// row removes nothing the second time.
func (r *Reconciler) CollapseDuplicates(ctx context.Context, rel Relation, rule DedupeRule) (int64, error) {
	if len(rule.Key) == 0 {
		return 0, fmt.Errorf("dedupe rule %s: %w: empty content key", rule.Name, sentinel.ErrInvalidState)
	}
	guard, guardArgs := rule.guardPredicate()
	ord := r.ordinal(rel)

	q := fmt.Sprintf(`DELETE FROM %[1]s
WHERE %[2]s NOT IN (
	SELECT MIN(%[2]s) FROM %[1]s WHERE %[3]s GROUP BY %[4]s
) AND %[3]s`, rel.Name, ord, guard, strings.Join(rule.Key, ", "))

	// Guard predicate appears in both the subquery and the outer filter.
	args := append(append([]any{}, guardArgs...), guardArgs...)
	res, err := r.db.Runner(ctx).ExecContext(ctx, r.db.Dialect().Rebind(q), args...)
	if err != nil {
		return 0, fmt.Errorf("collapse duplicates (%s) in %s: %w", rule.Name, rel.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// DuplicateGroups counts groups still violating the rule. Used both for the
// pre-run estimate and the post-run verification.
func (r *Reconciler) DuplicateGroups(ctx context.Context, rel Relation, rule DedupeRule) (int64, error) {
	guard, args := rule.guardPredicate()
	q := fmt.Sprintf(`SELECT COUNT(*) FROM (
	SELECT 1 FROM %s WHERE %s GROUP BY %s HAVING COUNT(*) > 1
) AS violations`, rel.Name, guard, strings.Join(rule.Key, ", "))

	var n int64
	if err := r.db.Runner(ctx).QueryRowContext(ctx, r.db.Dialect().Rebind(q), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count duplicate groups (%s) in %s: %w", rule.Name, rel.Name, err)
	}
	return n, nil
}

// Run executes the plan inside a single transaction: validity passes first,
// then the dedupe passes in declared order, then re-measurement and the
// duplicate-detection verification. Any failure rolls the whole run back.
// With dryRun the transaction is rolled back after measuring, so the report
// shows what a real run would do without touching the table.
func (r *Reconciler) Run(ctx context.Context, plan Plan, dryRun bool) (*Report, error) {
	rel := plan.Relation

	exists, err := r.db.Dialect().TableExists(ctx, r.db, rel.Name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("relation %s: %w", rel.Name, sentinel.ErrNotFound)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin reconciliation of %s: %w", rel.Name, err)
	}
	txCtx := storage.WithTx(ctx, tx)

	report, err := r.runPasses(txCtx, plan)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.log.Error().Err(rbErr).Str("relation", rel.Name).Msg("rollback failed")
		}
		return nil, err
	}

	if dryRun {
		report.DryRun = true
		if err := tx.Rollback(); err != nil {
			return nil, fmt.Errorf("roll back dry run on %s: %w", rel.Name, err)
		}
		r.log.Info().Str("relation", rel.Name).Int64("would_remove", report.Removed).Msg("dry run rolled back")
		return report, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reconciliation of %s: %w", rel.Name, err)
	}

	if r.metrics != nil {
		for _, p := range report.Passes {
			r.metrics.RowsRemoved.WithLabelValues(rel.Name, p.Rule).Add(float64(p.Removed))
		}
	}
	return report, nil
}

func (r *Reconciler) runPasses(ctx context.Context, plan Plan) (*Report, error) {
	rel := plan.Relation
	report := &Report{
		Relation:        rel.Name,
		RemainingGroups: make(map[string]int64, len(plan.Dedupe)),
	}

	var err error
	if report.Before, err = r.Count(ctx, rel); err != nil {
		return nil, err
	}

	for _, rule := range plan.Validity {
		n, err := r.RemoveInvalid(ctx, rel, rule)
		if err != nil {
			return nil, err
		}
		r.log.Info().Str("relation", rel.Name).Str("pass", rule.Name).Int64("removed", n).Msg("validity pass")
		report.Passes = append(report.Passes, PassResult{Rule: rule.Name, Kind: PassValidity, Removed: n})
	}

	for _, rule := range plan.Dedupe {
		n, err := r.CollapseDuplicates(ctx, rel, rule)
		if err != nil {
			return nil, err
		}
		r.log.Info().Str("relation", rel.Name).Str("pass", rule.Name).Int64("removed", n).Msg("dedupe pass")
		report.Passes = append(report.Passes, PassResult{Rule: rule.Name, Kind: PassDedupe, Removed: n})
	}

	if report.After, err = r.Count(ctx, rel); err != nil {
		return nil, err
	}
	report.Removed = report.Before - report.After

	// Post-cleanup verification. Nonzero remainders are surfaced as a
	// warning, not an error: heuristic keys may be knowingly incomplete.
	for _, rule := range plan.Dedupe {
		n, err := r.DuplicateGroups(ctx, rel, rule)
		if err != nil {
			return nil, err
		}
		report.RemainingGroups[rule.Name] = n
		if n > 0 {
			r.log.Warn().Str("relation", rel.Name).Str("pass", rule.Name).Int64("groups", n).
				Msg("duplicate groups remain after reconciliation")
		}
	}
	return report, nil
}
