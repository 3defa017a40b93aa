package reconcile

import "fmt"

// PassKind distinguishes the two corrective pass families.
type PassKind string

const (
	PassValidity PassKind = "validity"
	PassDedupe   PassKind = "dedupe"
)

// PassResult records one pass's effect.
type PassResult struct {
	Rule    string
	Kind    PassKind
	Removed int64
}

// Report aggregates a full reconciliation run: before/after totals, the
// per-pass removals, and the post-run verification. RemainingGroups is the
// duplicate groups still present per dedupe rule after the passes ran; a
// nonzero value is a warning, not a failure, since heuristic keys are not
// always fully eliminable in one run.
type Report struct {
	Relation        string
	Before          int64
	After           int64
	Removed         int64
	Passes          []PassResult
	RemainingGroups map[string]int64
	DryRun          bool
}

// Clean reports whether the post-run verification found zero remaining
// duplicate groups across every rule.
func (r *Report) Clean() bool {
	for _, n := range r.RemainingGroups {
		if n > 0 {
			return false
		}
	}
	return true
}

// TotalRemaining sums remaining duplicate groups across all rules.
func (r *Report) TotalRemaining() int64 {
	var total int64
	for _, n := range r.RemainingGroups {
		total += n
	}
	return total
}

func (r *Report) String() string {
	return fmt.Sprintf("%s: before=%d after=%d removed=%d remaining_groups=%d",
		r.Relation, r.Before, r.After, r.Removed, r.TotalRemaining())
}
