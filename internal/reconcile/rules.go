package reconcile

import (
	"fmt"
	"strings"
)

// Relation identifies the table under reconciliation. Ordinal is the column
// giving a deterministic physical-row order; when empty the dialect's
// surrogate (rowid or the integer primary key) is used.
type Relation struct {
	Name    string
	Ordinal string
}

// Field names a column together with the placeholder values that count as
// blank in addition to NULL. Ingestion writes a few different sentinels
// ("-", "null", "None") depending on the upstream feed.
type Field struct {
	Column    string
	Sentinels []string
}

// blankExpr matches rows where the field is NULL or holds one of the
// sentinels. presentExpr is its negation.
func (f Field) blankExpr() (string, []any) {
	if len(f.Sentinels) == 0 {
		return fmt.Sprintf("%s IS NULL", f.Column), nil
	}
	args := make([]any, 0, len(f.Sentinels))
	marks := make([]string, 0, len(f.Sentinels))
	for _, s := range f.Sentinels {
		args = append(args, s)
		marks = append(marks, "?")
	}
	return fmt.Sprintf("(%s IS NULL OR %s IN (%s))", f.Column, f.Column, strings.Join(marks, ", ")), args
}

func (f Field) presentExpr() (string, []any) {
	expr, args := f.blankExpr()
	return "NOT " + expr, args
}

// ValidityRule declares a row invalid when every listed field is blank.
type ValidityRule struct {
	Name  string
	Blank []Field
}

// DedupeRule declares rows duplicates when they agree on every key
// expression. Guards restrict membership: a row with a blank guard field is
// never considered a duplicate member, so it survives this pass untouched.
type DedupeRule struct {
	Name  string
	Key   []string
	Guard []Field
}

func (r ValidityRule) predicate() (string, []any) {
	var (
		parts []string
		args  []any
	)
	for _, f := range r.Blank {
		expr, a := f.blankExpr()
		parts = append(parts, expr)
		args = append(args, a...)
	}
	return strings.Join(parts, " AND "), args
}

func (r DedupeRule) guardPredicate() (string, []any) {
	var (
		parts []string
		args  []any
	)
	for _, f := range r.Guard {
		expr, a := f.presentExpr()
		parts = append(parts, expr)
		args = append(args, a...)
	}
	if len(parts) == 0 {
		return "1 = 1", nil
	}
	return strings.Join(parts, " AND "), args
}

// Plan is a full reconciliation for one relation: validity passes first,
// then duplicate-collapse passes in declaration order. The order is part of
// the design: exact-identity keys must run before heuristic content keys so
// the looser match only acts on what true identity left behind.
type Plan struct {
	Relation Relation
	Validity []ValidityRule
	Dedupe   []DedupeRule
}
