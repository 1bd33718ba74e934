// Package querysql compiles credential predicates into parameterized SQL.
package querysql

import (
	"fmt"
	"regexp"
	"strings"
)

// Predicate is one equality clause: Field must equal Value. Predicates are
// always conjoined with AND, in the order given.
type Predicate struct {
	Field string
	Value any
}

// validIdentifier matches bare SQL identifiers (column names). Field names
// come from closed per-type credential enumerations, but the compiler still
// refuses anything that is not a plain identifier.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Select compiles a full statement from a base full-table select, an ordered
// predicate list, and an optional row cap.
//
// WHERE is appended only when preds is non-empty; each predicate becomes
// "field = ?" and values are returned as parameters in clause order, never
// interpolated into the text. A limit <= 0 means no LIMIT clause.
func Select(base string, preds []Predicate, limit int) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString(base)

	var params []any
	if len(preds) > 0 {
		clause, clauseParams, err := compileWhere(preds)
		if err != nil {
			return "", nil, fmt.Errorf("compile where: %w", err)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(clause)
		params = clauseParams
	}

	if limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", limit)
	}

	return sb.String(), params, nil
}

// compileWhere folds predicates into clause text and a parallel parameter
// list, joined with AND in the given order.
func compileWhere(preds []Predicate) (string, []any, error) {
	parts := make([]string, 0, len(preds))
	params := make([]any, 0, len(preds))

	for _, p := range preds {
		clause, err := compileEquals(p)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, clause)
		params = append(params, p.Value)
	}

	return strings.Join(parts, " AND "), params, nil
}

// compileEquals compiles one predicate to "field = ?". The value is never
// interpolated; it travels as a bound parameter.
func compileEquals(p Predicate) (string, error) {
	if !validIdentifier.MatchString(p.Field) {
		return "", fmt.Errorf("invalid field name %q: must match pattern %s", p.Field, validIdentifier.String())
	}
	return fmt.Sprintf("%s = ?", p.Field), nil
}
