package store

import (
	"fmt"
	"strings"
	"time"

	"goeda/adapters/datareadiness/coercer"
	"goeda/domain/core"
	"goeda/domain/ingestion"
)

// Operator is a filter comparison
type Operator string

const (
	OpEquals      Operator = "eq"
	OpNotEquals   Operator = "neq"
	OpContains    Operator = "contains"
	OpGreater     Operator = "gt"
	OpGreaterOrEq Operator = "gte"
	OpLess        Operator = "lt"
	OpLessOrEq    Operator = "lte"
	OpBetween     Operator = "between"
	OpMissing     Operator = "missing"
	OpPresent     Operator = "present"
)

var knownOperators = map[Operator]bool{
	OpEquals: true, OpNotEquals: true, OpContains: true,
	OpGreater: true, OpGreaterOrEq: true, OpLess: true, OpLessOrEq: true,
	OpBetween: true, OpMissing: true, OpPresent: true,
}

// IsOrdered reports whether the operator compares numbers or dates
func (o Operator) IsOrdered() bool {
	switch o {
	case OpGreater, OpGreaterOrEq, OpLess, OpLessOrEq, OpBetween:
		return true
	}
	return false
}

// Filter keeps the rows whose Column satisfies Operator against Value.
// Between uses Value and Value2 as inclusive bounds.
type Filter struct {
	ID       core.ID  `json:"id"`
	Column   string   `json:"column"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value,omitempty"`
	Value2   string   `json:"value2,omitempty"`
}

// Validate checks the filter against the dataset columns
func (f Filter) Validate(columns []string) error {
	found := false
	for _, c := range columns {
		if c == f.Column {
			found = true
			break
		}
	}
	if !found {
		return core.NewFilterError(f.Column, "unknown column")
	}
	if !knownOperators[f.Operator] {
		return core.NewFilterError(f.Column, fmt.Sprintf("unknown operator %q", f.Operator))
	}

	if f.Operator.IsOrdered() {
		if _, ok := orderedKey(ingestion.NewStringValue(f.Value)); !ok {
			return core.NewFilterError(f.Column, fmt.Sprintf("%s needs a number or date, got %q", f.Operator, f.Value))
		}
	}
	if f.Operator == OpBetween {
		if _, ok := orderedKey(ingestion.NewStringValue(f.Value2)); !ok {
			return core.NewFilterError(f.Column, fmt.Sprintf("between needs an upper bound, got %q", f.Value2))
		}
	}
	return nil
}

// Matches reports whether the row passes the filter. Missing cells only
// match missing and neq; ordered comparisons skip cells that do not convert.
func (f Filter) Matches(row ingestion.Row) bool {
	cell := row.Value(f.Column)

	switch f.Operator {
	case OpMissing:
		return cell.IsMissing()
	case OpPresent:
		return !cell.IsMissing()
	case OpNotEquals:
		return cell.IsMissing() || !equalCell(cell, f.Value)
	}

	if cell.IsMissing() {
		return false
	}

	switch f.Operator {
	case OpEquals:
		return equalCell(cell, f.Value)
	case OpContains:
		return strings.Contains(strings.ToLower(cell.String()), strings.ToLower(f.Value))
	case OpGreater, OpGreaterOrEq, OpLess, OpLessOrEq:
		cmp, ok := compareCell(cell, f.Value)
		if !ok {
			return false
		}
		switch f.Operator {
		case OpGreater:
			return cmp > 0
		case OpGreaterOrEq:
			return cmp >= 0
		case OpLess:
			return cmp < 0
		default:
			return cmp <= 0
		}
	case OpBetween:
		lo, okLo := compareCell(cell, f.Value)
		hi, okHi := compareCell(cell, f.Value2)
		return okLo && okHi && lo >= 0 && hi <= 0
	}
	return false
}

// equalCell compares numerically when both sides are numbers, otherwise as
// trimmed text
func equalCell(cell ingestion.Value, target string) bool {
	if a, ok := coercer.ToNumber(cell); ok {
		if b, ok := coercer.ToNumber(ingestion.NewStringValue(target)); ok {
			return a == b
		}
	}
	return strings.TrimSpace(cell.String()) == strings.TrimSpace(target)
}

// compareCell returns -1, 0 or 1 for cell against target. Both must convert
// to the same kind of ordered key.
func compareCell(cell ingestion.Value, target string) (int, bool) {
	a, ok := orderedKey(cell)
	if !ok {
		return 0, false
	}
	b, ok := orderedKey(ingestion.NewStringValue(target))
	if !ok || a.kind != b.kind {
		return 0, false
	}
	switch {
	case a.value < b.value:
		return -1, true
	case a.value > b.value:
		return 1, true
	}
	return 0, true
}

type keyKind int

const (
	numberKey keyKind = iota
	timeKey
)

type ordered struct {
	kind  keyKind
	value float64
}

// orderedKey converts numbers first, then dates as Unix nanoseconds
func orderedKey(v ingestion.Value) (ordered, bool) {
	if f, ok := coercer.ToNumber(v); ok {
		return ordered{kind: numberKey, value: f}, true
	}
	if t, ok := coercer.ToTime(v); ok {
		return ordered{kind: timeKey, value: float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)}, true
	}
	return ordered{}, false
}

// applyFilters keeps rows matching every filter
func applyFilters(rows []ingestion.Row, filters []Filter) []ingestion.Row {
	out := make([]ingestion.Row, 0, len(rows))
	for _, row := range rows {
		keep := true
		for _, f := range filters {
			if !f.Matches(row) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row.Clone())
		}
	}
	return out
}
