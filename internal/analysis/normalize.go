package analysis

import (
	"fmt"
	"strings"

	"goeda/domain/ingestion"
)

// NormalizeColumnName trims, collapses whitespace runs to a single
// underscore and lower-cases
func NormalizeColumnName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "_"))
}

// columnLayout maps the raw keys seen in the input to unique normalized names
type columnLayout struct {
	names []string
	byRaw map[string]string
}

// buildLayout walks every row so that keys first seen in later rows are
// appended to the column order
func buildLayout(rows []ingestion.Row) columnLayout {
	layout := columnLayout{byRaw: make(map[string]string)}
	taken := make(map[string]bool)

	for _, row := range rows {
		for _, raw := range row.Keys() {
			if _, ok := layout.byRaw[raw]; ok {
				continue
			}
			name := NormalizeColumnName(raw)
			if name == "" {
				name = fmt.Sprintf("column_%d", len(layout.names)+1)
			}
			name = uniqueName(name, taken)
			taken[name] = true
			layout.byRaw[raw] = name
			layout.names = append(layout.names, name)
		}
	}
	return layout
}

func uniqueName(name string, taken map[string]bool) string {
	if !taken[name] {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if !taken[candidate] {
			return candidate
		}
	}
}

// rekey copies every row under the normalized names. Absent keys become
// missing so the result is rectangular.
func (l columnLayout) rekey(rows []ingestion.Row) []ingestion.Row {
	out := make([]ingestion.Row, len(rows))
	for i, row := range rows {
		clean := ingestion.NewRow(len(l.names))
		for _, name := range l.names {
			clean.Set(name, ingestion.NewMissingValue())
		}
		for _, raw := range row.Keys() {
			clean.Set(l.byRaw[raw], row.Value(raw))
		}
		out[i] = clean
	}
	return out
}

// columnValues extracts one column across all rows
func columnValues(rows []ingestion.Row, name string) []ingestion.Value {
	values := make([]ingestion.Value, len(rows))
	for i, row := range rows {
		values[i] = row.Value(name)
	}
	return values
}

// NormalizeRows returns the cleaned column order and re-keyed copies of rows
func NormalizeRows(rows []ingestion.Row) ([]string, []ingestion.Row) {
	layout := buildLayout(rows)
	return layout.names, layout.rekey(rows)
}
