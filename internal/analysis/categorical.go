package analysis

import (
	"sort"

	"goeda/domain/ingestion"
	"goeda/domain/profile"
)

const maxTopValues = 10

// ComputeCategoricalStats builds the frequency table of the non-missing
// values, ranked by count with ties in first-seen order
func ComputeCategoricalStats(values []ingestion.Value) profile.CategoricalStats {
	counts := make(map[string]int)
	order := make([]string, 0)
	total := 0

	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		key := v.String()
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
		total++
	}

	ranked := make([]profile.ValueCount, len(order))
	for i, key := range order {
		ranked[i] = profile.ValueCount{
			Value:      key,
			Count:      counts[key],
			Percentage: percentage(counts[key], total),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	result := profile.CategoricalStats{
		Count:       total,
		UniqueCount: len(ranked),
		ValueCounts: ranked,
		TopValues:   ranked[:min(len(ranked), maxTopValues)],
	}
	if len(ranked) > 0 {
		mode := ranked[0].Value
		result.Mode = &mode
		result.ModeFrequency = ranked[0].Count
	}
	return result
}
