package analysis

import (
	"fmt"

	"goeda/domain/ingestion"
	"goeda/domain/profile"
)

const (
	missingWarningPercent = 50.0
	nearConstantStd       = 0.001
	highCardinalityRatio  = 0.8
)

// CountDuplicateRows counts rows equal in content to an earlier row. Key
// order does not matter; hash collisions are resolved by a full comparison.
func CountDuplicateRows(rows []ingestion.Row) int {
	seen := make(map[uint64][]int, len(rows))
	duplicates := 0

	for i, row := range rows {
		h := uint64(row.Hash())
		matched := false
		for _, j := range seen[h] {
			if rows[j].Equal(row) {
				matched = true
				break
			}
		}
		if matched {
			duplicates++
			continue
		}
		seen[h] = append(seen[h], i)
	}
	return duplicates
}

// AssessQuality derives issues, warnings and the overall verdict
func AssessQuality(rowCount int, duplicateRows int, columns []profile.ColumnProfile) profile.QualityAssessment {
	issues := make([]string, 0)
	warnings := make([]string, 0)

	for _, c := range columns {
		md := c.MissingData
		if md.Total > 0 && md.Missing == md.Total {
			issues = append(issues, fmt.Sprintf("Column '%s' is completely empty", c.Name))
		} else if md.MissingPercentage > missingWarningPercent {
			warnings = append(warnings, fmt.Sprintf("Column '%s' has %.2f%% missing values", c.Name, md.MissingPercentage))
		}

		if c.Type.IsNumeric() && c.Stats.Numeric != nil {
			if std := c.Stats.Numeric.Std; std != nil && *std < nearConstantStd {
				warnings = append(warnings, fmt.Sprintf("Column '%s' has very low variance (nearly constant)", c.Name))
			}
		}

		if c.Type == profile.TypeString && c.Stats.Categorical != nil && rowCount > 0 {
			if float64(c.Stats.Categorical.UniqueCount) > highCardinalityRatio*float64(rowCount) {
				warnings = append(warnings, fmt.Sprintf("Column '%s' has high cardinality (%d unique values)", c.Name, c.Stats.Categorical.UniqueCount))
			}
		}
	}

	if duplicateRows > 0 {
		warnings = append(warnings, fmt.Sprintf("Found %d duplicate rows", duplicateRows))
	}

	overall := profile.VerdictExcellent
	switch {
	case len(issues) > 0:
		overall = profile.VerdictPoor
	case len(warnings) > 0:
		overall = profile.VerdictGood
	}

	return profile.QualityAssessment{
		Issues:   issues,
		Warnings: warnings,
		Overall:  overall,
	}
}
