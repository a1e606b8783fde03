package analysis

import (
	"goeda/domain/ingestion"
	"goeda/domain/profile"
)

// ComputeMissingData counts missing and present values
func ComputeMissingData(values []ingestion.Value) profile.MissingData {
	missing := 0
	for _, v := range values {
		if v.IsMissing() {
			missing++
		}
	}
	total := len(values)
	present := total - missing

	return profile.MissingData{
		Total:             total,
		Missing:           missing,
		Present:           present,
		MissingPercentage: percentage(missing, total),
		PresentPercentage: percentage(present, total),
	}
}
