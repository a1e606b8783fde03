package analysis

import (
	"goeda/adapters/datareadiness/coercer"
	"goeda/domain/ingestion"
	"goeda/domain/profile"
)

// InferType classifies a column. Checks run numeric, boolean, date, string
// against the non-missing values; the first rule every value satisfies wins.
func InferType(values []ingestion.Value) profile.ColumnType {
	present := presentValues(values)
	if len(present) == 0 {
		return profile.TypeUnknown
	}

	if isNumeric, integral := allNumeric(present); isNumeric {
		if integral {
			return profile.TypeInteger
		}
		return profile.TypeFloat
	}

	if allMatch(present, func(v ingestion.Value) bool {
		_, ok := coercer.ToBoolean(v)
		return ok
	}) {
		return profile.TypeBoolean
	}

	if allMatch(present, func(v ingestion.Value) bool {
		_, ok := coercer.ToTime(v)
		return ok
	}) {
		return profile.TypeDate
	}

	return profile.TypeString
}

func allNumeric(values []ingestion.Value) (numeric bool, integral bool) {
	integral = true
	for _, v := range values {
		f, ok := coercer.ToNumber(v)
		if !ok {
			return false, false
		}
		if !coercer.IsIntegral(f) {
			integral = false
		}
	}
	return true, integral
}

func allMatch(values []ingestion.Value, pred func(ingestion.Value) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}

func presentValues(values []ingestion.Value) []ingestion.Value {
	out := make([]ingestion.Value, 0, len(values))
	for _, v := range values {
		if !v.IsMissing() {
			out = append(out, v)
		}
	}
	return out
}
