package coercer

import (
	"math"
	"strconv"
	"strings"

	"goeda/domain/ingestion"
)

// TypeCoercer runs the ingestion-side majority-vote type guess. Its results
// are display hints only; the analysis engine applies its own all-match rule.
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64 `json:"numeric_threshold"`   // % of values that must parse as numbers
	BooleanThreshold   float64 `json:"boolean_threshold"`   // % of values that must parse as booleans
	TimestampThreshold float64 `json:"timestamp_threshold"` // % of values that must parse as timestamps
	SampleSize         int     `json:"sample_size"`         // Max values inspected per column (0 = all)
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   0.8,
		BooleanThreshold:   0.9,
		TimestampThreshold: 0.8,
		SampleSize:         1000,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int                 `json:"total_count"`
	ValidCount      int                 `json:"valid_count"`
	NumericCount    int                 `json:"numeric_count"`
	BooleanCount    int                 `json:"boolean_count"`
	TimestampCount  int                 `json:"timestamp_count"`
	NumericRatio    float64             `json:"numeric_ratio"`
	BooleanRatio    float64             `json:"boolean_ratio"`
	TimestampRatio  float64             `json:"timestamp_ratio"`
	RecommendedType ingestion.ValueType `json:"recommended_type"`
}

// AnalyzeTypeDistribution analyzes a sample to determine the best type coercion strategy
func (c *TypeCoercer) AnalyzeTypeDistribution(values []ingestion.Value) TypeAnalysis {
	if c.config.SampleSize > 0 && len(values) > c.config.SampleSize {
		values = values[:c.config.SampleSize]
	}

	analysis := TypeAnalysis{
		TotalCount: len(values),
	}

	for _, val := range values {
		if val.IsMissing() {
			continue
		}
		analysis.ValidCount++

		if _, ok := c.tryParseNumeric(val); ok {
			analysis.NumericCount++
		}
		if _, ok := ToBoolean(val); ok {
			analysis.BooleanCount++
		}
		if _, ok := ToTime(val); ok {
			analysis.TimestampCount++
		}
	}

	if analysis.ValidCount > 0 {
		valid := float64(analysis.ValidCount)
		analysis.NumericRatio = float64(analysis.NumericCount) / valid
		analysis.BooleanRatio = float64(analysis.BooleanCount) / valid
		analysis.TimestampRatio = float64(analysis.TimestampCount) / valid
	}

	analysis.RecommendedType = c.determineRecommendedType(analysis)
	return analysis
}

// HintsForTable computes a hint per header
func (c *TypeCoercer) HintsForTable(table *ingestion.Table) []ingestion.ColumnHint {
	hints := make([]ingestion.ColumnHint, 0, len(table.Headers))
	for _, header := range table.Headers {
		values := make([]ingestion.Value, len(table.Rows))
		for i, row := range table.Rows {
			values[i] = row.Value(header)
		}
		analysis := c.AnalyzeTypeDistribution(values)
		hints = append(hints, ingestion.ColumnHint{
			Column:         header,
			Type:           analysis.RecommendedType,
			ValidCount:     analysis.ValidCount,
			NumericRatio:   analysis.NumericRatio,
			BooleanRatio:   analysis.BooleanRatio,
			TimestampRatio: analysis.TimestampRatio,
		})
	}
	return hints
}

// determineRecommendedType chooses the best type based on analysis
func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) ingestion.ValueType {
	if analysis.ValidCount == 0 {
		return ingestion.ValueTypeMissing
	}

	// Check thresholds in order of preference (most restrictive first)
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return ingestion.ValueTypeFloat
	}
	if analysis.BooleanRatio >= c.config.BooleanThreshold {
		return ingestion.ValueTypeBoolean
	}
	if analysis.TimestampRatio >= c.config.TimestampThreshold {
		return ingestion.ValueTypeTimestamp
	}

	return ingestion.ValueTypeString
}

// tryParseNumeric is the lenient parser used for hints only.
// Handles parentheses for negatives, currency symbols, percentages and
// European decimal commas.
func (c *TypeCoercer) tryParseNumeric(v ingestion.Value) (float64, bool) {
	if f, ok := ToNumber(v); ok {
		return f, true
	}
	if !v.IsString() {
		return 0, false
	}

	cleanVal := strings.TrimSpace(v.AsString())

	// Handle parentheses for negative numbers: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY", "%"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		commaIdx := strings.LastIndex(cleanVal, ",")
		afterComma := cleanVal[commaIdx+1:]
		if len(afterComma) <= 2 && strings.Trim(afterComma, "0123456789") == "" {
			// 1.234,56 or 1 234,56
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		}
	case hasComma:
		cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}
