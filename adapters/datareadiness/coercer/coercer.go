package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"goeda/domain/ingestion"
)

// dateLayouts are tried in order when interpreting strings as dates
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"02-Jan-2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
	"2006-01",
}

// booleanWords are the accepted textual booleans, compared case-insensitively
var booleanWords = map[string]bool{
	"true":  true,
	"false": false,
	"yes":   true,
	"no":    false,
	"1":     true,
	"0":     false,
}

// ToNumber converts a value to a finite float64.
// Native booleans and timestamps are not numbers.
func ToNumber(v ingestion.Value) (float64, bool) {
	switch v.Type {
	case ingestion.ValueTypeInteger:
		if v.IntegerVal == nil {
			return 0, false
		}
		return float64(*v.IntegerVal), true
	case ingestion.ValueTypeFloat:
		if v.FloatVal == nil || !isFinite(*v.FloatVal) {
			return 0, false
		}
		return *v.FloatVal, true
	case ingestion.ValueTypeString:
		return parseNumber(v.AsString())
	}
	return 0, false
}

// ToBoolean converts a native boolean or a textual boolean
func ToBoolean(v ingestion.Value) (bool, bool) {
	switch v.Type {
	case ingestion.ValueTypeBoolean:
		if v.BooleanVal == nil {
			return false, false
		}
		return *v.BooleanVal, true
	case ingestion.ValueTypeInteger, ingestion.ValueTypeFloat, ingestion.ValueTypeString:
		b, ok := booleanWords[strings.ToLower(strings.TrimSpace(v.String()))]
		return b, ok
	}
	return false, false
}

// ToTime converts a native timestamp or a date-like string
func ToTime(v ingestion.Value) (time.Time, bool) {
	switch v.Type {
	case ingestion.ValueTypeTimestamp:
		if v.TimestampVal == nil {
			return time.Time{}, false
		}
		return *v.TimestampVal, true
	case ingestion.ValueTypeString:
		return parseTime(v.AsString())
	}
	return time.Time{}, false
}

// IsIntegral reports whether f has no fractional part
func IsIntegral(f float64) bool {
	return f == math.Trunc(f)
}

// parseNumber is the strict conversion used by the analysis engine
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	lower := strings.ToLower(strings.TrimLeft(s, "+-"))
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
			return 0, false
		}
		n, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return 0, false
		}
		return float64(n), true
	}
	if strings.Contains(s, "_") {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(f) {
		return 0, false
	}
	return f, true
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
