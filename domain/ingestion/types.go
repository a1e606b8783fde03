package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Value represents a raw cell as a tagged variant.
// Exactly one of the typed pointers is set, matching Type; missing values set none.
type Value struct {
	Type         ValueType  `json:"type"`
	StringVal    *string    `json:"string_val,omitempty"`
	IntegerVal   *int64     `json:"integer_val,omitempty"`
	FloatVal     *float64   `json:"float_val,omitempty"`
	BooleanVal   *bool      `json:"boolean_val,omitempty"`
	TimestampVal *time.Time `json:"timestamp_val,omitempty"`
}

// ValueType defines the storage type for values
type ValueType string

const (
	ValueTypeMissing   ValueType = "missing"
	ValueTypeInteger   ValueType = "integer"
	ValueTypeFloat     ValueType = "float"
	ValueTypeBoolean   ValueType = "boolean"
	ValueTypeTimestamp ValueType = "timestamp"
	ValueTypeString    ValueType = "string"
)

// NewStringValue creates a string value. The empty string is missing.
func NewStringValue(s string) Value {
	if s == "" {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeString, StringVal: &s}
}

// NewIntegerValue creates an integer value
func NewIntegerValue(n int64) Value {
	return Value{Type: ValueTypeInteger, IntegerVal: &n}
}

// NewFloatValue creates a float value. NaN is kept so that missingness can see it.
func NewFloatValue(f float64) Value {
	return Value{Type: ValueTypeFloat, FloatVal: &f}
}

// NewBooleanValue creates a boolean value
func NewBooleanValue(b bool) Value {
	return Value{Type: ValueTypeBoolean, BooleanVal: &b}
}

// NewTimestampValue creates a timestamp value
func NewTimestampValue(t time.Time) Value {
	return Value{Type: ValueTypeTimestamp, TimestampVal: &t}
}

// NewMissingValue creates a missing value
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing}
}

// ValueOf maps a dynamically typed Go scalar onto the variant without parsing
// strings; string interpretation is left to the analysis engine.
func ValueOf(raw interface{}) Value {
	switch v := raw.(type) {
	case nil:
		return NewMissingValue()
	case Value:
		return v
	case string:
		return NewStringValue(v)
	case bool:
		return NewBooleanValue(v)
	case int:
		return NewIntegerValue(int64(v))
	case int8:
		return NewIntegerValue(int64(v))
	case int16:
		return NewIntegerValue(int64(v))
	case int32:
		return NewIntegerValue(int64(v))
	case int64:
		return NewIntegerValue(v)
	case uint:
		return NewIntegerValue(int64(v))
	case uint8:
		return NewIntegerValue(int64(v))
	case uint16:
		return NewIntegerValue(int64(v))
	case uint32:
		return NewIntegerValue(int64(v))
	case uint64:
		if v > math.MaxInt64 {
			return NewFloatValue(float64(v))
		}
		return NewIntegerValue(int64(v))
	case float32:
		return NewFloatValue(float64(v))
	case float64:
		return NewFloatValue(v)
	case json.Number:
		return numberValue(v)
	case time.Time:
		return NewTimestampValue(v)
	case fmt.Stringer:
		return NewStringValue(v.String())
	default:
		return NewStringValue(fmt.Sprintf("%v", v))
	}
}

// IsMissing reports whether the value counts as missing: null, empty or
// whitespace-only string, or NaN.
func (v Value) IsMissing() bool {
	switch v.Type {
	case ValueTypeMissing, "":
		return true
	case ValueTypeString:
		return v.StringVal == nil || strings.TrimSpace(*v.StringVal) == ""
	case ValueTypeFloat:
		return v.FloatVal == nil || math.IsNaN(*v.FloatVal)
	case ValueTypeInteger:
		return v.IntegerVal == nil
	case ValueTypeBoolean:
		return v.BooleanVal == nil
	case ValueTypeTimestamp:
		return v.TimestampVal == nil
	}
	return true
}

// IsNumeric returns true if the value is a native number
func (v Value) IsNumeric() bool {
	return (v.Type == ValueTypeInteger && v.IntegerVal != nil) ||
		(v.Type == ValueTypeFloat && v.FloatVal != nil)
}

// IsString returns true if the value represents a valid string
func (v Value) IsString() bool {
	return v.Type == ValueTypeString && v.StringVal != nil
}

// IsBoolean returns true if the value represents a valid boolean
func (v Value) IsBoolean() bool {
	return v.Type == ValueTypeBoolean && v.BooleanVal != nil
}

// IsTimestamp returns true if the value represents a valid timestamp
func (v Value) IsTimestamp() bool {
	return v.Type == ValueTypeTimestamp && v.TimestampVal != nil
}

// AsFloat64 returns the numeric value as float64, or 0 if not numeric
func (v Value) AsFloat64() float64 {
	switch {
	case v.IntegerVal != nil:
		return float64(*v.IntegerVal)
	case v.FloatVal != nil:
		return *v.FloatVal
	}
	return 0.0
}

// AsString returns the string value, or empty string if not a string
func (v Value) AsString() string {
	if v.StringVal != nil {
		return *v.StringVal
	}
	return ""
}

// AsBoolean returns the boolean value, or false if not a boolean
func (v Value) AsBoolean() bool {
	if v.BooleanVal != nil {
		return *v.BooleanVal
	}
	return false
}

// String returns the display form used for frequency tables and previews
func (v Value) String() string {
	switch v.Type {
	case ValueTypeString:
		return v.AsString()
	case ValueTypeInteger:
		if v.IntegerVal != nil {
			return strconv.FormatInt(*v.IntegerVal, 10)
		}
	case ValueTypeFloat:
		if v.FloatVal != nil {
			return formatFloat(*v.FloatVal)
		}
	case ValueTypeBoolean:
		if v.BooleanVal != nil {
			return strconv.FormatBool(*v.BooleanVal)
		}
	case ValueTypeTimestamp:
		if v.TimestampVal != nil {
			return v.TimestampVal.Format(time.RFC3339)
		}
	}
	return ""
}

// Canonical returns a type-tagged encoding used for row equality
func (v Value) Canonical() string {
	if v.Type == ValueTypeMissing || v.Type == "" {
		return "null"
	}
	return string(v.Type) + ":" + v.String()
}

// Raw returns a JSON-safe Go scalar. Non-finite floats become nil.
func (v Value) Raw() interface{} {
	switch v.Type {
	case ValueTypeString:
		if v.StringVal != nil {
			return *v.StringVal
		}
	case ValueTypeInteger:
		if v.IntegerVal != nil {
			return *v.IntegerVal
		}
	case ValueTypeFloat:
		if v.FloatVal != nil && !math.IsNaN(*v.FloatVal) && !math.IsInf(*v.FloatVal, 0) {
			return *v.FloatVal
		}
	case ValueTypeBoolean:
		if v.BooleanVal != nil {
			return *v.BooleanVal
		}
	case ValueTypeTimestamp:
		if v.TimestampVal != nil {
			return v.TimestampVal.Format(time.RFC3339)
		}
	}
	return nil
}

// MarshalJSON writes the raw scalar
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw())
}

// UnmarshalJSON reads a raw JSON scalar into the variant. Nested objects and
// arrays are kept as their JSON text.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch raw.(type) {
	case map[string]interface{}, []interface{}:
		*v = NewStringValue(string(bytes.TrimSpace(data)))
	default:
		*v = ValueOf(raw)
	}
	return nil
}

func numberValue(n json.Number) Value {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return NewIntegerValue(i)
		}
	}
	f, err := n.Float64()
	if err != nil {
		return NewStringValue(s)
	}
	return NewFloatValue(f)
}

func formatFloat(f float64) string {
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// IngestionError represents a row the reader could not use
type IngestionError struct {
	RowIndex int    `json:"row_index"`
	Message  string `json:"message"`
}

// ColumnHint is the ingestion-side, majority-vote type guess for a column.
// It is display metadata only and never feeds the analysis engine.
type ColumnHint struct {
	Column         string    `json:"column"`
	Type           ValueType `json:"type"`
	ValidCount     int       `json:"valid_count"`
	NumericRatio   float64   `json:"numeric_ratio"`
	BooleanRatio   float64   `json:"boolean_ratio"`
	TimestampRatio float64   `json:"timestamp_ratio"`
}

// FileInfo contains file-specific metadata
type FileInfo struct {
	Format    string `json:"format"`
	Delimiter string `json:"delimiter,omitempty"`
	SheetName string `json:"sheet_name,omitempty"`
}

// Table is the output of the ingestion collaborator
type Table struct {
	Name     string           `json:"name"`
	Headers  []string         `json:"headers"`
	Rows     []Row            `json:"rows"`
	Hints    []ColumnHint     `json:"hints,omitempty"`
	FileInfo FileInfo         `json:"file_info"`
	Errors   []IngestionError `json:"errors,omitempty"`
}
