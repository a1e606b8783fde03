package profile

import (
	"encoding/json"
	"fmt"

	"goeda/domain/core"
	"goeda/domain/ingestion"
)

// ColumnType is the inferred type of a column. Assigned once per analysis.
type ColumnType string

const (
	TypeInteger ColumnType = "integer"
	TypeFloat   ColumnType = "float"
	TypeBoolean ColumnType = "boolean"
	TypeDate    ColumnType = "date"
	TypeString  ColumnType = "string"
	TypeUnknown ColumnType = "unknown"
)

// AllTypes lists every column type in display order
var AllTypes = []ColumnType{TypeInteger, TypeFloat, TypeBoolean, TypeDate, TypeString, TypeUnknown}

// IsNumeric reports whether the type takes the numeric statistics path
func (t ColumnType) IsNumeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// IsCategorical reports whether the type counts as categorical for chart rules
func (t ColumnType) IsCategorical() bool {
	return t == TypeString || t == TypeBoolean
}

// IsDate reports whether the type is a date
func (t ColumnType) IsDate() bool {
	return t == TypeDate
}

// MissingData describes missingness for one column
type MissingData struct {
	Total             int     `json:"total"`
	Missing           int     `json:"missing"`
	Present           int     `json:"present"`
	MissingPercentage float64 `json:"missingPercentage"`
	PresentPercentage float64 `json:"presentPercentage"`
}

// NumericStats holds numeric summaries. Nil fields marshal as null and mark
// statistics that are undefined for the sample.
type NumericStats struct {
	Count    int      `json:"count"`
	Mean     *float64 `json:"mean"`
	Median   *float64 `json:"median"`
	Std      *float64 `json:"std"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Q1       *float64 `json:"q1"`
	Q3       *float64 `json:"q3"`
	Variance *float64 `json:"variance"`
	Skewness *float64 `json:"skewness"`
	Kurtosis *float64 `json:"kurtosis"`
}

// ValueCount is one entry of a frequency table
type ValueCount struct {
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CategoricalStats holds frequency summaries
type CategoricalStats struct {
	Count         int          `json:"count"`
	UniqueCount   int          `json:"uniqueCount"`
	Mode          *string      `json:"mode"`
	ModeFrequency int          `json:"modeFrequency"`
	ValueCounts   []ValueCount `json:"valueCounts"`
	TopValues     []ValueCount `json:"topValues"`
}

// ColumnStats carries exactly one of the numeric or categorical shapes
type ColumnStats struct {
	Numeric     *NumericStats
	Categorical *CategoricalStats
}

// MarshalJSON flattens whichever shape is set
func (s ColumnStats) MarshalJSON() ([]byte, error) {
	switch {
	case s.Numeric != nil:
		return json.Marshal(s.Numeric)
	case s.Categorical != nil:
		return json.Marshal(s.Categorical)
	}
	return []byte("null"), nil
}

// UnmarshalJSON picks the shape by its distinguishing fields
func (s *ColumnStats) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ColumnStats{}
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if _, ok := fields["uniqueCount"]; ok {
		var c CategoricalStats
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		*s = ColumnStats{Categorical: &c}
		return nil
	}
	var n NumericStats
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = ColumnStats{Numeric: &n}
	return nil
}

// ColumnProfile is the per-column analysis result
type ColumnProfile struct {
	Name         string            `json:"name"`
	Type         ColumnType        `json:"type"`
	MissingData  MissingData       `json:"missingData"`
	Stats        ColumnStats       `json:"stats"`
	Outliers     []float64         `json:"outliers"`
	SampleValues []ingestion.Value `json:"sampleValues"`
}

// Summary aggregates dataset-level counts
type Summary struct {
	Rows                     int     `json:"rows"`
	Columns                  int     `json:"columns"`
	NumericColumns           int     `json:"numericColumns"`
	CategoricalColumns       int     `json:"categoricalColumns"`
	DateColumns              int     `json:"dateColumns"`
	BooleanColumns           int     `json:"booleanColumns"`
	StringColumns            int     `json:"stringColumns"`
	AverageMissingPercentage float64 `json:"averageMissingPercentage"`
	DuplicateRows            int     `json:"duplicateRows"`
}

// CorrelationMatrix maps column -> column -> Pearson r
type CorrelationMatrix map[string]map[string]float64

// Get returns r for the pair and whether both columns are in the matrix
func (m CorrelationMatrix) Get(a, b string) (float64, bool) {
	row, ok := m[a]
	if !ok {
		return 0, false
	}
	r, ok := row[b]
	return r, ok
}

// ChartType names a visualization
type ChartType string

const (
	ChartHistogram ChartType = "histogram"
	ChartBoxplot   ChartType = "boxplot"
	ChartScatter   ChartType = "scatter"
	ChartHeatmap   ChartType = "heatmap"
	ChartBar       ChartType = "bar"
	ChartPie       ChartType = "pie"
	ChartLine      ChartType = "line"
)

// Priority is an ordinal ranking; higher values sort first
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

var priorityNames = map[Priority]string{
	PriorityLow:    "low",
	PriorityMedium: "medium",
	PriorityHigh:   "high",
}

// String returns the wire name of the priority
func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// ParsePriority parses a wire name
func ParsePriority(s string) (Priority, error) {
	for p, name := range priorityNames {
		if name == s {
			return p, nil
		}
	}
	return PriorityLow, fmt.Errorf("unknown priority %q", s)
}

// MarshalJSON writes the wire name
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON reads the wire name
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ChartSuggestion is a recommended visualization
type ChartSuggestion struct {
	Type        ChartType `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	X           string    `json:"x,omitempty"`
	Y           string    `json:"y,omitempty"`
	Priority    Priority  `json:"priority"`
}

// Verdict is the overall data-quality rating
type Verdict string

const (
	VerdictExcellent Verdict = "excellent"
	VerdictGood      Verdict = "good"
	VerdictPoor      Verdict = "poor"
)

// QualityAssessment lists blocking issues and advisory warnings
type QualityAssessment struct {
	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`
	Overall  Verdict  `json:"overall"`
}

// Metadata stamps an analysis run
type Metadata struct {
	AnalyzedAt    core.Timestamp     `json:"analyzedAt"`
	ColumnTypes   map[ColumnType]int `json:"columnTypes"`
	EngineVersion string             `json:"engineVersion"`
	DurationMs    int64              `json:"durationMs"`
}

// DatasetProfile is the complete analysis output for one dataset.
// It is never mutated after the analyzer returns it.
type DatasetProfile struct {
	Filename          string            `json:"filename"`
	Data              []ingestion.Row   `json:"data"`
	Columns           []ColumnProfile   `json:"columns"`
	Summary           Summary           `json:"summary"`
	Correlations      CorrelationMatrix `json:"correlations"`
	ChartSuggestions  []ChartSuggestion `json:"chartSuggestions"`
	QualityAssessment QualityAssessment `json:"qualityAssessment"`
	Metadata          Metadata          `json:"metadata"`
}

// Column returns the profile of the named column
func (p *DatasetProfile) Column(name string) (*ColumnProfile, bool) {
	for i := range p.Columns {
		if p.Columns[i].Name == name {
			return &p.Columns[i], true
		}
	}
	return nil, false
}

// ColumnNames returns column names in dataset order
func (p *DatasetProfile) ColumnNames() []string {
	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = c.Name
	}
	return names
}
