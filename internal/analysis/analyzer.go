package analysis

import (
	"time"

	"goeda/domain/core"
	"goeda/domain/ingestion"
	"goeda/domain/profile"
	apperrors "goeda/internal/errors"

	"go.uber.org/zap"
)

const (
	// EngineVersion is stamped into every profile's metadata
	EngineVersion = "1.0.0"

	defaultLabel    = "dataset"
	maxSampleValues = 5
)

// Analyzer turns raw rows into a DatasetProfile. It holds no per-call state
// and is safe for concurrent use.
type Analyzer struct {
	logger *zap.Logger
	clock  func() time.Time
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithLogger sets the logger used for per-run debug output
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClock overrides the time source used for the metadata stamp
func WithClock(clock func() time.Time) Option {
	return func(a *Analyzer) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		logger: zap.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.Named("analysis")
	return a
}

// Analyze profiles rows under the given label. It fails only when there are
// no rows or no columns; every other degenerate input yields a profile.
func (a *Analyzer) Analyze(rows []ingestion.Row, label string) (*profile.DatasetProfile, error) {
	started := a.clock()
	if label == "" {
		label = defaultLabel
	}

	if len(rows) == 0 {
		return nil, apperrors.WithCode(apperrors.CodeEmptyDataset, core.ErrEmptyDataset)
	}

	names, clean := NormalizeRows(rows)
	if len(names) == 0 {
		return nil, apperrors.WithCode(apperrors.CodeEmptyDataset, core.ErrEmptyDataset)
	}

	columns := make([]profile.ColumnProfile, len(names))
	numericNames := make([]string, 0, len(names))
	numericSamples := make(map[string][]float64)

	for i, name := range names {
		values := columnValues(clean, name)
		column, sample := profileColumn(name, values)
		columns[i] = column
		if column.Type.IsNumeric() {
			numericNames = append(numericNames, name)
			numericSamples[name] = sample
		}
	}

	correlations := CorrelationMatrix(numericNames, numericSamples)
	duplicates := CountDuplicateRows(clean)

	result := &profile.DatasetProfile{
		Filename:          label,
		Data:              clean,
		Columns:           columns,
		Summary:           summarize(len(clean), duplicates, columns),
		Correlations:      correlations,
		ChartSuggestions:  SuggestCharts(columns),
		QualityAssessment: AssessQuality(len(clean), duplicates, columns),
	}

	finished := a.clock()
	result.Metadata = profile.Metadata{
		AnalyzedAt:    core.NewTimestamp(finished),
		ColumnTypes:   countTypes(columns),
		EngineVersion: EngineVersion,
		DurationMs:    finished.Sub(started).Milliseconds(),
	}

	a.logger.Debug("dataset analyzed",
		zap.String("label", label),
		zap.Int("rows", len(clean)),
		zap.Int("columns", len(columns)),
		zap.Int("numeric_columns", len(numericNames)),
		zap.String("verdict", string(result.QualityAssessment.Overall)),
		zap.Int64("duration_ms", result.Metadata.DurationMs),
	)

	return result, nil
}

// profileColumn runs inference, statistics, missingness and outliers for one
// column. The numeric sample is returned for the correlation pass.
func profileColumn(name string, values []ingestion.Value) (profile.ColumnProfile, []float64) {
	column := profile.ColumnProfile{
		Name:         name,
		Type:         InferType(values),
		MissingData:  ComputeMissingData(values),
		Outliers:     make([]float64, 0),
		SampleValues: sampleValues(values),
	}

	if !column.Type.IsNumeric() {
		stats := ComputeCategoricalStats(values)
		column.Stats = profile.ColumnStats{Categorical: &stats}
		return column, nil
	}

	sample := NumericSample(values)
	stats := numericStatsFromSample(sample)
	column.Stats = profile.ColumnStats{Numeric: &stats}

	outliers := DetectOutliers(sample)
	if len(outliers) > MaxDisplayedOutliers {
		outliers = outliers[:MaxDisplayedOutliers]
	}
	column.Outliers = outliers
	return column, sample
}

func sampleValues(values []ingestion.Value) []ingestion.Value {
	samples := make([]ingestion.Value, 0, maxSampleValues)
	seen := make(map[string]bool, maxSampleValues)
	for _, v := range values {
		if len(samples) == maxSampleValues {
			break
		}
		if v.IsMissing() {
			continue
		}
		key := v.Canonical()
		if seen[key] {
			continue
		}
		seen[key] = true
		samples = append(samples, v)
	}
	return samples
}

func summarize(rowCount, duplicates int, columns []profile.ColumnProfile) profile.Summary {
	s := profile.Summary{
		Rows:          rowCount,
		Columns:       len(columns),
		DuplicateRows: duplicates,
	}

	missingTotal := 0.0
	for _, c := range columns {
		missingTotal += c.MissingData.MissingPercentage
		switch {
		case c.Type.IsNumeric():
			s.NumericColumns++
		case c.Type.IsCategorical():
			s.CategoricalColumns++
		case c.Type.IsDate():
			s.DateColumns++
		}
		switch c.Type {
		case profile.TypeBoolean:
			s.BooleanColumns++
		case profile.TypeString:
			s.StringColumns++
		}
	}
	if len(columns) > 0 {
		s.AverageMissingPercentage = roundTo(missingTotal/float64(len(columns)), percentPrecision)
	}
	return s
}

func countTypes(columns []profile.ColumnProfile) map[profile.ColumnType]int {
	counts := make(map[profile.ColumnType]int, len(profile.AllTypes))
	for _, t := range profile.AllTypes {
		counts[t] = 0
	}
	for _, c := range columns {
		counts[c.Type]++
	}
	return counts
}
