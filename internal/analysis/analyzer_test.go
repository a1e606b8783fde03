package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"goeda/domain/core"
	"goeda/domain/ingestion"
	"goeda/domain/profile"
	apperrors "goeda/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func rowsOf(order []string, maps ...map[string]interface{}) []ingestion.Row {
	rows := make([]ingestion.Row, len(maps))
	for i, m := range maps {
		rows[i] = ingestion.RowFromMap(order, m)
	}
	return rows
}

func analyze(t *testing.T, rows []ingestion.Row) *profile.DatasetProfile {
	t.Helper()
	p, err := NewAnalyzer(WithLogger(zap.NewNop())).Analyze(rows, "test.csv")
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func TestAnalyze_IntegerAndStringColumns(t *testing.T) {
	rows := rowsOf([]string{"a", "b"},
		map[string]interface{}{"a": "1", "b": "x"},
		map[string]interface{}{"a": "2", "b": "y"},
		map[string]interface{}{"a": "3", "b": "x"},
	)

	p := analyze(t, rows)

	a, ok := p.Column("a")
	require.True(t, ok)
	assert.Equal(t, profile.TypeInteger, a.Type)
	require.NotNil(t, a.Stats.Numeric)
	assert.Equal(t, 2.0, *a.Stats.Numeric.Mean)
	assert.Equal(t, 2.0, *a.Stats.Numeric.Median)

	b, ok := p.Column("b")
	require.True(t, ok)
	assert.Equal(t, profile.TypeString, b.Type)
	require.NotNil(t, b.Stats.Categorical)
	require.NotNil(t, b.Stats.Categorical.Mode)
	assert.Equal(t, "x", *b.Stats.Categorical.Mode)
	assert.Equal(t, 2, b.Stats.Categorical.ModeFrequency)
}

func TestAnalyze_FlagsHighOutlier(t *testing.T) {
	rows := rowsOf([]string{"v"},
		map[string]interface{}{"v": "1"},
		map[string]interface{}{"v": "2"},
		map[string]interface{}{"v": "3"},
		map[string]interface{}{"v": "100"},
	)

	p := analyze(t, rows)

	v, ok := p.Column("v")
	require.True(t, ok)
	assert.Equal(t, []float64{100}, v.Outliers)
	// the reported q3 is the descriptive floor index, not the fence quartile
	require.NotNil(t, v.Stats.Numeric.Q3)
	assert.Equal(t, 100.0, *v.Stats.Numeric.Q3)
}

func TestAnalyze_BlankColumnIsEmpty(t *testing.T) {
	rows := rowsOf([]string{"id", "notes"},
		map[string]interface{}{"id": 1, "notes": ""},
		map[string]interface{}{"id": 2, "notes": ""},
		map[string]interface{}{"id": 3, "notes": "   "},
	)

	p := analyze(t, rows)

	notes, ok := p.Column("notes")
	require.True(t, ok)
	assert.Equal(t, notes.MissingData.Total, notes.MissingData.Missing)
	assert.Equal(t, profile.TypeUnknown, notes.Type)
	assert.Contains(t, p.QualityAssessment.Issues, "Column 'notes' is completely empty")
	assert.Equal(t, profile.VerdictPoor, p.QualityAssessment.Overall)
}

func TestAnalyze_RejectsEmptyInput(t *testing.T) {
	analyzer := NewAnalyzer()

	t.Run("no rows", func(t *testing.T) {
		p, err := analyzer.Analyze(nil, "empty")
		assert.Nil(t, p)
		assert.ErrorIs(t, err, core.ErrEmptyDataset)
		assert.Equal(t, apperrors.CodeEmptyDataset, apperrors.GetCode(err))
	})

	t.Run("rows without columns", func(t *testing.T) {
		p, err := analyzer.Analyze([]ingestion.Row{{}}, "empty")
		assert.Nil(t, p)
		assert.ErrorIs(t, err, core.ErrEmptyDataset)
	})
}

func TestAnalyze_PerfectCorrelation(t *testing.T) {
	rows := rowsOf([]string{"x", "y"},
		map[string]interface{}{"x": 1, "y": 2},
		map[string]interface{}{"x": 2, "y": 4},
		map[string]interface{}{"x": 3, "y": 6},
		map[string]interface{}{"x": 4, "y": 8},
	)

	p := analyze(t, rows)

	r, ok := p.Correlations.Get("x", "y")
	require.True(t, ok)
	assert.Equal(t, 1.0, r)
	self, _ := p.Correlations.Get("x", "x")
	assert.Equal(t, 1.0, self)
}

func TestAnalyze_NormalizesColumnNames(t *testing.T) {
	rows := rowsOf([]string{"  First   Name ", "first name", ""},
		map[string]interface{}{"  First   Name ": "ann", "first name": "bob", "": 1},
	)

	p := analyze(t, rows)

	assert.Equal(t, []string{"first_name", "first_name_2", "column_3"}, p.ColumnNames())
	assert.Equal(t, []string{"first_name", "first_name_2", "column_3"}, p.Data[0].Keys())
}

func TestAnalyze_LateKeysAreAppended(t *testing.T) {
	rows := rowsOf([]string{"a", "b"},
		map[string]interface{}{"a": 1},
		map[string]interface{}{"a": 2, "b": "late"},
	)

	p := analyze(t, rows)

	assert.Equal(t, []string{"a", "b"}, p.ColumnNames())
	assert.True(t, p.Data[0].Value("b").IsMissing())
	b, _ := p.Column("b")
	assert.Equal(t, 1, b.MissingData.Missing)
}

func TestAnalyze_DoesNotMutateInput(t *testing.T) {
	rows := rowsOf([]string{"Big Col"},
		map[string]interface{}{"Big Col": "1"},
		map[string]interface{}{"Big Col": "2"},
	)

	p := analyze(t, rows)

	assert.Equal(t, []string{"Big Col"}, rows[0].Keys())
	assert.Equal(t, []string{"big_col"}, p.Data[0].Keys())
}

func TestAnalyze_SummaryAndMetadata(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := rowsOf([]string{"n", "flag", "when", "name"},
		map[string]interface{}{"n": "1.5", "flag": "yes", "when": "2024-01-01", "name": "a"},
		map[string]interface{}{"n": "2.5", "flag": "no", "when": "2024-01-02", "name": "b"},
		map[string]interface{}{"n": "1.5", "flag": "yes", "when": "2024-01-01", "name": "a"},
	)

	p, err := NewAnalyzer(WithClock(func() time.Time { return fixed })).Analyze(rows, "")
	require.NoError(t, err)

	assert.Equal(t, "dataset", p.Filename)
	assert.Equal(t, 3, p.Summary.Rows)
	assert.Equal(t, 4, p.Summary.Columns)
	assert.Equal(t, 1, p.Summary.NumericColumns)
	assert.Equal(t, 2, p.Summary.CategoricalColumns)
	assert.Equal(t, 1, p.Summary.DateColumns)
	assert.Equal(t, 1, p.Summary.BooleanColumns)
	assert.Equal(t, 1, p.Summary.StringColumns)
	assert.Equal(t, 1, p.Summary.DuplicateRows)

	assert.Equal(t, EngineVersion, p.Metadata.EngineVersion)
	assert.True(t, p.Metadata.AnalyzedAt.Time().Equal(fixed))
	assert.Equal(t, int64(0), p.Metadata.DurationMs)
	assert.Equal(t, 1, p.Metadata.ColumnTypes[profile.TypeFloat])
	assert.Equal(t, 0, p.Metadata.ColumnTypes[profile.TypeUnknown])
	assert.Len(t, p.Metadata.ColumnTypes, len(profile.AllTypes))

	assert.Contains(t, p.QualityAssessment.Warnings, "Found 1 duplicate rows")
	assert.Equal(t, profile.VerdictGood, p.QualityAssessment.Overall)
}

func TestAnalyze_SampleValuesAreDistinct(t *testing.T) {
	maps := make([]map[string]interface{}, 0)
	for _, v := range []string{"a", "a", "", "b", "c", "d", "e", "f"} {
		maps = append(maps, map[string]interface{}{"c": v})
	}

	p := analyze(t, rowsOf([]string{"c"}, maps...))

	c, _ := p.Column("c")
	got := make([]string, len(c.SampleValues))
	for i, v := range c.SampleValues {
		got[i] = v.String()
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, got)
}

func TestAnalyze_OutliersCappedAtTen(t *testing.T) {
	maps := make([]map[string]interface{}, 0)
	for i := 0; i < 100; i++ {
		maps = append(maps, map[string]interface{}{"v": 10})
	}
	for i := 0; i < 15; i++ {
		maps = append(maps, map[string]interface{}{"v": 1000 + i})
	}

	p := analyze(t, rowsOf([]string{"v"}, maps...))

	v, _ := p.Column("v")
	assert.Len(t, v.Outliers, MaxDisplayedOutliers)
	assert.Equal(t, 1000.0, v.Outliers[0])
}

func TestAnalyze_ProfileIsJSONSafe(t *testing.T) {
	rows := rowsOf([]string{"one", "const", "text"},
		map[string]interface{}{"one": 5, "const": 1, "text": "x"},
		map[string]interface{}{"one": nil, "const": 1, "text": "y"},
	)

	p := analyze(t, rows)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded profile.DatasetProfile
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, p.ColumnNames(), decoded.ColumnNames())

	one, _ := decoded.Column("one")
	require.NotNil(t, one.Stats.Numeric)
	assert.Equal(t, 1, one.Stats.Numeric.Count)
	assert.Nil(t, one.Stats.Numeric.Std)
	assert.Nil(t, one.Stats.Numeric.Skewness)
}

func TestAnalyze_Properties(t *testing.T) {
	rows := rowsOf([]string{"a", "b", "c", "label"},
		map[string]interface{}{"a": 3, "b": 9.5, "c": 1, "label": "p"},
		map[string]interface{}{"a": 1, "b": "", "c": 4, "label": "q"},
		map[string]interface{}{"a": 8, "b": 2.25, "c": 4, "label": nil},
		map[string]interface{}{"a": 5, "b": 7.0, "c": 2, "label": "p"},
		map[string]interface{}{"a": 13, "b": 1.5, "c": 9, "label": "r"},
		map[string]interface{}{"a": 2, "b": 6.0, "c": 3, "label": "q"},
		map[string]interface{}{"a": 21, "b": 4.75, "c": 7, "label": "p"},
	)

	p := analyze(t, rows)

	for _, c := range p.Columns {
		md := c.MissingData
		assert.Equal(t, md.Total, md.Missing+md.Present, c.Name)
		assert.InDelta(t, 100.0, md.MissingPercentage+md.PresentPercentage, 0.01, c.Name)

		if n := c.Stats.Numeric; n != nil && n.Count > 0 {
			assert.LessOrEqual(t, *n.Min, *n.Q1, c.Name)
			assert.LessOrEqual(t, *n.Q1, *n.Median, c.Name)
			assert.LessOrEqual(t, *n.Median, *n.Q3, c.Name)
			assert.LessOrEqual(t, *n.Q3, *n.Max, c.Name)
		}
	}

	numeric := []string{"a", "b", "c"}
	for _, x := range numeric {
		for _, y := range numeric {
			rxy, ok := p.Correlations.Get(x, y)
			require.True(t, ok)
			ryx, _ := p.Correlations.Get(y, x)
			assert.Equal(t, rxy, ryx)
		}
	}
	self, _ := p.Correlations.Get("a", "a")
	assert.Equal(t, 1.0, self)

	// b has one missing value, so its valid count differs from a
	ab, _ := p.Correlations.Get("a", "b")
	assert.Equal(t, 0.0, ab)

	var types []profile.ChartType
	for _, s := range p.ChartSuggestions {
		types = append(types, s.Type)
	}
	assert.Contains(t, types, profile.ChartScatter)
	assert.Contains(t, types, profile.ChartHeatmap)
}

func TestAnalyze_ConcurrentCallsAreIndependent(t *testing.T) {
	analyzer := NewAnalyzer()
	rows := rowsOf([]string{"x", "y"},
		map[string]interface{}{"x": 1, "y": "a"},
		map[string]interface{}{"x": 2, "y": "b"},
		map[string]interface{}{"x": 3, "y": "a"},
	)

	results := make(chan *profile.DatasetProfile, 8)
	for i := 0; i < 8; i++ {
		go func() {
			p, err := analyzer.Analyze(rows, "concurrent")
			if err != nil {
				results <- nil
				return
			}
			results <- p
		}()
	}

	for i := 0; i < 8; i++ {
		p := <-results
		require.NotNil(t, p)
		x, _ := p.Column("x")
		assert.Equal(t, 2.0, *x.Stats.Numeric.Mean)
	}
}
