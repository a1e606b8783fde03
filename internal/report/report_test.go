package report

import (
	"strings"
	"testing"
	"time"

	"goeda/domain/core"
	"goeda/domain/ingestion"
	"goeda/domain/profile"
	"goeda/internal/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfile(t *testing.T) *profile.DatasetProfile {
	t.Helper()
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	analyzer := analysis.NewAnalyzer(analysis.WithClock(func() time.Time { return fixed }))

	order := []string{"price", "qty", "city"}
	rows := []ingestion.Row{
		ingestion.RowFromMap(order, map[string]interface{}{"price": 10, "qty": 1, "city": "Oslo"}),
		ingestion.RowFromMap(order, map[string]interface{}{"price": 20, "qty": 2, "city": "Bergen"}),
		ingestion.RowFromMap(order, map[string]interface{}{"price": 30, "qty": 3, "city": "Oslo"}),
		ingestion.RowFromMap(order, map[string]interface{}{"price": nil, "qty": 4, "city": "a|b"}),
	}
	p, err := analyzer.Analyze(rows, "sales.csv")
	require.NoError(t, err)
	return p
}

func TestMarkdownSections(t *testing.T) {
	md := Markdown(sampleProfile(t))

	for _, heading := range []string{
		"# Data profile: sales.csv",
		"## Summary",
		"## Data quality:",
		"## Columns",
		"## Column details",
		"## Correlations",
		"## Suggested charts",
	} {
		assert.Contains(t, md, heading)
	}
	assert.Contains(t, md, "| Rows | 4 |")
	assert.Contains(t, md, "### price (integer)")
	assert.Contains(t, md, "3 of 4 values present.")
	assert.Contains(t, md, "Analyzed 2024-03-01T12:00:00Z")
}

func TestMarkdownEscapesPipesInCells(t *testing.T) {
	md := Markdown(sampleProfile(t))
	assert.Contains(t, md, `a\|b`)
}

func TestMarkdownCorrelationOrderFollowsColumns(t *testing.T) {
	md := Markdown(sampleProfile(t))
	idx := strings.Index(md, "## Correlations")
	require.GreaterOrEqual(t, idx, 0)
	section := md[idx:]
	assert.Less(t, strings.Index(section, "price"), strings.Index(section, "qty"))
}

func TestMarkdownWithoutOptionalSections(t *testing.T) {
	p := &profile.DatasetProfile{
		Filename:          "empty.csv",
		QualityAssessment: profile.QualityAssessment{Overall: profile.VerdictExcellent},
		Metadata:          profile.Metadata{AnalyzedAt: core.NewTimestamp(time.Time{})},
	}
	md := Markdown(p)
	assert.NotContains(t, md, "## Correlations")
	assert.Contains(t, md, "No issues found.")
	assert.Contains(t, md, "No chart suggestions.")
	assert.NotContains(t, md, "Analyzed")
}

func TestFormatStat(t *testing.T) {
	v := 1.5
	assert.Equal(t, "1.5", formatStat(&v))
	assert.Equal(t, notAvailable, formatStat(nil))
	assert.Equal(t, "12.50%", formatPercent(12.5))
}

func TestHTMLIsCompletePage(t *testing.T) {
	out := string(HTML(sampleProfile(t)))
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "<title>Data profile: sales.csv</title>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "Summary</h2>")
}

func TestRenderPageEscapesTitle(t *testing.T) {
	out := string(RenderPage("Data profile: </title><script>alert(3)</script>", "body"))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<title>Data profile: &lt;/title&gt;&lt;script&gt;alert(3)&lt;/script&gt;</title>")
}

func TestEscapeTextNeutralizesMarkup(t *testing.T) {
	assert.Equal(t, "&lt;script&gt;", escapeText("<script>"))
	assert.Equal(t, `\*bold\*`, escapeText("*bold*"))
}
