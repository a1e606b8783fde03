// Package report renders dataset profiles as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"sort"
	"strconv"
	"strings"
	"time"

	"goeda/domain/profile"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const notAvailable = "n/a"

// Markdown renders the full profile report
func Markdown(p *profile.DatasetProfile) string {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# Data profile: %s\n\n", escapeText(p.Filename))
	if !p.Metadata.AnalyzedAt.IsZero() {
		fmt.Fprintf(&b, "Analyzed %s in %d ms (engine %s).\n\n",
			p.Metadata.AnalyzedAt.Time().UTC().Format(time.RFC3339), p.Metadata.DurationMs, p.Metadata.EngineVersion)
	}

	writeSummary(&b, p)
	writeQuality(&b, p.QualityAssessment)
	writeColumnOverview(&b, p.Columns)
	writeColumnDetails(&b, p.Columns)
	writeCorrelations(&b, p)
	writeCharts(&b, p.ChartSuggestions)

	return b.String()
}

// HTML renders the report as a complete standalone page
func HTML(p *profile.DatasetProfile) []byte {
	return RenderPage("Data profile: "+p.Filename, Markdown(p))
}

// RenderPage converts markdown into a complete HTML page. The title is
// escaped before it reaches the head.
func RenderPage(title, md string) []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	doc := parser.NewWithExtensions(extensions).Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{
		Title: stdhtml.EscapeString(title),
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
		Head:  []byte(pageStyle),
	})
	return markdown.Render(doc, renderer)
}

const pageStyle = `<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 72rem; color: #1f2937; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #d1d5db; padding: 0.3rem 0.6rem; text-align: left; }
th { background: #f3f4f6; }
code { background: #f3f4f6; padding: 0 0.2rem; }
</style>
`

func writeSummary(b *bytes.Buffer, p *profile.DatasetProfile) {
	s := p.Summary
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	rows := [][2]string{
		{"Rows", strconv.Itoa(s.Rows)},
		{"Columns", strconv.Itoa(s.Columns)},
		{"Numeric columns", strconv.Itoa(s.NumericColumns)},
		{"Categorical columns", strconv.Itoa(s.CategoricalColumns)},
		{"Date columns", strconv.Itoa(s.DateColumns)},
		{"Boolean columns", strconv.Itoa(s.BooleanColumns)},
		{"String columns", strconv.Itoa(s.StringColumns)},
		{"Average missing", formatPercent(s.AverageMissingPercentage)},
		{"Duplicate rows", strconv.Itoa(s.DuplicateRows)},
	}
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r[0], r[1])
	}
	b.WriteString("\n")
}

func writeQuality(b *bytes.Buffer, qa profile.QualityAssessment) {
	fmt.Fprintf(b, "## Data quality: %s\n\n", qa.Overall)
	if len(qa.Issues) == 0 && len(qa.Warnings) == 0 {
		b.WriteString("No issues found.\n\n")
		return
	}
	for _, issue := range qa.Issues {
		fmt.Fprintf(b, "- **Issue:** %s\n", escapeText(issue))
	}
	for _, warning := range qa.Warnings {
		fmt.Fprintf(b, "- Warning: %s\n", escapeText(warning))
	}
	b.WriteString("\n")
}

func writeColumnOverview(b *bytes.Buffer, columns []profile.ColumnProfile) {
	b.WriteString("## Columns\n\n")
	b.WriteString("| Column | Type | Missing | Summary |\n|---|---|---|---|\n")
	for _, c := range columns {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			escapeCell(c.Name), c.Type, formatPercent(c.MissingData.MissingPercentage), escapeCell(columnSummary(c)))
	}
	b.WriteString("\n")
}

func columnSummary(c profile.ColumnProfile) string {
	if n := c.Stats.Numeric; n != nil {
		if n.Count == 0 {
			return "no numeric values"
		}
		return fmt.Sprintf("mean %s, range %s to %s", formatStat(n.Mean), formatStat(n.Min), formatStat(n.Max))
	}
	if cat := c.Stats.Categorical; cat != nil {
		if cat.Mode == nil {
			return "no values"
		}
		return fmt.Sprintf("%d unique, mode %q (%d)", cat.UniqueCount, *cat.Mode, cat.ModeFrequency)
	}
	return notAvailable
}

func writeColumnDetails(b *bytes.Buffer, columns []profile.ColumnProfile) {
	b.WriteString("## Column details\n\n")
	for _, c := range columns {
		fmt.Fprintf(b, "### %s (%s)\n\n", escapeText(c.Name), c.Type)
		fmt.Fprintf(b, "%d of %d values present.\n\n", c.MissingData.Present, c.MissingData.Total)

		switch {
		case c.Stats.Numeric != nil:
			writeNumeric(b, c.Stats.Numeric)
			if len(c.Outliers) > 0 {
				parts := make([]string, len(c.Outliers))
				for i, o := range c.Outliers {
					parts[i] = formatFloat(o)
				}
				fmt.Fprintf(b, "Outliers: %s\n\n", strings.Join(parts, ", "))
			}
		case c.Stats.Categorical != nil:
			writeCategorical(b, c.Stats.Categorical)
		}

		if len(c.SampleValues) > 0 {
			parts := make([]string, len(c.SampleValues))
			for i, v := range c.SampleValues {
				parts[i] = "`" + strings.ReplaceAll(v.String(), "`", "'") + "`"
			}
			fmt.Fprintf(b, "Samples: %s\n\n", strings.Join(parts, ", "))
		}
	}
}

func writeNumeric(b *bytes.Buffer, n *profile.NumericStats) {
	b.WriteString("| Count | Mean | Std | Min | Q1 | Median | Q3 | Max | Skewness | Kurtosis |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|---|\n")
	fmt.Fprintf(b, "| %d | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n\n",
		n.Count, formatStat(n.Mean), formatStat(n.Std), formatStat(n.Min), formatStat(n.Q1),
		formatStat(n.Median), formatStat(n.Q3), formatStat(n.Max), formatStat(n.Skewness), formatStat(n.Kurtosis))
}

func writeCategorical(b *bytes.Buffer, c *profile.CategoricalStats) {
	if len(c.TopValues) == 0 {
		b.WriteString("No values.\n\n")
		return
	}
	fmt.Fprintf(b, "%d distinct values.\n\n", c.UniqueCount)
	b.WriteString("| Value | Count | Share |\n|---|---|---|\n")
	for _, v := range c.TopValues {
		fmt.Fprintf(b, "| %s | %d | %s |\n", escapeCell(v.Value), v.Count, formatPercent(v.Percentage))
	}
	b.WriteString("\n")
}

func writeCorrelations(b *bytes.Buffer, p *profile.DatasetProfile) {
	if len(p.Correlations) == 0 {
		return
	}

	// keep dataset column order rather than map order
	names := make([]string, 0, len(p.Correlations))
	for _, c := range p.Columns {
		if _, ok := p.Correlations[c.Name]; ok {
			names = append(names, c.Name)
		}
	}
	if len(names) != len(p.Correlations) {
		names = names[:0]
		for name := range p.Correlations {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	b.WriteString("## Correlations\n\n|  |")
	for _, name := range names {
		fmt.Fprintf(b, " %s |", escapeCell(name))
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---|", len(names)))
	b.WriteString("\n")
	for _, row := range names {
		fmt.Fprintf(b, "| %s |", escapeCell(row))
		for _, col := range names {
			r, _ := p.Correlations.Get(row, col)
			fmt.Fprintf(b, " %s |", formatFloat(r))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeCharts(b *bytes.Buffer, charts []profile.ChartSuggestion) {
	b.WriteString("## Suggested charts\n\n")
	if len(charts) == 0 {
		b.WriteString("No chart suggestions.\n\n")
		return
	}
	for i, c := range charts {
		fmt.Fprintf(b, "%d. **%s** (%s, %s priority): %s\n", i+1, escapeText(c.Title), c.Type, c.Priority, c.Description)
	}
	b.WriteString("\n")
}

func formatStat(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return formatFloat(*v)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatPercent(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64) + "%"
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", " ")

func escapeCell(s string) string {
	return cellEscaper.Replace(escapeText(s))
}

var textEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;", "*", `\*`, "_", `\_`, "`", "'", "[", `\[`, "]", `\]`)

// escapeText keeps user-supplied names from being read as markup
func escapeText(s string) string {
	return textEscaper.Replace(s)
}
