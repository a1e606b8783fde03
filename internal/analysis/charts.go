package analysis

import (
	"fmt"
	"sort"

	"goeda/domain/profile"
)

// columnGroups splits the column list by chart role, keeping dataset order
type columnGroups struct {
	numeric     []string
	categorical []string
	date        []string
}

func groupColumns(columns []profile.ColumnProfile) columnGroups {
	var g columnGroups
	for _, c := range columns {
		switch {
		case c.Type.IsNumeric():
			g.numeric = append(g.numeric, c.Name)
		case c.Type.IsCategorical():
			g.categorical = append(g.categorical, c.Name)
		case c.Type.IsDate():
			g.date = append(g.date, c.Name)
		}
	}
	return g
}

// SuggestCharts applies the fixed rule table to the column model and returns
// suggestions ordered by priority, ties in rule order
func SuggestCharts(columns []profile.ColumnProfile) []profile.ChartSuggestion {
	g := groupColumns(columns)
	suggestions := make([]profile.ChartSuggestion, 0, 7)

	if len(g.numeric) >= 1 {
		x := g.numeric[0]
		suggestions = append(suggestions,
			profile.ChartSuggestion{
				Type:        profile.ChartHistogram,
				Title:       fmt.Sprintf("Distribution of %s", x),
				Description: "Shows the frequency distribution of numeric values",
				X:           x,
				Priority:    profile.PriorityHigh,
			},
			profile.ChartSuggestion{
				Type:        profile.ChartBoxplot,
				Title:       fmt.Sprintf("Box plot of %s", x),
				Description: "Shows quartiles and outliers",
				X:           x,
				Priority:    profile.PriorityMedium,
			},
		)
	}

	if len(g.numeric) >= 2 {
		x, y := g.numeric[0], g.numeric[1]
		suggestions = append(suggestions, profile.ChartSuggestion{
			Type:        profile.ChartScatter,
			Title:       fmt.Sprintf("%s vs %s", y, x),
			Description: "Shows the relationship between two numeric variables",
			X:           x,
			Y:           y,
			Priority:    profile.PriorityHigh,
		})
	}

	if len(g.numeric) >= 3 {
		suggestions = append(suggestions, profile.ChartSuggestion{
			Type:        profile.ChartHeatmap,
			Title:       "Correlation matrix",
			Description: "Shows pairwise correlations between numeric variables",
			Priority:    profile.PriorityMedium,
		})
	}

	if len(g.categorical) >= 1 && len(g.numeric) >= 1 {
		x, y := g.categorical[0], g.numeric[0]
		suggestions = append(suggestions, profile.ChartSuggestion{
			Type:        profile.ChartBar,
			Title:       fmt.Sprintf("%s by %s", y, x),
			Description: "Compares a numeric value across categories",
			X:           x,
			Y:           y,
			Priority:    profile.PriorityHigh,
		})
	}

	if len(g.categorical) >= 1 {
		x := g.categorical[0]
		suggestions = append(suggestions, profile.ChartSuggestion{
			Type:        profile.ChartPie,
			Title:       fmt.Sprintf("Composition of %s", x),
			Description: "Shows the share of each category",
			X:           x,
			Priority:    profile.PriorityMedium,
		})
	}

	if len(g.date) >= 1 && len(g.numeric) >= 1 {
		x, y := g.date[0], g.numeric[0]
		suggestions = append(suggestions, profile.ChartSuggestion{
			Type:        profile.ChartLine,
			Title:       fmt.Sprintf("%s over time", y),
			Description: "Shows the trend of a numeric value over time",
			X:           x,
			Y:           y,
			Priority:    profile.PriorityHigh,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Priority > suggestions[j].Priority
	})
	return suggestions
}
