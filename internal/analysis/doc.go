// Package analysis is the dataset profiling engine: type inference,
// descriptive statistics, missingness, IQR outliers, Pearson correlation,
// chart recommendation and data-quality assessment.
//
// Every function in the package is a total function over its inputs. Only
// Analyzer.Analyze returns an error, and only for empty input. Undefined
// statistics surface as nil (JSON null) or 0, never NaN.
package analysis
