package ports

import (
	"goeda/domain/ingestion"
	"goeda/domain/profile"
)

// Profiler runs the analysis engine over a batch of rows. Implementations
// must be safe for concurrent use and must not mutate rows.
type Profiler interface {
	Analyze(rows []ingestion.Row, label string) (*profile.DatasetProfile, error)
}
