package dataset

import (
	"time"

	"goeda/domain/core"
	"goeda/domain/profile"
)

// DatasetStatus represents the processing state of a dataset
type DatasetStatus string

const (
	StatusProcessing DatasetStatus = "processing"
	StatusReady      DatasetStatus = "ready"
	StatusFailed     DatasetStatus = "failed"
)

// Source records how a dataset entered the system
type Source string

const (
	SourceUpload Source = "upload"
	SourceAPI    Source = "api"
	SourceCLI    Source = "cli"
)

// Dataset represents a stored dataset together with its latest profile
type Dataset struct {
	ID core.DatasetID `json:"id"`

	// File information
	OriginalFilename string `json:"original_filename"`
	Label            string `json:"label"`
	Source           Source `json:"source"`

	// Dataset statistics
	RecordCount int             `json:"record_count"`
	FieldCount  int             `json:"field_count"`
	MissingRate float64         `json:"missing_rate"`
	Verdict     profile.Verdict `json:"verdict,omitempty"`

	// Processing state
	Status       DatasetStatus `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`

	Metadata DatasetMetadata `json:"metadata"`

	// Profile is nil until analysis succeeds
	Profile *profile.DatasetProfile `json:"profile,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DatasetMetadata contains ingestion details for the dataset
type DatasetMetadata struct {
	FileInfo FileInfo `json:"file_info"`
	Hints    []Hint   `json:"hints,omitempty"`
}

// FileInfo contains file-specific metadata
type FileInfo struct {
	Format      string `json:"format,omitempty"`
	Delimiter   string `json:"delimiter,omitempty"`
	HasHeaders  bool   `json:"has_headers"`
	SkippedRows int    `json:"skipped_rows,omitempty"`
	SheetName   string `json:"sheet_name,omitempty"` // for Excel files
}

// Hint is the reader's display-only guess at a column type
type Hint struct {
	Column string  `json:"column"`
	Type   string  `json:"type"`
	Ratio  float64 `json:"ratio"`
}

// NewDataset creates a new dataset with default values
func NewDataset(originalFilename string, source Source) *Dataset {
	now := time.Now().UTC()
	return &Dataset{
		ID:               core.DatasetID(core.NewID()),
		OriginalFilename: originalFilename,
		Label:            originalFilename,
		Source:           source,
		Status:           StatusProcessing,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsReady returns true if the dataset is ready for use
func (d *Dataset) IsReady() bool {
	return d.Status == StatusReady
}

// GetDisplayName returns the label or falls back to the original filename
func (d *Dataset) GetDisplayName() string {
	if d.Label != "" {
		return d.Label
	}
	return d.OriginalFilename
}

// MarkReady attaches a profile and copies its headline numbers onto the record
func (d *Dataset) MarkReady(p *profile.DatasetProfile) {
	d.Profile = p
	d.Status = StatusReady
	d.ErrorMessage = ""
	d.RecordCount = p.Summary.Rows
	d.FieldCount = p.Summary.Columns
	d.MissingRate = p.Summary.AverageMissingPercentage
	d.Verdict = p.QualityAssessment.Overall
	d.UpdatedAt = time.Now().UTC()
}

// MarkFailed records an analysis failure
func (d *Dataset) MarkFailed(err error) {
	d.Status = StatusFailed
	if err != nil {
		d.ErrorMessage = err.Error()
	}
	d.UpdatedAt = time.Now().UTC()
}
