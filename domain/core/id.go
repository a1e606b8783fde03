package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	DatasetID   ID
	WorkspaceID ID
	ChartID     ID
)

// String conversions for domain IDs
func (id DatasetID) String() string   { return ID(id).String() }
func (id WorkspaceID) String() string { return ID(id).String() }
func (id ChartID) String() string     { return ID(id).String() }

// ParseDatasetID parses a string into DatasetID
func ParseDatasetID(s string) (DatasetID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("dataset ID cannot be empty")
	}
	return DatasetID(s), nil
}

// ParseWorkspaceID parses a string into WorkspaceID
func ParseWorkspaceID(s string) (WorkspaceID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("workspace ID cannot be empty")
	}
	return WorkspaceID(s), nil
}

// ParseChartID parses a string into ChartID
func ParseChartID(s string) (ChartID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("chart ID cannot be empty")
	}
	return ChartID(s), nil
}
