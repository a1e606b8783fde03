package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound          = errors.New("resource not found")
	ErrDatasetNotFound   = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrWorkspaceNotFound = fmt.Errorf("%w: workspace", ErrNotFound)
	ErrChartNotFound     = fmt.Errorf("%w: chart", ErrNotFound)

	// Input errors
	ErrEmptyDataset      = errors.New("dataset is empty: at least one row is required")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrInvalidFilter     = errors.New("invalid filter")
	ErrInvalidChart      = errors.New("invalid chart")

	// State errors
	ErrNoDataset     = errors.New("no dataset loaded")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewFilterError(column string, reason string) error {
	return fmt.Errorf("%w on column %q: %s", ErrInvalidFilter, column, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrInvalidFilter) ||
		errors.Is(err, ErrInvalidChart)
}

func IsStateError(err error) bool {
	return errors.Is(err, ErrNoDataset) ||
		errors.Is(err, ErrNothingToUndo) ||
		errors.Is(err, ErrNothingToRedo)
}
