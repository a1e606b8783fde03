package excel

import (
	"goeda/adapters/datareadiness/coercer"
)

// ReaderConfig holds configuration for the tabular file reader
type ReaderConfig struct {
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
	// SheetName selects the workbook sheet; empty means the first sheet
	SheetName string `json:"sheet_name"`
	// MaxRows stops reading after this many data rows (0 = unlimited)
	MaxRows int `json:"max_rows"`
	// SniffLines is how many non-blank lines are used to guess the delimiter
	SniffLines int `json:"sniff_lines"`
}

// DefaultReaderConfig returns sensible defaults for file reading
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		CoercionConfig: coercer.DefaultCoercionConfig(),
		SniffLines:     10,
	}
}
