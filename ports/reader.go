package ports

import (
	"io"

	"goeda/domain/ingestion"
)

// TableReader turns files into ingestion tables
type TableReader interface {
	ReadFile(path string) (*ingestion.Table, error)
	// Read picks the format from filename
	Read(r io.Reader, filename string) (*ingestion.Table, error)
}
