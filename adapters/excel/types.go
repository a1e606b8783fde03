package excel

import (
	"path/filepath"
	"strings"
)

// Format identifies a supported input file type
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatText Format = "txt"
	FormatXLSX Format = "xlsx"
)

// FormatFromFilename maps a file extension onto a Format
func FormatFromFilename(filename string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, true
	case ".tsv", ".tab":
		return FormatTSV, true
	case ".txt":
		return FormatText, true
	case ".xlsx", ".xlsm":
		return FormatXLSX, true
	}
	return "", false
}

// IsDelimited reports whether the format is a delimited text file
func (f Format) IsDelimited() bool {
	return f == FormatCSV || f == FormatTSV || f == FormatText
}

// rawTable is the header plus string cells before conversion to values
type rawTable struct {
	headers []string
	rows    [][]string
}
