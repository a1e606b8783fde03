package excel

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"goeda/adapters/datareadiness/coercer"
	"goeda/domain/core"
	"goeda/domain/ingestion"
	"goeda/internal/errors"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// DataReader reads delimited text and Excel workbooks into ingestion tables
type DataReader struct {
	config ReaderConfig
	logger *zap.Logger
}

// NewDataReader creates a reader. A nil logger disables logging.
func NewDataReader(config ReaderConfig, logger *zap.Logger) *DataReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SniffLines <= 0 {
		config.SniffLines = DefaultReaderConfig().SniffLines
	}
	return &DataReader{config: config, logger: logger.Named("reader")}
}

// ReadFile opens path and reads it according to its extension
func (r *DataReader) ReadFile(path string) (*ingestion.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithCode(errors.CodeNotFound, fmt.Errorf("file not found: %s", path))
		}
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	return r.Read(file, filepath.Base(path))
}

// Read reads a table from rd; filename selects the format
func (r *DataReader) Read(rd io.Reader, filename string) (*ingestion.Table, error) {
	format, ok := FormatFromFilename(filename)
	if !ok {
		return nil, errors.WithCode(errors.CodeUnsupportedFormat,
			fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, filepath.Ext(filename)))
	}

	start := time.Now()
	var (
		raw  *rawTable
		info ingestion.FileInfo
		err  error
	)
	if format == FormatXLSX {
		raw, info, err = r.readWorkbook(rd)
	} else {
		raw, info, err = r.readText(rd, format)
	}
	if err != nil {
		return nil, err
	}

	table := r.buildTable(filename, raw, info)
	table.Hints = coercer.NewTypeCoercer(r.config.CoercionConfig).HintsForTable(table)

	r.logger.Info("file read",
		zap.String("file", filename),
		zap.String("format", string(format)),
		zap.Int("columns", len(table.Headers)),
		zap.Int("rows", len(table.Rows)),
		zap.Int("row_errors", len(table.Errors)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return table, nil
}

func (r *DataReader) readText(rd io.Reader, format Format) (*rawTable, ingestion.FileInfo, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, ingestion.FileInfo{}, errors.Wrap(err, "failed to read file")
	}
	data = stripBOM(data)

	var delimiter rune
	if format == FormatTSV {
		delimiter = '\t'
	} else {
		delimiter = GuessDelimiter(data, r.config.SniffLines)
	}

	records, err := readDelimited(data, delimiter)
	if err != nil {
		return nil, ingestion.FileInfo{}, errors.WithCode(errors.CodeInvalidInput,
			fmt.Errorf("failed to parse %s file: %w", format, err))
	}

	raw, err := splitHeader(records)
	if err != nil {
		return nil, ingestion.FileInfo{}, err
	}
	return raw, ingestion.FileInfo{Format: string(format), Delimiter: string(delimiter)}, nil
}

func (r *DataReader) readWorkbook(rd io.Reader) (*rawTable, ingestion.FileInfo, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, ingestion.FileInfo{}, errors.Wrap(err, "failed to read file")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, ingestion.FileInfo{}, errors.WithCode(errors.CodeInvalidInput,
			fmt.Errorf("failed to open Excel file: %w", err))
	}
	defer f.Close()

	sheet := r.config.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ingestion.FileInfo{}, errors.InvalidInput("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, ingestion.FileInfo{}, errors.WithCode(errors.CodeInvalidInput,
			fmt.Errorf("failed to read sheet %q: %w", sheet, err))
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		if !isBlankRecord(row) {
			records = append(records, row)
		}
	}

	raw, err := splitHeader(records)
	if err != nil {
		return nil, ingestion.FileInfo{}, err
	}
	return raw, ingestion.FileInfo{Format: string(FormatXLSX), SheetName: sheet}, nil
}

func splitHeader(records [][]string) (*rawTable, error) {
	if len(records) == 0 {
		return nil, errors.WithCode(errors.CodeEmptyDataset,
			fmt.Errorf("%w: file must have a header row", core.ErrEmptyDataset))
	}
	return &rawTable{headers: uniqueHeaders(records[0]), rows: records[1:]}, nil
}

// uniqueHeaders trims headers, names blank ones column_<n> and suffixes
// repeats with _2, _3 so that every header is a distinct row key
func uniqueHeaders(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		candidate := name
		for n := 2; seen[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", name, n)
		}
		seen[candidate] = true
		out[i] = candidate
	}
	return out
}

// buildTable converts string cells to values. Short rows are padded with
// missing; cells beyond the header are dropped and recorded as row errors.
func (r *DataReader) buildTable(filename string, raw *rawTable, info ingestion.FileInfo) *ingestion.Table {
	table := &ingestion.Table{
		Name:     filename,
		Headers:  raw.headers,
		Rows:     make([]ingestion.Row, 0, len(raw.rows)),
		FileInfo: info,
	}

	for i, record := range raw.rows {
		if r.config.MaxRows > 0 && len(table.Rows) >= r.config.MaxRows {
			break
		}
		row := ingestion.NewRow(len(raw.headers))
		for j, header := range raw.headers {
			if j < len(record) {
				row.Set(header, ingestion.NewStringValue(strings.TrimSpace(record[j])))
			} else {
				row.Set(header, ingestion.NewMissingValue())
			}
		}
		if extra := len(record) - len(raw.headers); extra > 0 {
			table.Errors = append(table.Errors, ingestion.IngestionError{
				RowIndex: i + 1,
				Message:  fmt.Sprintf("%d cells beyond the header were dropped", extra),
			})
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
