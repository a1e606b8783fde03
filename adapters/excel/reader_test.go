package excel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goeda/domain/core"
	"goeda/domain/ingestion"
	apperrors "goeda/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestReader() *DataReader {
	return NewDataReader(DefaultReaderConfig(), nil)
}

func TestGuessDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   rune
	}{
		{"comma", "a,b,c\n1,2,3\n4,5,6\n", ','},
		{"semicolon with decimal commas", "a;b\n1,5;2,5\n3,1;4,0\n", ';'},
		{"tab", "a\tb\tc\n1\t2\t3\n", '\t'},
		{"pipe", "a|b\n1|2\n", '|'},
		{"quoted commas", "name;note\n\"Smith, J\";x\n\"Doe, A\";y\n", ';'},
		{"single column", "value\n1\n2\n", ','},
		{"empty", "", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessDelimiter([]byte(tt.sample), 10))
		})
	}
}

func TestReadCSV(t *testing.T) {
	input := "\xEF\xBB\xBFid, Name ,score\n1,Ann,9.5\n\n2,Bob\n3,Cy,7,extra\n"

	table, err := newTestReader().Read(strings.NewReader(input), "people.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "Name", "score"}, table.Headers)
	assert.Equal(t, "csv", table.FileInfo.Format)
	assert.Equal(t, ",", table.FileInfo.Delimiter)
	require.Len(t, table.Rows, 3)

	assert.Equal(t, "Ann", table.Rows[0].Value("Name").String())
	assert.True(t, table.Rows[1].Value("score").IsMissing())
	assert.Equal(t, []string{"id", "Name", "score"}, table.Rows[1].Keys())

	require.Len(t, table.Errors, 1)
	assert.Equal(t, 3, table.Errors[0].RowIndex)

	require.Len(t, table.Hints, 3)
	assert.Equal(t, ingestion.ValueTypeFloat, table.Hints[0].Type)
	assert.Equal(t, ingestion.ValueTypeString, table.Hints[1].Type)
}

func TestReadDuplicateHeaders(t *testing.T) {
	table, err := newTestReader().Read(strings.NewReader("a,a,\n1,2,3\n"), "dup.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a_2", "column_3"}, table.Headers)
	assert.Equal(t, "2", table.Rows[0].Value("a_2").String())
}

func TestReadTSVForcesTab(t *testing.T) {
	table, err := newTestReader().Read(strings.NewReader("a,b\tc\n1,2\t3\n"), "data.tsv")
	require.NoError(t, err)
	assert.Equal(t, []string{"a,b", "c"}, table.Headers)
}

func TestReadMaxRows(t *testing.T) {
	cfg := DefaultReaderConfig()
	cfg.MaxRows = 2
	table, err := NewDataReader(cfg, nil).Read(strings.NewReader("v\n1\n2\n3\n"), "v.csv")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
}

func TestReadErrors(t *testing.T) {
	r := newTestReader()

	_, err := r.Read(strings.NewReader("x"), "data.json")
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
	assert.Equal(t, apperrors.CodeUnsupportedFormat, apperrors.GetCode(err))

	_, err = r.Read(strings.NewReader("\n\n"), "blank.csv")
	assert.ErrorIs(t, err, core.ErrEmptyDataset)

	_, err = r.ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestReadFileCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semi.csv")
	require.NoError(t, os.WriteFile(path, []byte("a;b\n1;x\n2;y\n"), 0o644))

	table, err := newTestReader().ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "semi.csv", table.Name)
	assert.Equal(t, ";", table.FileInfo.Delimiter)
	assert.Len(t, table.Rows, 2)
}

func TestReadFileXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"id", "city", "active"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{1, "Oslo", true}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{2, "Lima"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := newTestReader().ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "xlsx", table.FileInfo.Format)
	assert.Equal(t, sheet, table.FileInfo.SheetName)
	assert.Equal(t, []string{"id", "city", "active"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Oslo", table.Rows[0].Value("city").String())
	assert.Equal(t, "TRUE", table.Rows[0].Value("active").String())
	assert.True(t, table.Rows[1].Value("active").IsMissing())
}
