package excel

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"statflow/domain/core"
)

func workbook(t *testing.T, sheet string, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadWorkbookUsesFirstSheet(t *testing.T) {
	data := workbook(t, "Survey", [][]interface{}{
		{"y", " x1 ", "group"},
		{1.5, 2, "a"},
		{nil, nil, nil},
		{2.5, 3, "b"},
	})

	sample, err := NewReader(DefaultConfig()).Read(bytes.NewReader(data), FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x1", "group"}, sample.Columns)
	require.Equal(t, 2, sample.Len())
	assert.Equal(t, "1.5", sample.Rows[0]["y"])
	assert.Equal(t, "b", sample.Rows[1]["group"])
}

func TestReadCSV(t *testing.T) {
	src := "\xef\xbb\xbfy,x1,x2\n1,2,3\n4,5\n\n7,8,9\n"
	sample, err := NewReader(DefaultConfig()).Read(strings.NewReader(src), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x1", "x2"}, sample.Columns)
	require.Equal(t, 3, sample.Len())
	assert.Equal(t, "", sample.Rows[1]["x2"])
	assert.Equal(t, 1, sample.MissingCount("x2"))
}

func TestReadRejectsBadTables(t *testing.T) {
	r := NewReader(Config{MaxRows: 2})
	tests := []struct {
		name string
		src  string
	}{
		{"header only", "y,x1\n"},
		{"duplicate columns", "y,y\n1,2\n"},
		{"too many rows", "y\n1\n2\n3\n"},
		{"blank rows only", "y,x\n,\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Read(strings.NewReader(tt.src), FormatCSV)
			assert.ErrorIs(t, err, core.ErrInvalidSample)
		})
	}

	_, err := r.Read(strings.NewReader("not a zip"), FormatXLSX)
	assert.ErrorIs(t, err, core.ErrInvalidSample)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

	sample, err := NewReader(DefaultConfig()).ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, sample.Len())

	_, err = NewReader(DefaultConfig()).ReadFile("data.parquet")
	assert.ErrorIs(t, err, core.ErrInvalidSample)
}

func TestFormatFromName(t *testing.T) {
	f, err := FormatFromName("Report.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	f, err = FormatFromName("data.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
}
