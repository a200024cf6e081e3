package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"statflow/domain/core"
	"statflow/domain/dataset"
)

// Format is the encoding of an uploaded table
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatFromName picks the format from a file name's extension
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", core.ErrInvalidSample, filepath.Ext(name))
	}
}

// Reader turns Excel and CSV uploads into samples. The first row holds the
// column names; blank rows are skipped.
type Reader struct {
	cfg Config
}

// NewReader creates a reader; a zero MaxRows disables the row limit
func NewReader(cfg Config) *Reader {
	return &Reader{cfg: cfg}
}

// ReadFile loads a table from disk
func (r *Reader) ReadFile(path string) (*dataset.Sample, error) {
	format, err := FormatFromName(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return r.Read(f, format)
}

// Read loads a table from src
func (r *Reader) Read(src io.Reader, format Format) (*dataset.Sample, error) {
	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = r.readWorkbook(src)
	case FormatCSV:
		rows, err = readCSV(src)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", core.ErrInvalidSample, format)
	}
	if err != nil {
		return nil, err
	}

	sample, err := r.buildSample(rows)
	if err != nil {
		return nil, err
	}
	log.Printf("[DataReader] %s table read in %.2fms (%d columns, %d rows)",
		strings.ToUpper(string(format)), float64(time.Since(start).Nanoseconds())/1e6, len(sample.Columns), sample.Len())
	return sample, nil
}

func (r *Reader) readWorkbook(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %v", core.ErrInvalidSample, err)
	}
	defer f.Close()

	sheet := r.cfg.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", core.ErrInvalidSample)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %v", core.ErrInvalidSample, sheet, err)
	}
	return rows, nil
}

func readCSV(src io.Reader) ([][]string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse CSV: %v", core.ErrInvalidSample, err)
	}
	return rows, nil
}

// buildSample maps raw rows onto the header row
func (r *Reader) buildSample(rows [][]string) (*dataset.Sample, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: need a header row and at least one data row", core.ErrInvalidSample)
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	for len(headers) > 0 && headers[len(headers)-1] == "" {
		headers = headers[:len(headers)-1]
	}

	data := make([]dataset.Row, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		if blank(raw) {
			continue
		}
		if r.cfg.MaxRows > 0 && len(data) >= r.cfg.MaxRows {
			return nil, fmt.Errorf("%w: more than %d data rows", core.ErrInvalidSample, r.cfg.MaxRows)
		}
		row := make(dataset.Row, len(headers))
		for j, h := range headers {
			if j < len(raw) {
				row[h] = strings.TrimSpace(raw[j])
			} else {
				row[h] = ""
			}
		}
		data = append(data, row)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no data rows", core.ErrInvalidSample)
	}
	return dataset.NewSample(headers, data)
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
