package dataset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"statflow/domain/core"
)

// Row is one observation keyed by column name. Values stay as the raw strings
// read from the upload; typing happens on demand.
type Row map[string]string

// Sample is the tabular data an analysis screen works on
type Sample struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewSample validates headers and returns a sample. Cells for unknown columns
// are dropped so every row only carries declared columns.
func NewSample(columns []string, rows []Row) (*Sample, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns", core.ErrInvalidSample)
	}

	seen := make(map[string]bool, len(columns))
	cleaned := make([]string, len(columns))
	for i, c := range columns {
		name := strings.TrimSpace(c)
		if name == "" {
			return nil, fmt.Errorf("%w: column %d has an empty name", core.ErrInvalidSample, i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate column %q", core.ErrInvalidSample, name)
		}
		seen[name] = true
		cleaned[i] = name
	}

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		row := make(Row, len(cleaned))
		for k, v := range r {
			k = strings.TrimSpace(k)
			if seen[k] {
				row[k] = strings.TrimSpace(v)
			}
		}
		out = append(out, row)
	}

	return &Sample{Columns: cleaned, Rows: out}, nil
}

// Len returns the number of rows
func (s *Sample) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// HasColumn reports whether the sample declares the column
func (s *Sample) HasColumn(name string) bool {
	if s == nil {
		return false
	}
	for _, c := range s.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// IsMissing reports whether a raw cell is treated as a missing value
func IsMissing(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "na", "n/a", "nan", "null", "none":
		return true
	}
	return false
}

// Values returns the raw column values in row order
func (s *Sample) Values(col string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = r[col]
	}
	return out
}

// MissingCount counts missing cells in a column
func (s *Sample) MissingCount(col string) int {
	n := 0
	for _, v := range s.Values(col) {
		if IsMissing(v) {
			n++
		}
	}
	return n
}

// Numeric parses a column. Missing cells are skipped; cells that do not
// parse as numbers are counted in nonNumeric.
func (s *Sample) Numeric(col string) (values []float64, nonNumeric int) {
	for _, v := range s.Values(col) {
		if IsMissing(v) {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			nonNumeric++
			continue
		}
		values = append(values, f)
	}
	return values, nonNumeric
}

// IsNumeric reports whether every non-missing cell of the column parses as a
// number and at least one does.
func (s *Sample) IsNumeric(col string) bool {
	values, bad := s.Numeric(col)
	return bad == 0 && len(values) > 0
}

// Levels returns the sorted distinct non-missing values of a column
func (s *Sample) Levels(col string) []string {
	set := make(map[string]bool)
	for _, v := range s.Values(col) {
		if !IsMissing(v) {
			set[v] = true
		}
	}
	levels := make([]string, 0, len(set))
	for v := range set {
		levels = append(levels, v)
	}
	sort.Strings(levels)
	return levels
}

// CompleteCases counts rows where every listed column is present
func (s *Sample) CompleteCases(cols ...string) int {
	if s == nil {
		return 0
	}
	n := 0
	for _, r := range s.Rows {
		if rowComplete(r, cols) {
			n++
		}
	}
	return n
}

// NumericMatrix returns complete-case numeric columns in the order given.
// Rows with a missing or non-numeric cell in any column are dropped.
func (s *Sample) NumericMatrix(cols ...string) [][]float64 {
	out := make([][]float64, len(cols))
	if s == nil {
		return out
	}
	for _, r := range s.Rows {
		if !rowComplete(r, cols) {
			continue
		}
		parsed := make([]float64, len(cols))
		ok := true
		for i, c := range cols {
			f, err := strconv.ParseFloat(r[c], 64)
			if err != nil {
				ok = false
				break
			}
			parsed[i] = f
		}
		if !ok {
			continue
		}
		for i := range cols {
			out[i] = append(out[i], parsed[i])
		}
	}
	return out
}

// CellCounts counts complete rows per combination of two categorical columns,
// keyed "a\x00b".
func (s *Sample) CellCounts(a, b string) map[string]int {
	counts := make(map[string]int)
	if s == nil {
		return counts
	}
	for _, r := range s.Rows {
		if !rowComplete(r, []string{a, b}) {
			continue
		}
		counts[r[a]+"\x00"+r[b]]++
	}
	return counts
}

// Fingerprint hashes the sample content. Rows are encoded in column order so
// the hash does not depend on map iteration.
func (s *Sample) Fingerprint() core.Hash {
	if s == nil {
		return core.NewHash(nil)
	}
	var b strings.Builder
	header, _ := json.Marshal(s.Columns)
	b.Write(header)
	for _, r := range s.Rows {
		cells := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			cells[i] = r[c]
		}
		line, _ := json.Marshal(cells)
		b.Write(line)
	}
	return core.NewHash([]byte(b.String()))
}

func rowComplete(r Row, cols []string) bool {
	for _, c := range cols {
		if IsMissing(r[c]) {
			return false
		}
	}
	return true
}
