package dataset

import (
	"github.com/montanaflynn/stats"
)

// ColumnType is the inferred storage type of a column
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeCategorical ColumnType = "categorical"
	TypeEmpty       ColumnType = "empty"
)

// ColumnProfile summarises one column for the variable picker, the
// validation rules and the export package.
type ColumnProfile struct {
	Name     string     `json:"name"`
	Type     ColumnType `json:"type"`
	Count    int        `json:"count"`
	Missing  int        `json:"missing"`
	Distinct int        `json:"distinct"`
	Mean     *float64   `json:"mean,omitempty"`
	StdDev   *float64   `json:"std_dev,omitempty"`
	Min      *float64   `json:"min,omitempty"`
	Max      *float64   `json:"max,omitempty"`
	Median   *float64   `json:"median,omitempty"`
}

// MissingRate returns the share of missing cells
func (p ColumnProfile) MissingRate() float64 {
	if p.Count == 0 {
		return 0
	}
	return float64(p.Missing) / float64(p.Count)
}

// ProfileColumn infers the type of a column and, for numeric columns,
// computes descriptive statistics.
func ProfileColumn(s *Sample, col string) ColumnProfile {
	p := ColumnProfile{
		Name:     col,
		Count:    s.Len(),
		Missing:  s.MissingCount(col),
		Distinct: len(s.Levels(col)),
	}

	values, bad := s.Numeric(col)
	switch {
	case len(values) == 0 && bad == 0:
		p.Type = TypeEmpty
		return p
	case bad > 0:
		p.Type = TypeCategorical
		return p
	}
	p.Type = TypeNumeric

	data := stats.Float64Data(values)
	if mean, err := stats.Mean(data); err == nil {
		p.Mean = &mean
	}
	if len(values) > 1 {
		if sd, err := stats.StandardDeviationSample(data); err == nil {
			p.StdDev = &sd
		}
	}
	if lo, err := stats.Min(data); err == nil {
		p.Min = &lo
	}
	if hi, err := stats.Max(data); err == nil {
		p.Max = &hi
	}
	if med, err := stats.Median(data); err == nil {
		p.Median = &med
	}
	return p
}

// ProfileSample profiles every column in declared order
func ProfileSample(s *Sample) []ColumnProfile {
	if s == nil {
		return nil
	}
	out := make([]ColumnProfile, 0, len(s.Columns))
	for _, c := range s.Columns {
		out = append(out, ProfileColumn(s, c))
	}
	return out
}
