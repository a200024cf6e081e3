package analysis

import (
	domain "statflow/domain/analysis"
	"statflow/domain/dataset"
	"statflow/ports"
)

// NewComputeRequest serialises the selected columns of the sample together
// with the selection and the kind's parameters. Unselected columns are not
// sent; incomplete rows are left for the service to drop.
func NewComputeRequest(kind domain.Kind, sample *dataset.Sample, sel dataset.Selection, settings domain.Settings) ports.ComputeRequest {
	sel = sel.Normalize()
	cols := sel.Columns()
	rows := make([]dataset.Row, 0, sample.Len())
	if sample != nil {
		for _, r := range sample.Rows {
			out := make(dataset.Row, len(cols))
			for _, c := range cols {
				out[c] = r[c]
			}
			rows = append(rows, out)
		}
	}
	return ports.ComputeRequest{
		Kind:      kind,
		Columns:   cols,
		Rows:      rows,
		Selection: sel,
		Params:    settings.Params(kind),
	}
}
