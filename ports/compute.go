package ports

import (
	"context"

	"statflow/domain/analysis"
	"statflow/domain/dataset"
)

// ComputeRequest is the single payload sent for one run
type ComputeRequest struct {
	Kind      analysis.Kind          `json:"kind"`
	Columns   []string               `json:"columns"`
	Rows      []dataset.Row          `json:"rows"`
	Selection dataset.Selection      `json:"selection"`
	Params    map[string]interface{} `json:"params"`
}

// ComputeClient performs the statistical fitting remotely. Errors carry a
// user-visible message (see errors.UserMessage).
type ComputeClient interface {
	Compute(ctx context.Context, req ComputeRequest) (*analysis.Envelope, error)
}
