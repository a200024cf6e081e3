package analysis

import (
	"encoding/json"
	"fmt"

	"statflow/domain/core"
)

// Result is the closed set of compute-service payloads, one variant per
// Kind. Metrics the service did not report stay nil.
type Result interface {
	Kind() Kind
	SampleSize() int
	Raw() json.RawMessage
	isResult()
}

// Coefficient is one model term
type Coefficient struct {
	Name        string   `json:"name"`
	Estimate    *float64 `json:"estimate,omitempty"`
	StdError    *float64 `json:"std_error,omitempty"`
	Statistic   *float64 `json:"statistic,omitempty"`
	PValue      *float64 `json:"p_value,omitempty"`
	VIF         *float64 `json:"vif,omitempty"`
	ExpEstimate *float64 `json:"exp_estimate,omitempty"`
}

// RegressionResult is the payload of a multiple regression
type RegressionResult struct {
	N                int           `json:"n"`
	Method           string        `json:"method,omitempty"`
	RSquared         *float64      `json:"r_squared,omitempty"`
	AdjRSquared      *float64      `json:"adj_r_squared,omitempty"`
	FStatistic       *float64      `json:"f_statistic,omitempty"`
	DFModel          *int          `json:"df_model,omitempty"`
	DFResid          *int          `json:"df_resid,omitempty"`
	FPValue          *float64      `json:"f_p_value,omitempty"`
	RMSE             *float64      `json:"rmse,omitempty"`
	MAE              *float64      `json:"mae,omitempty"`
	DurbinWatson     *float64      `json:"durbin_watson,omitempty"`
	SelectedFeatures []string      `json:"selected_features,omitempty"`
	Coefficients     []Coefficient `json:"coefficients,omitempty"`

	raw json.RawMessage
}

// OutlierColumn reports the flagged observations of one variable
type OutlierColumn struct {
	Name     string   `json:"name"`
	Outliers int      `json:"outliers"`
	Lower    *float64 `json:"lower,omitempty"`
	Upper    *float64 `json:"upper,omitempty"`
}

// OutlierResult is the payload of an outlier detection
type OutlierResult struct {
	N            int             `json:"n"`
	Method       string          `json:"method,omitempty"`
	Threshold    *float64        `json:"threshold,omitempty"`
	OutlierCount *int            `json:"outlier_count,omitempty"`
	OutlierRate  *float64        `json:"outlier_rate,omitempty"`
	TestName     string          `json:"test_name,omitempty"`
	TestPValue   *float64        `json:"test_p_value,omitempty"`
	Columns      []OutlierColumn `json:"columns,omitempty"`
	Indices      []int           `json:"indices,omitempty"`

	raw json.RawMessage
}

// CrosstabResult is the payload of a chi-square test of independence
type CrosstabResult struct {
	N            int      `json:"n"`
	ChiSquare    *float64 `json:"chi_square,omitempty"`
	DF           *int     `json:"df,omitempty"`
	PValue       *float64 `json:"p_value,omitempty"`
	CramersV     *float64 `json:"cramers_v,omitempty"`
	MinExpected  *float64 `json:"min_expected,omitempty"`
	CellsBelow5  *int     `json:"cells_below_5,omitempty"`
	RowLevels    []string `json:"row_levels,omitempty"`
	ColumnLevels []string `json:"column_levels,omitempty"`
	Counts       [][]int  `json:"counts,omitempty"`

	raw json.RawMessage
}

// GLMResult is the payload of a generalized linear model
type GLMResult struct {
	N              int           `json:"n"`
	Family         string        `json:"family,omitempty"`
	Link           string        `json:"link,omitempty"`
	Deviance       *float64      `json:"deviance,omitempty"`
	NullDeviance   *float64      `json:"null_deviance,omitempty"`
	AIC            *float64      `json:"aic,omitempty"`
	LRChiSquare    *float64      `json:"lr_chi_square,omitempty"`
	LRDF           *int          `json:"lr_df,omitempty"`
	LRPValue       *float64      `json:"lr_p_value,omitempty"`
	PseudoRSquared *float64      `json:"pseudo_r_squared,omitempty"`
	Dispersion     *float64      `json:"dispersion,omitempty"`
	DFResid        *int          `json:"df_resid,omitempty"`
	Coefficients   []Coefficient `json:"coefficients,omitempty"`

	raw json.RawMessage
}

// GroupMeans are the four cell means of a 2x2 difference-in-differences design
type GroupMeans struct {
	PreTreated  *float64 `json:"pre_treated,omitempty"`
	PreControl  *float64 `json:"pre_control,omitempty"`
	PostTreated *float64 `json:"post_treated,omitempty"`
	PostControl *float64 `json:"post_control,omitempty"`
}

// DiDResult is the payload of a difference-in-differences estimation
type DiDResult struct {
	N                    int        `json:"n"`
	ATT                  *float64   `json:"att,omitempty"`
	StdError             *float64   `json:"std_error,omitempty"`
	Statistic            *float64   `json:"statistic,omitempty"`
	PValue               *float64   `json:"p_value,omitempty"`
	CILower              *float64   `json:"ci_lower,omitempty"`
	CIUpper              *float64   `json:"ci_upper,omitempty"`
	ConfidenceLevel      *float64   `json:"confidence_level,omitempty"`
	CohensD              *float64   `json:"cohens_d,omitempty"`
	ParallelTrendsPValue *float64   `json:"parallel_trends_p_value,omitempty"`
	Clusters             *int       `json:"clusters,omitempty"`
	Means                GroupMeans `json:"means"`

	raw json.RawMessage
}

func (r *RegressionResult) Kind() Kind { return KindRegression }
func (r *OutlierResult) Kind() Kind    { return KindOutliers }
func (r *CrosstabResult) Kind() Kind   { return KindCrosstab }
func (r *GLMResult) Kind() Kind        { return KindGLM }
func (r *DiDResult) Kind() Kind        { return KindDiD }

func (r *RegressionResult) SampleSize() int { return r.N }
func (r *OutlierResult) SampleSize() int    { return r.N }
func (r *CrosstabResult) SampleSize() int   { return r.N }
func (r *GLMResult) SampleSize() int        { return r.N }
func (r *DiDResult) SampleSize() int        { return r.N }

func (r *RegressionResult) Raw() json.RawMessage { return r.raw }
func (r *OutlierResult) Raw() json.RawMessage    { return r.raw }
func (r *CrosstabResult) Raw() json.RawMessage   { return r.raw }
func (r *GLMResult) Raw() json.RawMessage        { return r.raw }
func (r *DiDResult) Raw() json.RawMessage        { return r.raw }

func (*RegressionResult) isResult() {}
func (*OutlierResult) isResult()    {}
func (*CrosstabResult) isResult()   {}
func (*GLMResult) isResult()        {}
func (*DiDResult) isResult()        {}

// Decode builds the variant for kind from a raw result object
func Decode(kind Kind, raw json.RawMessage) (Result, error) {
	var (
		target Result
		err    error
	)
	switch kind {
	case KindRegression:
		r := &RegressionResult{}
		err = json.Unmarshal(raw, r)
		r.raw = raw
		target = r
	case KindOutliers:
		r := &OutlierResult{}
		err = json.Unmarshal(raw, r)
		r.raw = raw
		target = r
	case KindCrosstab:
		r := &CrosstabResult{}
		err = json.Unmarshal(raw, r)
		r.raw = raw
		target = r
	case KindGLM:
		r := &GLMResult{}
		err = json.Unmarshal(raw, r)
		r.raw = raw
		target = r
	case KindDiD:
		r := &DiDResult{}
		err = json.Unmarshal(raw, r)
		r.raw = raw
		target = r
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s result: %w", kind, err)
	}
	return target, nil
}

// Envelope is a decoded compute response: the result variant plus the
// optional chart image, kept as the opaque base64 string the service sent.
type Envelope struct {
	Result Result `json:"-"`
	Plot   string `json:"plot,omitempty"`
}
