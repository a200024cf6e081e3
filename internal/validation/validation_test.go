package validation

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statflow/domain/analysis"
	"statflow/domain/dataset"
)

func numericSample(t *testing.T, n int) *dataset.Sample {
	t.Helper()
	rows := make([]dataset.Row, n)
	for i := 0; i < n; i++ {
		rows[i] = dataset.Row{
			"y":  strconv.Itoa(2*i + (i*5)%7),
			"x1": strconv.Itoa(i),
			"x2": strconv.Itoa((i * 7) % 11),
			"x3": strconv.Itoa((i * i) % 13),
		}
	}
	s, err := dataset.NewSample([]string{"y", "x1", "x2", "x3"}, rows)
	require.NoError(t, err)
	return s
}

func tableSample(t *testing.T, n int) *dataset.Sample {
	t.Helper()
	cols := []string{"p", "q", "r"}
	rows := make([]dataset.Row, n)
	for i := 0; i < n; i++ {
		g := "a"
		if i%2 == 1 {
			g = "b"
		}
		rows[i] = dataset.Row{"group": g, "answer": cols[i%3]}
	}
	s, err := dataset.NewSample([]string{"group", "answer"}, rows)
	require.NoError(t, err)
	return s
}

func TestObsPerPredictorRatio(t *testing.T) {
	in := Input{
		Kind:      analysis.KindRegression,
		Sample:    numericSample(t, 45),
		Selection: dataset.Selection{Target: "y", Features: []string{"x1", "x2"}},
	}

	report := EvaluateKind(in)
	check, ok := report.Find(LabelObsPerPredictor)
	require.True(t, ok)
	assert.True(t, check.Passed)
	assert.Equal(t, "22 observations per predictor (minimum 10)", check.Detail)
	assert.True(t, report.Ready)
}

func TestObsPerPredictorBands(t *testing.T) {
	rule := ObsPerPredictor(10, 5)
	sel := dataset.Selection{Target: "y", Features: []string{"x1", "x2", "x3"}}

	tests := []struct {
		rows     int
		passed   bool
		severity Severity
	}{
		{rows: 30, passed: true, severity: SeverityCritical},
		{rows: 21, passed: false, severity: SeverityWarning},
		{rows: 12, passed: false, severity: SeverityCritical},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d rows", tt.rows), func(t *testing.T) {
			c := rule(Input{Sample: numericSample(t, tt.rows), Selection: sel})
			assert.Equal(t, tt.passed, c.Passed)
			assert.Equal(t, tt.severity, c.Severity)
		})
	}
}

func TestExpectedFrequency(t *testing.T) {
	sel := dataset.Selection{Group: "group", Target: "answer"}

	t.Run("sufficient", func(t *testing.T) {
		report := EvaluateKind(Input{Kind: analysis.KindCrosstab, Sample: tableSample(t, 40), Selection: sel})
		check, ok := report.Find(LabelExpectedFrequency)
		require.True(t, ok)
		assert.True(t, check.Passed)
		assert.Contains(t, check.Detail, "6.67")
		assert.True(t, report.Ready)
	})

	t.Run("sparse table warns without blocking", func(t *testing.T) {
		report := EvaluateKind(Input{Kind: analysis.KindCrosstab, Sample: tableSample(t, 20), Selection: sel})
		check, ok := report.Find(LabelExpectedFrequency)
		require.True(t, ok)
		assert.False(t, check.Passed)
		assert.Equal(t, SeverityWarning, check.Severity)
		assert.True(t, report.Ready)
		assert.Equal(t, 1, report.Counts()[SeverityWarning])
	})
}

func TestReadyOnlyConsidersCriticalChecks(t *testing.T) {
	checks := []Check{
		{Label: "a", Passed: true, Severity: SeverityCritical},
		{Label: "b", Passed: false, Severity: SeverityWarning},
		{Label: "c", Passed: false, Severity: SeverityInfo},
	}
	assert.True(t, Ready(checks))

	checks = append(checks, Check{Label: "d", Passed: false, Severity: SeverityCritical})
	assert.False(t, Ready(checks))
	assert.True(t, Ready(nil))
}

func TestMissingRolesBlock(t *testing.T) {
	for _, kind := range analysis.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			report := EvaluateKind(Input{Kind: kind, Sample: numericSample(t, 60)})
			assert.False(t, report.Ready)
			assert.Positive(t, report.Counts()[SeverityCritical])
		})
	}
}

func TestEmptySampleBlocks(t *testing.T) {
	report := EvaluateKind(Input{
		Kind:      analysis.KindRegression,
		Selection: dataset.Selection{Target: "y", Features: []string{"x1"}},
	})
	check, ok := report.Find(LabelDataLoaded)
	require.True(t, ok)
	assert.True(t, check.Blocking())
	assert.False(t, report.Ready)
}

func TestDistinctRoles(t *testing.T) {
	report := EvaluateKind(Input{
		Kind:      analysis.KindRegression,
		Sample:    numericSample(t, 60),
		Selection: dataset.Selection{Target: "x1", Features: []string{"x1", "x2"}},
	})
	check, ok := report.Find(LabelDistinctRoles)
	require.True(t, ok)
	assert.False(t, check.Passed)
	assert.Equal(t, "x1 is used as target and feature", check.Detail)
	assert.False(t, report.Ready)
}

func TestNonNumericFeature(t *testing.T) {
	rows := make([]dataset.Row, 40)
	for i := range rows {
		rows[i] = dataset.Row{"y": strconv.Itoa(i), "x": strconv.Itoa(i % 4), "label": "k" + strconv.Itoa(i%3)}
	}
	s, err := dataset.NewSample([]string{"y", "x", "label"}, rows)
	require.NoError(t, err)

	report := EvaluateKind(Input{
		Kind:      analysis.KindRegression,
		Sample:    s,
		Selection: dataset.Selection{Target: "y", Features: []string{"x", "label"}},
	})
	check, ok := report.Find("Predictors are numeric")
	require.True(t, ok)
	assert.Equal(t, "Not numeric: label", check.Detail)
	assert.False(t, report.Ready)
}

func TestMissingValuesIsInformational(t *testing.T) {
	s := numericSample(t, 50)
	s.Rows[3]["x1"] = "NA"
	s.Rows[7]["y"] = ""

	c := MissingValues()(Input{Sample: s, Selection: dataset.Selection{Target: "y", Features: []string{"x1"}}})
	assert.False(t, c.Passed)
	assert.Equal(t, SeverityInfo, c.Severity)
	assert.Equal(t, "Missing cells (y: 1, x1: 1); 2 rows will be excluded", c.Detail)
}

func TestCollinearity(t *testing.T) {
	rows := make([]dataset.Row, 30)
	for i := range rows {
		rows[i] = dataset.Row{"a": strconv.Itoa(i), "b": strconv.Itoa(3*i + 1), "c": strconv.Itoa((i * 7) % 5)}
	}
	s, err := dataset.NewSample([]string{"a", "b", "c"}, rows)
	require.NoError(t, err)

	c := Collinearity(0.9)(Input{Sample: s, Selection: dataset.Selection{Features: []string{"a", "b", "c"}}})
	assert.False(t, c.Passed)
	assert.Equal(t, SeverityWarning, c.Severity)
	assert.Contains(t, c.Detail, "a~b (r = 1.00)")
	assert.NotContains(t, c.Detail, "a~c")
}

func TestConstantPredictors(t *testing.T) {
	rows := make([]dataset.Row, 10)
	for i := range rows {
		rows[i] = dataset.Row{"a": "4", "b": strconv.Itoa(i)}
	}
	s, err := dataset.NewSample([]string{"a", "b"}, rows)
	require.NoError(t, err)

	c := ConstantPredictors()(Input{Sample: s, Selection: dataset.Selection{Features: []string{"a", "b"}}})
	assert.False(t, c.Passed)
	assert.Equal(t, "Zero variance: a", c.Detail)
}

func TestFamilyLinkAndTargetDomain(t *testing.T) {
	rows := make([]dataset.Row, 40)
	for i := range rows {
		rows[i] = dataset.Row{"y": strconv.Itoa(i % 2), "x": strconv.Itoa(i)}
	}
	s, err := dataset.NewSample([]string{"y", "x"}, rows)
	require.NoError(t, err)
	sel := dataset.Selection{Target: "y", Features: []string{"x"}}

	report := EvaluateKind(Input{
		Kind:      analysis.KindGLM,
		Sample:    s,
		Selection: sel,
		Settings:  analysis.Settings{Family: analysis.FamilyBinomial},
	})
	link, _ := report.Find(LabelFamilyLink)
	assert.True(t, link.Passed)
	assert.Equal(t, "binomial / logit", link.Detail)
	domain, _ := report.Find(LabelTargetDomain)
	assert.True(t, domain.Passed)

	report = EvaluateKind(Input{
		Kind:      analysis.KindGLM,
		Sample:    s,
		Selection: sel,
		Settings:  analysis.Settings{Family: analysis.FamilyGamma, Link: analysis.LinkLogit},
	})
	link, _ = report.Find(LabelFamilyLink)
	assert.False(t, link.Passed)
	domain, _ = report.Find(LabelTargetDomain)
	assert.False(t, domain.Passed)
	assert.False(t, report.Ready)
}

func TestDiDDesign(t *testing.T) {
	rows := make([]dataset.Row, 0, 80)
	for i := 0; i < 80; i++ {
		rows = append(rows, dataset.Row{
			"y":       strconv.Itoa(10 + i%9),
			"treated": strconv.Itoa(i % 2),
			"post":    strconv.Itoa((i / 2) % 2),
			"unit":    "u" + strconv.Itoa(i%40),
		})
	}
	s, err := dataset.NewSample([]string{"y", "treated", "post", "unit"}, rows)
	require.NoError(t, err)

	report := EvaluateKind(Input{
		Kind:      analysis.KindDiD,
		Sample:    s,
		Selection: dataset.Selection{Target: "y", Group: "treated", Time: "post", Cluster: "unit"},
	})
	for _, c := range report.Checks {
		assert.Truef(t, c.Passed, "%s: %s", c.Label, c.Detail)
	}
	assert.True(t, report.Ready)

	cells, _ := report.Find(LabelDesignCells)
	assert.Equal(t, "0/0=20, 0/1=20, 1/0=20, 1/1=20", cells.Detail)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	in := Input{
		Kind:      analysis.KindRegression,
		Sample:    numericSample(t, 45),
		Selection: dataset.Selection{Target: " y ", Features: []string{"x1", "x2", "x1"}},
	}
	assert.Equal(t, EvaluateKind(in), EvaluateKind(in))
}
