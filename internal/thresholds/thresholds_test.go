package thresholds

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedRoundsHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		x      float64
		places int
		want   string
	}{
		{0.0425, 3, "0.043"},
		{0.0424, 3, "0.042"},
		{2.5, 0, "3"},
		{-2.5, 0, "-3"},
		{1.005, 2, "1.01"},
		{-0.0004, 3, "0.000"},
		{0.9996, 3, "1.000"},
		{9.995, 2, "10.00"},
		{12, 2, "12.00"},
		{0.1, 0, "0"},
		{123.456, 1, "123.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fixed(tt.x, tt.places), "Fixed(%v, %d)", tt.x, tt.places)
	}
	assert.Equal(t, "n/a", Fixed(math.NaN(), 2))
	assert.Equal(t, "n/a", Fixed(math.Inf(1), 2))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.043, Round(0.0425, 3))
	assert.Equal(t, -1.01, Round(-1.005, 2))
}

func TestNoLeadingZero(t *testing.T) {
	assert.Equal(t, ".42", NoLeadingZero(0.4236, 2))
	assert.Equal(t, "-.08", NoLeadingZero(-0.081, 2))
	assert.Equal(t, "1.00", NoLeadingZero(0.999, 2))
}

func TestFormatPScenarios(t *testing.T) {
	assert.Equal(t, "< .001", FormatP(0.0004))
	assert.Equal(t, "***", Stars(0.0004))

	assert.Equal(t, "= .032", FormatP(0.032))
	assert.Equal(t, "*", Stars(0.032))

	assert.Equal(t, "**", Stars(0.004))
	assert.Equal(t, "", Stars(0.05))
	assert.Equal(t, "", Stars(0.6))
	assert.Equal(t, "", Stars(math.NaN()))
	assert.Equal(t, "= .001", FormatP(0.001))
	assert.Equal(t, "= n/a", FormatP(math.NaN()))
}

// Formatting law: "< .001" iff p < 0.001, otherwise three decimals and no
// leading zero.
func TestFormatPLaw(t *testing.T) {
	for i := 0; i <= 10000; i++ {
		p := float64(i) / 10000
		got := FormatP(p)
		if p < 0.001 {
			assert.Equal(t, "< .001", got, "p=%v", p)
			continue
		}
		num := strings.TrimPrefix(got, "= ")
		assert.False(t, strings.HasPrefix(num, "0"), "p=%v got %q", p, got)
		_, frac, ok := strings.Cut(num, ".")
		assert.True(t, ok, "p=%v got %q", p, got)
		assert.Len(t, frac, 3, "p=%v got %q", p, got)
	}
}

func TestIsSignificant(t *testing.T) {
	assert.True(t, IsSignificant(0.049))
	assert.False(t, IsSignificant(0.05))
	assert.False(t, IsSignificant(math.NaN()))
}

func TestCramersVScenarios(t *testing.T) {
	assert.Equal(t, "Medium", CramersV.Classify(0.42))
	assert.Equal(t, "Negligible", CramersV.Classify(0.08))
	assert.Equal(t, "Small", CramersV.Classify(0.1))
	assert.Equal(t, "Large", CramersV.Classify(0.5))
	assert.Equal(t, "", CramersV.Classify(math.NaN()))
}

// Classification is monotonic and covers [0,1] without gaps, with each band
// closed at its lower end.
func TestTablesMonotonicAndGapless(t *testing.T) {
	tables := []Table{CramersV, RSquared, PseudoRSquared, CohensD, OutlierRate, PValue}
	for _, table := range tables {
		prev := -1
		for i := 0; i <= 1000; i++ {
			v := float64(i) / 1000
			label := table.Classify(v)
			rank := table.Rank(v)
			assert.Equal(t, table.Bands[rank].Label, label, "%s at %v", table.Name, v)
			assert.GreaterOrEqual(t, rank, prev, "%s not monotonic at %v", table.Name, v)
			prev = rank
		}
		for i, b := range table.Bands {
			if b.Lower >= 0 && b.Lower <= 1 {
				assert.Equal(t, i, table.Rank(b.Lower), "%s lower bound %v should open band %d", table.Name, b.Lower, i)
			}
		}
	}
}

func TestLabels(t *testing.T) {
	assert.Equal(t, []string{"Weak", "Moderate", "Good", "Excellent"}, RSquared.Labels())
	assert.Equal(t, "Overdispersed", Dispersion.Classify(2.1))
	assert.Equal(t, "No autocorrelation", DurbinWatson.Classify(1.98))
	assert.Equal(t, "High", VIF.Classify(12))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "2.5%", Percent(0.025))
	assert.Equal(t, "62.0%", Percent(0.62))
}
