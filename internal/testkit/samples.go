package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"statflow/domain/dataset"
)

// SampleConfig configures the synthetic sample generators
type SampleConfig struct {
	Rows  int     `json:"rows"`
	Noise float64 `json:"noise"`
	Seed  int64   `json:"seed"`
}

// DefaultSampleConfig returns a small, reproducible configuration
func DefaultSampleConfig() SampleConfig {
	return SampleConfig{
		Rows:  60,
		Noise: 1.0,
		Seed:  42,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

func mustSample(columns []string, rows []dataset.Row) *dataset.Sample {
	s, err := dataset.NewSample(columns, rows)
	if err != nil {
		panic(fmt.Sprintf("testkit: invalid generated sample: %v", err))
	}
	return s
}

// RegressionSample generates y = 2 + 1.5*x1 - 0.8*x2 + noise with an
// unrelated x3 column.
func RegressionSample(cfg SampleConfig) *dataset.Sample {
	rng := rand.New(rand.NewSource(cfg.Seed))
	rows := make([]dataset.Row, cfg.Rows)
	for i := range rows {
		x1 := rng.Float64() * 10
		x2 := rng.NormFloat64()*2 + 5
		x3 := rng.Float64() * 100
		y := 2 + 1.5*x1 - 0.8*x2 + rng.NormFloat64()*cfg.Noise
		rows[i] = dataset.Row{
			"y":  formatFloat(y),
			"x1": formatFloat(x1),
			"x2": formatFloat(x2),
			"x3": formatFloat(x3),
		}
	}
	return mustSample([]string{"y", "x1", "x2", "x3"}, rows)
}

// CrosstabSample cycles a two-level "group" against a three-level
// "answer", giving every cell the same count when rows is a multiple of 6.
func CrosstabSample(rows int) *dataset.Sample {
	answers := []string{"yes", "no", "maybe"}
	out := make([]dataset.Row, rows)
	for i := range out {
		group := "control"
		if i%2 == 1 {
			group = "treated"
		}
		out[i] = dataset.Row{"group": group, "answer": answers[(i/2)%3]}
	}
	return mustSample([]string{"group", "answer"}, out)
}

// DiDSample generates a balanced unit panel over two periods with a
// treatment effect of effect on the treated units after the change.
func DiDSample(units int, effect float64, cfg SampleConfig) *dataset.Sample {
	rng := rand.New(rand.NewSource(cfg.Seed))
	rows := make([]dataset.Row, 0, units*2)
	for u := 0; u < units; u++ {
		treated := u%2 == 1
		base := 10 + rng.NormFloat64()
		for post := 0; post < 2; post++ {
			y := base + float64(post)*0.5 + rng.NormFloat64()*cfg.Noise
			if treated && post == 1 {
				y += effect
			}
			t := "0"
			if treated {
				t = "1"
			}
			rows = append(rows, dataset.Row{
				"unit":    "u" + strconv.Itoa(u),
				"treated": t,
				"post":    strconv.Itoa(post),
				"y":       formatFloat(y),
			})
		}
	}
	return mustSample([]string{"unit", "treated", "post", "y"}, rows)
}

// GLMSample generates a binary "bought" outcome driven by "age" through a
// logistic link, plus an unrelated "income".
func GLMSample(cfg SampleConfig) *dataset.Sample {
	rng := rand.New(rand.NewSource(cfg.Seed))
	rows := make([]dataset.Row, cfg.Rows)
	for i := range rows {
		age := 18 + rng.Float64()*50
		income := 20 + rng.Float64()*80
		p := 1 / (1 + math.Exp(-(age-40)/8))
		bought := "0"
		if rng.Float64() < p {
			bought = "1"
		}
		rows[i] = dataset.Row{
			"bought": bought,
			"age":    formatFloat(age),
			"income": formatFloat(income),
		}
	}
	return mustSample([]string{"bought", "age", "income"}, rows)
}
