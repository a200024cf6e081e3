package narrative

import (
	"strconv"
	"strings"

	"statflow/domain/analysis"
	"statflow/internal/thresholds"
)

const notAvailable = "not available"

// num renders an optional statistic with fixed decimals
func num(x *float64, places int) string {
	if x == nil || !finite(*x) {
		return ""
	}
	return thresholds.Fixed(*x, places)
}

// ratio renders a bounded statistic without the leading zero
func ratio(x *float64, places int) string {
	if x == nil || !finite(*x) {
		return ""
	}
	return thresholds.NoLeadingZero(*x, places)
}

func pClause(f Facts) string {
	if !f.HasP {
		return ""
	}
	return "p " + thresholds.FormatP(f.P)
}

func labeled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + " = " + value
}

// joinNames lists names as "a", "a and b" or "a, b and c"
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

func orDefault(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}

// confidencePercent renders 0.95 as "95" and 0.975 as "97.5"
func confidencePercent(level float64) string {
	s := thresholds.Fixed(level*100, 1)
	return strings.TrimSuffix(s, ".0")
}

func isIntercept(name string) bool {
	switch strings.ToLower(strings.Trim(name, "() ")) {
	case "intercept", "const", "constant":
		return true
	}
	return false
}

// significantTerms lists the non-intercept coefficients with p < alpha, in
// the order the service reported them.
func significantTerms(coefs []analysis.Coefficient, withExp string) []string {
	var out []string
	for _, c := range coefs {
		if isIntercept(c.Name) {
			continue
		}
		p := probability(c.PValue)
		if p == nil || !thresholds.IsSignificant(*p) {
			continue
		}
		term := c.Name + " (p " + thresholds.FormatP(*p) + " " + thresholds.Stars(*p)
		if withExp != "" && c.ExpEstimate != nil && finite(*c.ExpEstimate) {
			term = c.Name + " (" + withExp + " = " + thresholds.Fixed(*c.ExpEstimate, 2) + ", p " + thresholds.FormatP(*p) + " " + thresholds.Stars(*p)
		}
		out = append(out, term+")")
	}
	return out
}

// predictorsInsight reports which model terms are individually significant
func predictorsInsight(coefs []analysis.Coefficient, withExp string) (string, bool) {
	tested := 0
	for _, c := range coefs {
		if !isIntercept(c.Name) && probability(c.PValue) != nil {
			tested++
		}
	}
	if tested == 0 {
		return "", false
	}
	terms := significantTerms(coefs, withExp)
	if len(terms) == 0 {
		return "No individual predictor is significant at α = .05.", true
	}
	return "Significant predictors: " + strings.Join(terms, ", ") + ".", true
}

// vifInsight reports the worst multicollinearity among the terms
func vifInsight(coefs []analysis.Coefficient) (string, bool) {
	worst, name := -1.0, ""
	for _, c := range coefs {
		if isIntercept(c.Name) || c.VIF == nil || !finite(*c.VIF) {
			continue
		}
		if *c.VIF > worst {
			worst, name = *c.VIF, c.Name
		}
	}
	if name == "" {
		return "", false
	}
	label := strings.ToLower(thresholds.VIF.Classify(worst))
	return "Multicollinearity is " + label + " (highest VIF = " + thresholds.Fixed(worst, 2) + " for " + name + ").", true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
