package thresholds

import (
	"math"
	"strconv"
	"strings"
)

// Alpha is the significance level used for every significant/not-significant
// decision.
const Alpha = 0.05

// Fixed formats x with the given number of decimals. Rounding is half away
// from zero and is applied to the shortest decimal representation of x, so
// 0.0425 renders as "0.043" even though the nearest double is slightly below.
func Fixed(x float64, places int) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return "n/a"
	}
	if places < 0 {
		places = 0
	}

	neg := x < 0
	s := strconv.FormatFloat(math.Abs(x), 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var digits string
	if len(frac) <= places {
		digits = intPart + frac + strings.Repeat("0", places-len(frac))
	} else {
		digits = intPart + frac[:places]
		if frac[places] >= '5' {
			digits = increment(digits)
		}
	}

	out := digits
	if places > 0 {
		cut := len(digits) - places
		out = digits[:cut] + "." + digits[cut:]
	}
	if neg && strings.Trim(digits, "0") != "" {
		out = "-" + out
	}
	return out
}

// Round returns x rounded half away from zero to the given decimals.
func Round(x float64, places int) float64 {
	v, err := strconv.ParseFloat(Fixed(x, places), 64)
	if err != nil {
		return x
	}
	return v
}

// NoLeadingZero formats a value bounded by ±1 APA style: ".42", "-.08".
func NoLeadingZero(x float64, places int) string {
	s := Fixed(x, places)
	switch {
	case strings.HasPrefix(s, "0."):
		return s[1:]
	case strings.HasPrefix(s, "-0."):
		return "-" + s[2:]
	}
	return s
}

// Percent renders a share in [0,1] as a percentage with one decimal.
func Percent(share float64) string {
	return Fixed(share*100, 1) + "%"
}

// FormatP renders a p-value with its relation sign: "< .001" below 0.001,
// otherwise "= .042".
func FormatP(p float64) string {
	if math.IsNaN(p) {
		return "= n/a"
	}
	if p < 0.001 {
		return "< .001"
	}
	return "= " + NoLeadingZero(p, 3)
}

// Stars returns the significance marker for p.
func Stars(p float64) string {
	if math.IsNaN(p) {
		return ""
	}
	return PValue.Classify(p)
}

// IsSignificant reports p < Alpha. NaN is never significant.
func IsSignificant(p float64) bool {
	return !math.IsNaN(p) && p < Alpha
}

// increment adds one to a string of decimal digits.
func increment(digits string) string {
	b := []byte(digits)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < '9' {
			b[i]++
			return string(b)
		}
		b[i] = '0'
	}
	return "1" + string(b)
}
