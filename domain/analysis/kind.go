package analysis

import (
	"fmt"
	"strings"

	"statflow/domain/core"
)

// Kind identifies one of the supported analysis techniques
type Kind string

const (
	KindRegression Kind = "regression"
	KindOutliers   Kind = "outliers"
	KindCrosstab   Kind = "crosstab"
	KindGLM        Kind = "glm"
	KindDiD        Kind = "did"
)

var kindTitles = map[Kind]string{
	KindRegression: "Multiple Regression",
	KindOutliers:   "Outlier Detection",
	KindCrosstab:   "Cross-Tabulation",
	KindGLM:        "Generalized Linear Model",
	KindDiD:        "Difference-in-Differences",
}

// Kinds lists every supported kind in display order
func Kinds() []Kind {
	return []Kind{KindRegression, KindOutliers, KindCrosstab, KindGLM, KindDiD}
}

// ParseKind parses a kind name case-insensitively
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := kindTitles[k]; !ok {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownKind, s)
	}
	return k, nil
}

// Title returns the human-readable analysis name
func (k Kind) Title() string {
	if t, ok := kindTitles[k]; ok {
		return t
	}
	return string(k)
}
