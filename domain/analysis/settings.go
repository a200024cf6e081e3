package analysis

import (
	"fmt"
	"strings"
)

// Regression variable-selection methods
const (
	MethodEnter    = "enter"
	MethodForward  = "forward"
	MethodBackward = "backward"
	MethodStepwise = "stepwise"
)

// Outlier detection methods
const (
	MethodIQR    = "iqr"
	MethodZScore = "zscore"
	MethodMAD    = "mad"
)

// GLM families and links
const (
	FamilyGaussian = "gaussian"
	FamilyBinomial = "binomial"
	FamilyPoisson  = "poisson"
	FamilyGamma    = "gamma"

	LinkIdentity = "identity"
	LinkLogit    = "logit"
	LinkProbit   = "probit"
	LinkLog      = "log"
	LinkInverse  = "inverse"
)

// familyLinks lists the links accepted by each family; the first is canonical.
var familyLinks = map[string][]string{
	FamilyGaussian: {LinkIdentity, LinkLog, LinkInverse},
	FamilyBinomial: {LinkLogit, LinkProbit, LinkLog},
	FamilyPoisson:  {LinkLog, LinkIdentity},
	FamilyGamma:    {LinkInverse, LinkLog, LinkIdentity},
}

// Settings holds the analysis-specific parameters chosen on the settings
// step. Fields that do not apply to a kind are ignored.
type Settings struct {
	Method           string  `json:"method,omitempty"`
	IncludeIntercept *bool   `json:"include_intercept,omitempty"`
	Threshold        float64 `json:"threshold,omitempty"`
	Family           string  `json:"family,omitempty"`
	Link             string  `json:"link,omitempty"`
	YatesCorrection  bool    `json:"yates_correction,omitempty"`
	RobustErrors     bool    `json:"robust_errors,omitempty"`
	ConfidenceLevel  float64 `json:"confidence_level,omitempty"`
}

// DefaultSettings returns the settings a fresh screen starts with
func DefaultSettings(kind Kind) Settings {
	return Settings{}.WithDefaults(kind)
}

// WithDefaults fills unset fields with the defaults of the kind
func (s Settings) WithDefaults(kind Kind) Settings {
	s.Method = strings.ToLower(strings.TrimSpace(s.Method))
	s.Family = strings.ToLower(strings.TrimSpace(s.Family))
	s.Link = strings.ToLower(strings.TrimSpace(s.Link))
	if s.ConfidenceLevel <= 0 || s.ConfidenceLevel >= 1 {
		s.ConfidenceLevel = 0.95
	}

	switch kind {
	case KindRegression:
		if s.Method == "" {
			s.Method = MethodEnter
		}
		if s.IncludeIntercept == nil {
			yes := true
			s.IncludeIntercept = &yes
		}
	case KindOutliers:
		if s.Method == "" {
			s.Method = MethodIQR
		}
		if s.Threshold <= 0 {
			switch s.Method {
			case MethodZScore, MethodMAD:
				s.Threshold = 3
			default:
				s.Threshold = 1.5
			}
		}
	case KindGLM:
		if s.Family == "" {
			s.Family = FamilyGaussian
		}
		if s.Link == "" {
			s.Link = CanonicalLink(s.Family)
		}
	}
	return s
}

// LinkAllowed reports whether a link function is valid for a family
func LinkAllowed(family, link string) bool {
	for _, l := range familyLinks[family] {
		if l == link {
			return true
		}
	}
	return false
}

// CanonicalLink returns the default link of a family, "" when unknown
func CanonicalLink(family string) string {
	if links := familyLinks[family]; len(links) > 0 {
		return links[0]
	}
	return ""
}

// KnownFamily reports whether the family is supported
func KnownFamily(family string) bool {
	_, ok := familyLinks[family]
	return ok
}

// Params renders the settings as compute-service request parameters
func (s Settings) Params(kind Kind) map[string]interface{} {
	s = s.WithDefaults(kind)
	params := map[string]interface{}{
		"confidence_level": s.ConfidenceLevel,
	}
	switch kind {
	case KindRegression:
		params["method"] = s.Method
		params["include_intercept"] = *s.IncludeIntercept
	case KindOutliers:
		params["method"] = s.Method
		params["threshold"] = s.Threshold
	case KindCrosstab:
		params["yates_correction"] = s.YatesCorrection
	case KindGLM:
		params["family"] = s.Family
		params["link"] = s.Link
	case KindDiD:
		params["robust_errors"] = s.RobustErrors
	}
	return params
}

// Describe renders the settings for reports, e.g. "family=binomial, link=logit"
func (s Settings) Describe(kind Kind) string {
	s = s.WithDefaults(kind)
	switch kind {
	case KindRegression:
		return fmt.Sprintf("method=%s, intercept=%t", s.Method, *s.IncludeIntercept)
	case KindOutliers:
		return fmt.Sprintf("method=%s, threshold=%g", s.Method, s.Threshold)
	case KindCrosstab:
		return fmt.Sprintf("yates_correction=%t", s.YatesCorrection)
	case KindGLM:
		return fmt.Sprintf("family=%s, link=%s", s.Family, s.Link)
	case KindDiD:
		return fmt.Sprintf("robust_errors=%t, confidence=%g", s.RobustErrors, s.ConfidenceLevel)
	}
	return ""
}

// Equal compares settings after defaults are applied
func (s Settings) Equal(o Settings, kind Kind) bool {
	a, b := s.WithDefaults(kind), o.WithDefaults(kind)
	if (a.IncludeIntercept == nil) != (b.IncludeIntercept == nil) {
		return false
	}
	if a.IncludeIntercept != nil && *a.IncludeIntercept != *b.IncludeIntercept {
		return false
	}
	return a.Method == b.Method && a.Threshold == b.Threshold &&
		a.Family == b.Family && a.Link == b.Link &&
		a.YatesCorrection == b.YatesCorrection && a.RobustErrors == b.RobustErrors &&
		a.ConfidenceLevel == b.ConfidenceLevel
}
