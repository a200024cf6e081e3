package analysis

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statflow/domain/core"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" GLM ")
	require.NoError(t, err)
	assert.Equal(t, KindGLM, k)
	assert.Equal(t, "Generalized Linear Model", k.Title())

	_, err = ParseKind("anova")
	assert.True(t, errors.Is(err, core.ErrUnknownKind))
	assert.Len(t, Kinds(), 5)
}

func TestSettingsDefaults(t *testing.T) {
	reg := DefaultSettings(KindRegression)
	assert.Equal(t, MethodEnter, reg.Method)
	require.NotNil(t, reg.IncludeIntercept)
	assert.True(t, *reg.IncludeIntercept)
	assert.Equal(t, 0.95, reg.ConfidenceLevel)

	out := Settings{Method: "ZScore"}.WithDefaults(KindOutliers)
	assert.Equal(t, MethodZScore, out.Method)
	assert.Equal(t, 3.0, out.Threshold)
	assert.Equal(t, 1.5, DefaultSettings(KindOutliers).Threshold)

	glm := Settings{Family: "poisson"}.WithDefaults(KindGLM)
	assert.Equal(t, LinkLog, glm.Link)
	assert.True(t, LinkAllowed(FamilyBinomial, LinkProbit))
	assert.False(t, LinkAllowed(FamilyPoisson, LinkLogit))
	assert.False(t, KnownFamily("tweedie"))
}

func TestSettingsParamsAndEqual(t *testing.T) {
	p := Settings{Family: FamilyBinomial}.Params(KindGLM)
	assert.Equal(t, "binomial", p["family"])
	assert.Equal(t, "logit", p["link"])

	assert.True(t, Settings{}.Equal(DefaultSettings(KindRegression), KindRegression))
	assert.False(t, Settings{Method: MethodStepwise}.Equal(Settings{}, KindRegression))
	assert.Equal(t, "family=binomial, link=logit", Settings{Family: "binomial"}.Describe(KindGLM))
}

func TestDecodeVariants(t *testing.T) {
	raw := json.RawMessage(`{"n":40,"chi_square":5.3,"df":2,"p_value":0.07,"cramers_v":0.42}`)
	res, err := Decode(KindCrosstab, raw)
	require.NoError(t, err)

	ct, ok := res.(*CrosstabResult)
	require.True(t, ok)
	assert.Equal(t, KindCrosstab, ct.Kind())
	assert.Equal(t, 40, ct.SampleSize())
	require.NotNil(t, ct.CramersV)
	assert.Equal(t, 0.42, *ct.CramersV)
	assert.Nil(t, ct.MinExpected)
	assert.JSONEq(t, string(raw), string(ct.Raw()))

	res, err = Decode(KindDiD, json.RawMessage(`{"n":400,"att":2.3,"means":{"pre_treated":10}}`))
	require.NoError(t, err)
	did := res.(*DiDResult)
	require.NotNil(t, did.Means.PreTreated)
	assert.Nil(t, did.Means.PostControl)

	_, err = Decode(KindGLM, json.RawMessage(`{"n":"many"}`))
	assert.Error(t, err)

	_, err = Decode(Kind("anova"), json.RawMessage(`{}`))
	assert.True(t, errors.Is(err, core.ErrUnknownKind))
}
