package metrics

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statflow/domain/analysis"
)

func TestRecorderRunLifecycle(t *testing.T) {
	rec := NewRecorder()
	rec.RunStarted(analysis.KindGLM)
	rec.RunStarted(analysis.KindGLM)
	rec.RunFinished(analysis.KindGLM, analysis.RunSucceeded, 1500*time.Millisecond)
	rec.RunDiscarded(analysis.KindGLM)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.runsStarted.WithLabelValues("glm")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runsFinished.WithLabelValues("glm", "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runsDiscarded.WithLabelValues("glm")))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.runsInFlight.WithLabelValues("glm")))

	rec.ExportFinished("xlsx", nil, time.Millisecond)
	rec.ExportFinished("pdf", errors.New("down"), time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.exports.WithLabelValues("pdf", "error")))
}

func TestRouter(t *testing.T) {
	rec := NewRecorder()
	rec.RunStarted(analysis.KindDiD)
	srv := httptest.NewServer(Router(rec, func() map[string]interface{} {
		return map[string]interface{}{"screens": 3}
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `statflow_runs_started_total{kind="did"} 1`)

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, 3.0, health["screens"])
}

func TestRouterAllowsCrossOriginReads(t *testing.T) {
	srv := httptest.NewServer(Router(NewRecorder(), nil))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://status.local")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
