package api

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statflow/ports"
)

type recordingPublisher struct {
	events []ports.ScreenEvent
}

func (r *recordingPublisher) Publish(e ports.ScreenEvent) { r.events = append(r.events, e) }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
}

func TestSSEHubStreamsScreenEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewSSEHub()
	defer hub.Stop()

	r := gin.New()
	r.GET("/api/screens/:id/events", hub.HandleSSE)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/screens/s1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	waitFor(t, func() bool { return hub.GetClientCount("s1") == 1 })
	assert.Equal(t, []string{"s1"}, hub.GetActiveScreens())

	hub.Publish(ports.ScreenEvent{ScreenID: "other", EventType: "run_started"})
	hub.Publish(ports.ScreenEvent{ScreenID: "s1", EventType: "run_failed", Message: "feature X not numeric"})

	scanner := bufio.NewScanner(resp.Body)
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		lines = append(lines, line)
		if strings.HasPrefix(line, "data:") {
			break
		}
	}
	assert.Contains(t, lines, "event:run_failed")
	assert.Contains(t, lines[len(lines)-1], `"message":"feature X not numeric"`)

	cancel()
	waitFor(t, func() bool { return hub.GetClientCount("s1") == 0 })
}

func TestPublishersFanOut(t *testing.T) {
	a, b := &recordingPublisher{}, &recordingPublisher{}
	pubs := Publishers{a, nil, b, LogPublisher{}}
	pubs.Publish(ports.ScreenEvent{ScreenID: "s1", EventType: "run_discarded"})

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}
