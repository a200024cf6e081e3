package render

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statflow/internal/errors"
)

func documentService(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/render/{format}", func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		switch chi.URLParam(req, "format") {
		case "pdf":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write(append([]byte("%PDF-"), body...))
		case "empty":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"unknown format"}`))
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRender(t *testing.T) {
	client, err := NewClient(Config{BaseURL: documentService(t).URL + "/"})
	require.NoError(t, err)

	doc, err := client.Render(context.Background(), "pdf", []byte(`{"id":"p1"}`))
	require.NoError(t, err)
	assert.Equal(t, `%PDF-{"id":"p1"}`, string(doc))
}

func TestRenderFailures(t *testing.T) {
	client, err := NewClient(Config{BaseURL: documentService(t).URL})
	require.NoError(t, err)

	_, err = client.Render(context.Background(), "odt", []byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, errors.CodeExportFailed, errors.GetCode(err))
	assert.Equal(t, "unknown format", errors.UserMessage(err))

	_, err = client.Render(context.Background(), "empty", []byte(`{}`))
	assert.Equal(t, errors.CodeMalformedResponse, errors.GetCode(err))

	down, err := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	_, err = down.Render(context.Background(), "pdf", []byte(`{}`))
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))

	_, err = NewClient(Config{})
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
