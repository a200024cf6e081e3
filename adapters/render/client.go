package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"statflow/adapters/compute"
	"statflow/internal/errors"
	"statflow/ports"
)

const serviceName = "export"

const maxDocumentBytes = 64 << 20

// Config configures the document export service client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client posts export packages to the document service and returns the
// rendered bytes.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ ports.DocumentRenderer = (*Client)(nil)

// NewClient creates a document service client
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.ConfigInvalid("missing export service URL")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("invalid export service URL: %v", err))
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}, nil
}

// Render issues POST /render/{format} with the package JSON
func (c *Client) Render(ctx context.Context, format string, pkg []byte) ([]byte, error) {
	endpoint := c.baseURL + "/render/" + url.PathEscape(format)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(pkg))
	if err != nil {
		return nil, errors.Wrap(err, "build export request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("[Render] %s request failed after %v: %v", format, time.Since(start), err)
		return nil, errors.ExternalServiceError(serviceName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, errors.ExternalServiceError(serviceName, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := compute.ErrorMessage(body, resp.StatusCode)
		log.Printf("[Render] %s rejected (HTTP %d): %s", format, resp.StatusCode, msg)
		return nil, errors.New(errors.CodeExportFailed, msg)
	}
	if len(body) == 0 {
		return nil, errors.MalformedResponse(serviceName, fmt.Errorf("empty %s document", format))
	}
	log.Printf("[Render] %s rendered in %v (%d bytes)", format, time.Since(start), len(body))
	return body, nil
}
