package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"statflow/domain/analysis"
	"statflow/internal/errors"
	"statflow/ports"
)

const serviceName = "compute"

// maxBodyBytes caps the response read; results with embedded plots are a
// few MB at most.
const maxBodyBytes = 32 << 20

// Config configures the compute service client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the remote compute service over HTTP
type Client struct {
	baseURL string
	http    *http.Client
}

var _ ports.ComputeClient = (*Client)(nil)

// NewClient creates a compute client
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.ConfigInvalid("missing compute service URL")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("invalid compute service URL: %v", err))
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Compute issues one POST to /analyses/{kind} and decodes the result
func (c *Client) Compute(ctx context.Context, req ports.ComputeRequest) (*analysis.Envelope, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "marshal compute request")
	}

	endpoint := c.baseURL + "/analyses/" + url.PathEscape(string(req.Kind))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "build compute request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		log.Printf("[Compute] %s request failed after %v: %v", req.Kind, time.Since(start), err)
		return nil, errors.ExternalServiceError(serviceName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.ExternalServiceError(serviceName, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || hasError(body) {
		msg := ErrorMessage(body, resp.StatusCode)
		log.Printf("[Compute] %s rejected (HTTP %d) after %v: %s", req.Kind, resp.StatusCode, time.Since(start), msg)
		return nil, errors.ComputeRejected(msg)
	}

	env, err := decodeEnvelope(req.Kind, body)
	if err != nil {
		log.Printf("[Compute] %s returned a malformed body: %v", req.Kind, err)
		return nil, errors.MalformedResponse(serviceName, err)
	}
	log.Printf("[Compute] %s completed in %v (n=%d)", req.Kind, time.Since(start), env.Result.SampleSize())
	return env, nil
}

// hasError reports a non-empty "error" member in a JSON object body
func hasError(body []byte) bool {
	if !gjson.ValidBytes(body) {
		return false
	}
	e := gjson.GetBytes(body, "error")
	switch e.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return strings.TrimSpace(e.String()) != ""
	}
	return e.Exists()
}

// ErrorMessage picks the user-visible message of a failed call: a "detail"
// string, then the joined messages of a "detail" list, then "error", then
// "HTTP <status>".
func ErrorMessage(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		detail := gjson.GetBytes(body, "detail")
		if detail.Type == gjson.String && strings.TrimSpace(detail.String()) != "" {
			return detail.String()
		}
		if detail.IsArray() {
			var msgs []string
			for _, item := range detail.Array() {
				text := item.Get("msg").String()
				if item.Type == gjson.String {
					text = item.String()
				}
				if strings.TrimSpace(text) != "" {
					msgs = append(msgs, text)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
		e := gjson.GetBytes(body, "error")
		if e.Type == gjson.String && strings.TrimSpace(e.String()) != "" {
			return e.String()
		}
		if msg := e.Get("message"); msg.Type == gjson.String && msg.String() != "" {
			return msg.String()
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

// decodeEnvelope accepts {"result": {...}, "plot": "..."} or a bare result
// object.
func decodeEnvelope(kind analysis.Kind, body []byte) (*analysis.Envelope, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("body is not JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("body is not a JSON object")
	}

	raw := body
	if result := root.Get("result"); result.Exists() {
		if !result.IsObject() {
			return nil, fmt.Errorf("result is not a JSON object")
		}
		raw = []byte(result.Raw)
	}
	decoded, err := analysis.Decode(kind, json.RawMessage(raw))
	if err != nil {
		return nil, err
	}
	return &analysis.Envelope{Result: decoded, Plot: root.Get("plot").String()}, nil
}
