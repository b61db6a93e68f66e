// Package redact is a client for the remote redaction service that blurs
// faces and license plates in archives of images.
//
// A job is started by uploading an archive, polled until it reaches a
// terminal state and its result is then downloaded:
//
//	GET  <base>/v4/health
//	POST <base>/blur/v4/archives
//	GET  <base>/blur/v4/archives/<output_id>/status
//	GET  <base>/blur/v4/archives/<output_id>
package redact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/elementflow/internal/ctxlog"
)

const (
	// StatusOperational is what a healthy service reports.
	StatusOperational = "operational"

	// RequestIDHeader carries a fresh id on every request.
	RequestIDHeader = "X-Request-ID"

	defaultPollInterval = time.Second
	jobsPath            = "/blur/v4/archives"
)

// Client talks to one redaction service.
type Client struct {
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
}

// NewClient creates a client for the service at baseURL. A nil httpClient
// uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         httpClient,
		pollInterval: defaultPollInterval,
	}
}

// WithPollInterval sets how often WaitUntilFinished asks for the job state.
func (c *Client) WithPollInterval(d time.Duration) *Client {
	c.pollInterval = d
	return c
}

// HealthURL is the endpoint Healthy queries.
func (c *Client) HealthURL() string {
	return c.baseURL + "/v4/health"
}

// Healthy reports whether the service answers its health endpoint with the
// operational status. A transport failure is returned as an error; an
// unexpected answer is reported as unhealthy.
func (c *Client) Healthy(ctx context.Context) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, c.HealthURL(), nil, "")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read health response: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Redaction service health response.", "status_code", resp.StatusCode, "body", string(body))

	var health struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &health); err != nil {
		return false, nil
	}
	return health.Status == StatusOperational, nil
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request %s %s: %w", method, url, err)
	}
	return resp, nil
}

// expectOK drains and closes resp when it is not a 2xx answer and returns an
// *HTTPError describing it.
func expectOK(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &HTTPError{
		Method:     resp.Request.Method,
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// HTTPError is a non-2xx answer from the service.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}
