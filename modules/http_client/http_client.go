// Package http_client builds the *http.Client shared by the elements that
// talk HTTP and maps responses onto declared outputs.
package http_client

import (
	"fmt"
	"net/http"
	"time"

	"github.com/specialistvlad/elementflow/internal/element"
)

// DefaultTimeout is used when an element declares no timeout setting.
const DefaultTimeout = 30 * time.Second

// TimeoutSetting is the settings key holding a duration string such as "10s".
const TimeoutSetting = "timeout"

// New returns a client with a pooled transport.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// FromSettings returns client when settings declare no timeout, and a new
// client with the declared timeout otherwise.
func FromSettings(client *http.Client, settings element.Values) (*http.Client, error) {
	raw, err := settings.OptionalString(TimeoutSetting, "")
	if err != nil {
		return nil, err
	}
	if raw == "" {
		if client == nil {
			client = New(DefaultTimeout)
		}
		return client, nil
	}

	timeout, err := time.ParseDuration(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s setting: %w", TimeoutSetting, err)
	}
	return New(timeout), nil
}

// WithTimeout returns a copy of client with the given timeout. The copy
// shares the transport, and so the connection pool, of client.
func WithTimeout(client *http.Client, timeout time.Duration) *http.Client {
	if client == nil {
		return New(timeout)
	}
	c := *client
	c.Timeout = timeout
	return &c
}

// Close releases the idle connections of client.
func Close(client *http.Client) {
	if client != nil {
		client.CloseIdleConnections()
	}
}

// SelectFields builds the outputs of an element from response fields. Every
// declared output names the field it receives, for example
// `code: status_code`. A nil outputs selects nothing.
func SelectFields(outputs element.Values, fields map[string]any) (element.Values, error) {
	if outputs == nil {
		return element.Values{}, nil
	}
	out := make(element.Values, len(outputs))
	for _, key := range outputs.Keys() {
		field, err := outputs.String(key)
		if err != nil {
			return nil, fmt.Errorf("output %q must name a response field: %w", key, err)
		}
		v, ok := fields[field]
		if !ok {
			return nil, fmt.Errorf("output %q names unknown response field %q", key, field)
		}
		out[key] = v
	}
	return out, nil
}
