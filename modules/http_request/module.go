package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
	"github.com/specialistvlad/elementflow/internal/element"
	"github.com/specialistvlad/elementflow/internal/registry"
	"github.com/specialistvlad/elementflow/modules/http_client"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client is shared by all requests. Nil uses a default client.
	Client *http.Client
}

// Register registers the HttpRequest element.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("modules/http_request", registry.Types(registry.Type{
		Name: "HttpRequest",
		New: func(settings element.Values) (element.Element, error) {
			client, err := http_client.FromSettings(m.Client, settings)
			if err != nil {
				return nil, err
			}
			return &HttpRequest{client: client}, nil
		},
	}))
}

// HttpRequest performs one request. Declared outputs select fields of the
// response: status_code, status or body.
type HttpRequest struct {
	client *http.Client
}

// Run implements element.Element. A transport failure is Major; a non-2xx
// answer is Minor.
func (h *HttpRequest) Run(ctx context.Context, inputs, outputs element.Values) (element.Values, error) {
	logger := ctxlog.FromContext(ctx)

	url, err := inputs.String("url")
	if err != nil {
		return nil, element.NewError(element.Major, "The request URL is missing", "", err)
	}
	method, err := inputs.OptionalString("method", http.MethodGet)
	if err != nil {
		return nil, element.NewError(element.Major, "The request method is invalid", "", err)
	}
	method = strings.ToUpper(method)

	logger.Info("Making HTTP request", "method", method, "url", url)

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, element.NewError(element.Major, "Failed to create the request", fmt.Sprintf("failed to create request: %v", err), err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, element.NewError(element.Major,
			fmt.Sprintf("The request to %s failed", url),
			fmt.Sprintf("failed to execute request: %v", err),
			err,
		)
	}
	defer resp.Body.Close()

	logger.Info("Received HTTP response", "status", resp.Status)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, element.NewError(element.Major, "Failed to read the response", fmt.Sprintf("failed to read response body: %v", err), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, element.NewError(element.Minor,
			fmt.Sprintf("The request to %s returned %s", url, resp.Status),
			fmt.Sprintf("%s %s returned %s: %s", method, url, resp.Status, body),
			nil,
		)
	}

	out, err := http_client.SelectFields(outputs, map[string]any{
		"status_code": resp.StatusCode,
		"status":      resp.Status,
		"body":        string(body),
	})
	if err != nil {
		return nil, element.NewError(element.Major, err.Error(), "", err)
	}
	return out, nil
}

// Cleanup implements element.Element.
func (h *HttpRequest) Cleanup(context.Context, element.Values) error {
	http_client.Close(h.client)
	return nil
}
