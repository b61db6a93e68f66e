// Package validator checks that a pipeline can start: the input directory
// holds a video and the redaction service is operational.
package validator

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
	"github.com/specialistvlad/elementflow/internal/element"
	"github.com/specialistvlad/elementflow/internal/fsutil"
	"github.com/specialistvlad/elementflow/internal/redact"
	"github.com/specialistvlad/elementflow/internal/registry"
	"github.com/specialistvlad/elementflow/modules/http_client"
	"github.com/specialistvlad/elementflow/modules/internal/outdir"
)

const (
	inputDataDirectory = "directory_data_video"
	inputRedactURL     = "redact_url"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client is used for the health check. Nil uses a default client.
	Client *http.Client
}

// Register registers the Validator element.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("modules/validator", registry.Types(registry.Type{
		Name: "Validator",
		New: func(settings element.Values) (element.Element, error) {
			client, err := http_client.FromSettings(m.Client, settings)
			if err != nil {
				return nil, err
			}
			return &Validator{client: client}, nil
		},
	}))
}

// Validator produces no outputs.
type Validator struct {
	client *http.Client
}

// Run implements element.Element.
func (v *Validator) Run(ctx context.Context, inputs, _ element.Values) (element.Values, error) {
	logger := ctxlog.FromContext(ctx)

	dir, err := outdir.Input(inputs, inputDataDirectory)
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	logger.Info("Validating input directory.", "directory", dir)
	if !fsutil.HasFiles(dir, ".mp4") {
		return nil, element.NewError(element.Major,
			fmt.Sprintf("The input directory %s is invalid. Please check if the directory exists and has a MP4 file", dir),
			fmt.Sprintf("the input directory %s either does not exist or does not contain any MP4 files", dir),
			nil,
		)
	}

	redactURL, err := outdir.Input(inputs, inputRedactURL)
	if err != nil {
		return nil, err
	}

	client := redact.NewClient(redactURL, v.client)
	logger.Info("Validating redaction service.", "url", redactURL)
	ok, err := client.Healthy(ctx)
	if err != nil {
		return nil, element.NewError(element.Major,
			"An error occurred while checking redact health status",
			fmt.Sprintf("redact health check %s failed with %v", client.HealthURL(), err),
			err,
		)
	}
	if !ok {
		return nil, element.NewError(element.Major,
			"Redact is not operational. Please check if the redact container is running and functional",
			"redact status is not 'operational'",
			nil,
		)
	}

	return element.Values{}, nil
}

// Cleanup implements element.Element. Validator leaves nothing behind.
func (v *Validator) Cleanup(context.Context, element.Values) error {
	return nil
}
