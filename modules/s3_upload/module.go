package s3_upload

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
	"github.com/specialistvlad/elementflow/internal/element"
	"github.com/specialistvlad/elementflow/internal/registry"
	"github.com/specialistvlad/elementflow/modules/http_client"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client is shared by all uploads. Nil uses a default client.
	Client *http.Client
}

// Register registers the S3Upload element.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("modules/s3_upload", registry.Types(registry.Type{
		Name: "S3Upload",
		New: func(settings element.Values) (element.Element, error) {
			client, err := http_client.FromSettings(m.Client, settings)
			if err != nil {
				return nil, err
			}
			return &S3Upload{client: client}, nil
		},
	}))
}

// S3Upload uploads a file to a pre-signed URL. Declared outputs select
// fields of the response: status_code or status.
type S3Upload struct {
	client *http.Client
}

// Run implements element.Element. Every failure is Major.
func (s *S3Upload) Run(ctx context.Context, inputs, outputs element.Values) (element.Values, error) {
	logger := ctxlog.FromContext(ctx).With("action", "upload")

	sourcePath, err := inputs.String("source_path")
	if err != nil {
		return nil, element.NewError(element.Major, "The source path is missing", "", err)
	}
	uploadURL, err := inputs.String("upload_url")
	if err != nil {
		return nil, element.NewError(element.Major, "The upload URL is missing", "", err)
	}

	status, code, err := s.upload(ctx, sourcePath, uploadURL)
	if err != nil {
		return nil, element.NewError(element.Major, fmt.Sprintf("Failed to upload %s", sourcePath), err.Error(), err)
	}
	logger.Info("Successfully uploaded file", "status", status)

	out, err := http_client.SelectFields(outputs, map[string]any{
		"status_code": code,
		"status":      status,
	})
	if err != nil {
		return nil, element.NewError(element.Major, err.Error(), "", err)
	}
	return out, nil
}

func (s *S3Upload) upload(ctx context.Context, sourcePath, uploadURL string) (string, int, error) {
	logger := ctxlog.FromContext(ctx).With("action", "upload")

	file, err := os.Open(sourcePath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open source file '%s': %w", sourcePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return "", 0, fmt.Errorf("failed to get file stats for '%s': %w", sourcePath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, file)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create S3 upload request: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(sourcePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	logger.Info("Uploading file to S3", "source", sourcePath, "size", stat.Size(), "contentType", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to execute S3 upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("S3 upload failed with status: %s", resp.Status)
	}
	return resp.Status, resp.StatusCode, nil
}

// Cleanup implements element.Element.
func (s *S3Upload) Cleanup(context.Context, element.Values) error {
	return nil
}
