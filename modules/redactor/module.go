// Package redactor anonymizes tar archives of frames with the remote
// redaction service.
package redactor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
	"github.com/specialistvlad/elementflow/internal/element"
	"github.com/specialistvlad/elementflow/internal/fsutil"
	"github.com/specialistvlad/elementflow/internal/redact"
	"github.com/specialistvlad/elementflow/internal/registry"
	"github.com/specialistvlad/elementflow/internal/retry"
	"github.com/specialistvlad/elementflow/modules/http_client"
	"github.com/specialistvlad/elementflow/modules/internal/outdir"
)

const (
	settingRedactURL     = "redact_url"
	settingFaceThreshold = "face_determination_threshold"
	settingLPThreshold   = "lp_determination_threshold"
	settingRegion        = "region"

	inputTarDir  = "tar_files_directory"
	outputTarDir = "anonymized_tar_files_directory"
)

// DefaultRetries is the number of tries per archive when none is configured.
const DefaultRetries = 2

// DefaultTimeout bounds one request to the redaction service, including the
// archive upload and the result download, unless the timeout setting says
// otherwise.
const DefaultTimeout = 10 * time.Minute

// Module implements the registry.Module interface for this package.
type Module struct {
	// Retries is the number of tries per archive.
	Retries int
	// Client is shared by all redactor instances. Nil uses a default client.
	Client *http.Client
	// PollInterval overrides how often job states are polled.
	PollInterval time.Duration
	// Timeout replaces DefaultTimeout for elements without a timeout setting.
	Timeout time.Duration
}

// Register registers the Redactor element.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("modules/redactor", registry.Types(registry.Type{
		Name: "Redactor",
		New:  m.newRedactor,
	}))
}

func (m *Module) newRedactor(settings element.Values) (element.Element, error) {
	redactURL, err := settings.String(settingRedactURL)
	if err != nil {
		return nil, err
	}
	faceThreshold, err := settings.Float(settingFaceThreshold)
	if err != nil {
		return nil, err
	}
	lpThreshold, err := settings.Float(settingLPThreshold)
	if err != nil {
		return nil, err
	}
	region, err := settings.OptionalString(settingRegion, redact.DefaultRegion)
	if err != nil {
		return nil, err
	}
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client, err := http_client.FromSettings(http_client.WithTimeout(m.Client, timeout), settings)
	if err != nil {
		return nil, err
	}

	retries := m.Retries
	if retries <= 0 {
		retries = DefaultRetries
	}

	rc := redact.NewClient(redactURL, client)
	if m.PollInterval > 0 {
		rc.WithPollInterval(m.PollInterval)
	}

	return &Redactor{
		client:  rc,
		timeout: client.Timeout,
		retries: retries,
		args: redact.JobArgs{
			Region:                     region,
			Face:                       true,
			LicensePlate:               true,
			FaceDeterminationThreshold: faceThreshold,
			LPDeterminationThreshold:   lpThreshold,
		},
	}, nil
}

// Redactor sends every archive of its input directory through a redaction
// job and stores the results under the same names.
type Redactor struct {
	client  *redact.Client
	timeout time.Duration
	retries int
	args    redact.JobArgs
}

// Run implements element.Element.
func (x *Redactor) Run(ctx context.Context, inputs, outputs element.Values) (element.Values, error) {
	logger := ctxlog.FromContext(ctx)

	tarDir, err := outdir.Input(inputs, inputTarDir)
	if err != nil {
		return nil, err
	}
	outDir, err := outdir.Prepare(outputs, outputTarDir)
	if err != nil {
		return nil, err
	}

	archives, err := fsutil.FindFilesByExtension(tarDir, ".tar")
	if err != nil || len(archives) == 0 {
		return nil, element.NewError(element.Major,
			fmt.Sprintf("The tar archives directory %s is invalid. Please check if the directory exists and contains tar files", tarDir),
			fmt.Sprintf("the tar archives directory %s either does not exist or does not contain any tar files", tarDir),
			err,
		)
	}

	for _, archive := range archives {
		dst := filepath.Join(outDir, filepath.Base(archive))
		logger.Info("Anonymizing archive.", "archive", archive, "request_timeout", x.timeout)
		if err := x.redact(ctx, archive, dst); err != nil {
			return nil, err
		}
		logger.Info("Finished anonymizing archive.", "archive", archive)
	}

	return element.Values{outputTarDir: outDir}, nil
}

func (x *Redactor) redact(ctx context.Context, src, dst string) error {
	err := retry.Do(ctx, retry.Policy{Attempts: x.retries}, func(ctx context.Context, _ int) error {
		return x.client.RedactFile(ctx, src, dst, x.args)
	})
	if err == nil {
		return nil
	}

	var failed *redact.JobFailedError
	if errors.As(err, &failed) {
		msg := fmt.Sprintf("Redacting tarfile %s failed with error: %s", src, failed.Reason)
		return element.NewError(element.Major, msg, "", err)
	}
	return element.NewError(element.Major,
		fmt.Sprintf("Redacting tarfile %s failed", src),
		fmt.Sprintf("redacting tarfile %s failed after %d attempt(s): %v", src, x.retries, err),
		err,
	)
}

// Cleanup implements element.Element. It removes the anonymized archives.
func (x *Redactor) Cleanup(ctx context.Context, outputs element.Values) error {
	return outdir.Cleanup(ctx, outputs, outputTarDir)
}
