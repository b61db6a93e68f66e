// Package tar_extractor unpacks anonymized archives back into frames.
package tar_extractor

import (
	"context"
	"fmt"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
	"github.com/specialistvlad/elementflow/internal/element"
	"github.com/specialistvlad/elementflow/internal/fsutil"
	"github.com/specialistvlad/elementflow/internal/registry"
	"github.com/specialistvlad/elementflow/internal/tarball"
	"github.com/specialistvlad/elementflow/modules/internal/outdir"
)

const (
	inputTarDir  = "anonymized_tar_files_directory"
	outputFrames = "directory_anonymized_frames"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the TarExtractor element.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("modules/tar_extractor", registry.Types(registry.Type{
		Name: "TarExtractor",
		New: func(element.Values) (element.Element, error) {
			return &TarExtractor{}, nil
		},
	}))
}

// TarExtractor extracts every archive of its input directory, in name order.
type TarExtractor struct{}

// Run implements element.Element.
func (x *TarExtractor) Run(ctx context.Context, inputs, outputs element.Values) (element.Values, error) {
	logger := ctxlog.FromContext(ctx)

	tarDir, err := outdir.Input(inputs, inputTarDir)
	if err != nil {
		return nil, err
	}
	archives, err := fsutil.FindFilesByExtension(tarDir, ".tar")
	if err != nil || len(archives) == 0 {
		msg := fmt.Sprintf("There are no tar files in the %s. Please check the directory.", tarDir)
		return nil, element.NewError(element.Major, msg, "", err)
	}

	framesDir, err := outdir.Prepare(outputs, outputFrames)
	if err != nil {
		return nil, err
	}

	logger.Info("Started to extract frames from archives.", "archives", len(archives), "directory", framesDir)
	if err := tarball.Extract(ctx, archives, framesDir); err != nil {
		msg := fmt.Sprintf("Failed to extract frames from the archive(s): %v", err)
		return nil, element.NewError(element.Major, msg, "", err)
	}
	logger.Info("Finished extracting frames.")

	return element.Values{outputFrames: framesDir}, nil
}

// Cleanup implements element.Element. It removes the extracted frames.
func (x *TarExtractor) Cleanup(ctx context.Context, outputs element.Values) error {
	return outdir.Cleanup(ctx, outputs, outputFrames)
}
