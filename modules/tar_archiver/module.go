// Package tar_archiver packs extracted frames into numbered tar archives.
package tar_archiver

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
	settingFilesPerArchive = "number_of_files_in_tar"

	inputFrames   = "directory_extracted_frames"
	outputTarDir  = "tar_files_directory"
	frameFileType = ".png"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the TarArchiver element.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("modules/tar_archiver", registry.Types(registry.Type{
		Name: "TarArchiver",
		New:  newTarArchiver,
	}))
}

func newTarArchiver(settings element.Values) (element.Element, error) {
	n, err := settings.OptionalInt(settingFilesPerArchive, tarball.DefaultFilesPerArchive)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %d", settingFilesPerArchive, n)
	}
	return &TarArchiver{filesPerArchive: n}, nil
}

// TarArchiver splits the frames into archives of a fixed number of files.
type TarArchiver struct {
	filesPerArchive int
}

// Run implements element.Element.
func (a *TarArchiver) Run(ctx context.Context, inputs, outputs element.Values) (element.Values, error) {
	logger := ctxlog.FromContext(ctx)

	framesDir, err := outdir.Input(inputs, inputFrames)
	if err != nil {
		return nil, err
	}
	frames, err := fsutil.FindFilesByExtension(framesDir, frameFileType)
	if err != nil || len(frames) == 0 {
		msg := fmt.Sprintf("There are no files with extension '%s' to archive in %s", frameFileType, framesDir)
		return nil, element.NewError(element.Major, msg, "", err)
	}

	tarDir, err := outdir.Prepare(outputs, outputTarDir)
	if err != nil {
		return nil, err
	}

	logger.Info("Started to archive frames.", "frames", len(frames), "directory", tarDir, "per_archive", a.filesPerArchive)
	archives, err := tarball.Archive(ctx, frames, tarDir, a.filesPerArchive)
	if err != nil {
		msg := fmt.Sprintf("Failed to archive frames into the archive(-s): %v", err)
		return nil, element.NewError(element.Major, msg, "", err)
	}
	logger.Info("Finished archiving frames.", "archives", len(archives))

	return element.Values{outputTarDir: tarDir}, nil
}

// Cleanup implements element.Element. It removes the archives.
func (a *TarArchiver) Cleanup(ctx context.Context, outputs element.Values) error {
	return outdir.Cleanup(ctx, outputs, outputTarDir)
}
