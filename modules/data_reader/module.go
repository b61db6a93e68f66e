// Package data_reader extracts the frames of the input video as images.
package data_reader

import (
	"context"
	"fmt"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
	"github.com/specialistvlad/elementflow/internal/element"
	"github.com/specialistvlad/elementflow/internal/ffmpeg"
	"github.com/specialistvlad/elementflow/internal/fsutil"
	"github.com/specialistvlad/elementflow/internal/registry"
	"github.com/specialistvlad/elementflow/modules/internal/outdir"
)

const (
	settingFrameFormat = "frame_file_name_format"

	inputDataDirectory  = "directory_data_video"
	outputFrames        = "directory_extracted_frames"
	outputVideoMetadata = "video_metadata"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Commander runs ffmpeg and ffprobe. Nil runs the real tools.
	Commander ffmpeg.Commander
	// CheckDeps verifies the tools are installed when the unit is loaded.
	// Nil uses ffmpeg.CheckDeps.
	CheckDeps func() error
}

// Register registers the DataReader element. Loading the unit fails when
// ffmpeg or ffprobe is missing.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("modules/data_reader", func() ([]registry.Type, error) {
		check := m.CheckDeps
		if check == nil {
			check = ffmpeg.CheckDeps
		}
		if err := check(); err != nil {
			return nil, err
		}
		return []registry.Type{{Name: "DataReader", New: m.newDataReader}}, nil
	})
}

func (m *Module) newDataReader(settings element.Values) (element.Element, error) {
	format, err := settings.String(settingFrameFormat)
	if err != nil {
		return nil, err
	}
	return &DataReader{executor: ffmpeg.NewExecutor(format, m.Commander)}, nil
}

// DataReader turns the first MP4 of the input directory into PNG frames.
type DataReader struct {
	executor *ffmpeg.Executor
}

// Run implements element.Element.
func (d *DataReader) Run(ctx context.Context, inputs, outputs element.Values) (element.Values, error) {
	logger := ctxlog.FromContext(ctx)

	dataDir, err := outdir.Input(inputs, inputDataDirectory)
	if err != nil {
		return nil, err
	}
	videos, err := fsutil.FindFilesByExtension(dataDir, ".mp4")
	if err != nil || len(videos) == 0 {
		msg := fmt.Sprintf("There is no MP4 file in %s", dataDir)
		return nil, element.NewError(element.Major, msg, "", err)
	}
	video := videos[0]

	framesDir, err := outdir.Prepare(outputs, outputFrames)
	if err != nil {
		return nil, err
	}

	logger.Info("Started to extract frames.", "video", video, "directory", framesDir)
	md, err := d.executor.ExtractFrames(ctx, video, framesDir)
	if err != nil {
		msg := fmt.Sprintf("Failed to extract frames from the video: %v", err)
		return nil, element.NewError(element.Major, msg, "", err)
	}
	logger.Info("Finished extracting frames.", "width", md.Width, "height", md.Height, "codec", md.CodecName)

	return element.Values{
		outputFrames:        framesDir,
		outputVideoMetadata: md,
	}, nil
}

// Cleanup implements element.Element. It removes the extracted frames.
func (d *DataReader) Cleanup(ctx context.Context, outputs element.Values) error {
	return outdir.Cleanup(ctx, outputs, outputFrames)
}
