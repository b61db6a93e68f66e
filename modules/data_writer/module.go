// Package data_writer encodes the anonymized frames back into a video.
package data_writer

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

	inputFrames        = "directory_anonymized_frames"
	inputVideoMetadata = "video_metadata"
	outputVideo        = "directory_anonymized_data_video"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Commander runs ffmpeg. Nil runs the real tool.
	Commander ffmpeg.Commander
	// CheckDeps verifies the tools are installed when the unit is loaded.
	// Nil uses ffmpeg.CheckDeps.
	CheckDeps func() error
}

// Register registers the DataWriter element. Loading the unit fails when
// ffmpeg is missing.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("modules/data_writer", func() ([]registry.Type, error) {
		check := m.CheckDeps
		if check == nil {
			check = ffmpeg.CheckDeps
		}
		if err := check(); err != nil {
			return nil, err
		}
		return []registry.Type{{Name: "DataWriter", New: m.newDataWriter}}, nil
	})
}

func (m *Module) newDataWriter(settings element.Values) (element.Element, error) {
	format, err := settings.String(settingFrameFormat)
	if err != nil {
		return nil, err
	}
	return &DataWriter{executor: ffmpeg.NewExecutor(format, m.Commander)}, nil
}

// DataWriter produces the final video. Its output is the deliverable of the
// pipeline, so Cleanup keeps it.
type DataWriter struct {
	executor *ffmpeg.Executor
}

// Run implements element.Element.
func (d *DataWriter) Run(ctx context.Context, inputs, outputs element.Values) (element.Values, error) {
	logger := ctxlog.FromContext(ctx)

	framesDir, err := outdir.Input(inputs, inputFrames)
	if err != nil {
		return nil, err
	}
	if !fsutil.HasFiles(framesDir, ".png") {
		msg := fmt.Sprintf("The anonymized frames directory %s is invalid. Please check if it contains PNG files", framesDir)
		return nil, element.NewError(element.Major, msg, "", nil)
	}

	md, err := ffmpeg.MetadataFrom(inputs[inputVideoMetadata])
	if err != nil {
		msg := fmt.Sprintf("The video metadata is invalid: %v", err)
		return nil, element.NewError(element.Major, msg, "", err)
	}

	videoDir, err := outdir.Prepare(outputs, outputVideo)
	if err != nil {
		return nil, err
	}

	logger.Info("Started to create video.", "frames", framesDir)
	if err := d.executor.CreateVideo(ctx, framesDir, videoDir, md); err != nil {
		msg := fmt.Sprintf("Failed to create video: %v", err)
		return nil, element.NewError(element.Major, msg, "", err)
	}
	logger.Info("Finished creating video.", "directory", videoDir, "video", md.Name)

	return element.Values{outputVideo: videoDir}, nil
}

// Cleanup implements element.Element.
func (d *DataWriter) Cleanup(context.Context, element.Values) error {
	return nil
}
