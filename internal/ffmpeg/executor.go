package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
)

// Executor extracts and encodes frames named after a printf-style pattern
// such as "%08d"; frames are always PNG images.
type Executor struct {
	FileNameFormat string
	run            Commander
}

// NewExecutor creates an executor that runs the real tools. A nil run uses
// Exec.
func NewExecutor(fileNameFormat string, run Commander) *Executor {
	if run == nil {
		run = Exec
	}
	return &Executor{FileNameFormat: fileNameFormat, run: run}
}

func (e *Executor) framePattern(dir string) string {
	return filepath.Join(dir, e.FileNameFormat+".png")
}

// ExtractFramesArgs returns the ffmpeg arguments that write every frame of
// video into outDir.
func (e *Executor) ExtractFramesArgs(video, outDir string) []string {
	return []string{"-i", video, e.framePattern(outDir)}
}

// ExtractFrames probes video and writes its frames into outDir, returning
// the probed metadata.
func (e *Executor) ExtractFrames(ctx context.Context, video, outDir string) (Metadata, error) {
	video, err := filepath.Abs(video)
	if err != nil {
		return Metadata{}, err
	}
	outDir, err = filepath.Abs(outDir)
	if err != nil {
		return Metadata{}, err
	}

	md, err := Probe(ctx, e.run, video)
	if err != nil {
		return Metadata{}, err
	}
	if _, err := e.run(ctx, FfmpegBinary, e.ExtractFramesArgs(video, outDir)...); err != nil {
		return Metadata{}, err
	}
	return md, nil
}

// CreateVideoArgs returns the ffmpeg arguments that encode the frames in
// framesDir into outDir/<md.Name>.
func (e *Executor) CreateVideoArgs(framesDir, outDir string, md Metadata) []string {
	args := []string{
		"-framerate", md.AvgFrameRate,
		"-i", e.framePattern(framesDir),
		"-c:v", md.CodecName,
		"-pix_fmt", md.PixFmt,
		"-s", fmt.Sprintf("%dx%d", md.Width, md.Height),
	}
	if md.DisplayAspectRatio != "" {
		args = append(args, "-aspect", md.DisplayAspectRatio)
	}
	return append(args,
		"-b:v", strconv.FormatInt(md.BitRate, 10),
		filepath.Join(outDir, md.Name),
		"-y",
	)
}

// CreateVideo encodes the frames in framesDir into a video described by md.
func (e *Executor) CreateVideo(ctx context.Context, framesDir, outDir string, md Metadata) error {
	if md.Name == "" {
		return fmt.Errorf("video metadata has no file name")
	}
	_, err := e.run(ctx, FfmpegBinary, e.CreateVideoArgs(framesDir, outDir, md)...)
	return err
}
