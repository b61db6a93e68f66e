package ffmpeg

import (
	"errors"
	"os/exec"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
)

var lookPath = exec.LookPath

// CheckDeps verifies that ffmpeg and ffprobe are on PATH.
func CheckDeps() error {
	if _, err := lookPath(FfmpegBinary); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := lookPath(FfprobeBinary); err != nil {
		return ErrFfprobeNotFound
	}
	return nil
}
