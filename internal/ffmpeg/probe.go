package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
)

// Probe runs a single ffprobe JSON call against path and returns its
// metadata.
func Probe(ctx context.Context, run Commander, path string) (Metadata, error) {
	out, err := run(ctx, FfprobeBinary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams", "-show_format",
		path,
	)
	if err != nil {
		return Metadata{}, fmt.Errorf("ffprobe %q: %w", path, err)
	}
	return ParseProbe(filepath.Base(path), out)
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	BitRate string `json:"bit_rate"`
}

type ffprobeStream struct {
	CodecName          string            `json:"codec_name"`
	CodecType          string            `json:"codec_type"`
	PixFmt             string            `json:"pix_fmt"`
	Width              int               `json:"width"`
	Height             int               `json:"height"`
	AvgFrameRate       string            `json:"avg_frame_rate"`
	Duration           string            `json:"duration"`
	DisplayAspectRatio string            `json:"display_aspect_ratio"`
	SideDataList       []ffprobeSideData `json:"side_data_list"`
}

type ffprobeSideData struct {
	SideDataType string  `json:"side_data_type"`
	Rotation     float64 `json:"rotation"`
}

// ParseProbe converts raw ffprobe JSON output into Metadata for the video
// called name. Exported for testing without a real ffprobe binary.
func ParseProbe(name string, data []byte) (Metadata, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return Metadata{}, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	var video, audio *ffprobeStream
	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			if video == nil {
				video = s
			}
		case "audio":
			if audio == nil {
				audio = s
			}
		}
	}
	if video == nil {
		return Metadata{}, fmt.Errorf("ffprobe reported no video stream for %s", name)
	}

	bitRate, err := strconv.ParseInt(raw.Format.BitRate, 10, 64)
	if err != nil {
		return Metadata{}, fmt.Errorf("invalid format bit rate %q for %s: %w", raw.Format.BitRate, name, err)
	}

	md := Metadata{
		Name:         name,
		BitRate:      bitRate,
		AvgFrameRate: video.AvgFrameRate,
		CodecName:    video.CodecName,
		PixFmt:       video.PixFmt,
		Duration:     -1,
	}
	md.Width, md.Height = dimensions(video)

	if video.Duration != "" {
		if d, err := strconv.ParseFloat(video.Duration, 64); err == nil {
			md.Duration = d
		}
	}
	// "0:1" is how ffprobe reports an unknown aspect ratio.
	if video.DisplayAspectRatio != "" && video.DisplayAspectRatio != "0:1" {
		md.DisplayAspectRatio = video.DisplayAspectRatio
	}
	if audio != nil {
		md.AudioCodec = audio.CodecName
	}
	return md, nil
}

// dimensions returns the displayed width and height, swapped when a display
// matrix rotates the video by a quarter turn.
func dimensions(s *ffprobeStream) (int, int) {
	for _, sd := range s.SideDataList {
		if sd.SideDataType != "Display Matrix" {
			continue
		}
		if sd.Rotation == 90 || sd.Rotation == -90 {
			return s.Height, s.Width
		}
	}
	return s.Width, s.Height
}
