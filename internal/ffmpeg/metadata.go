package ffmpeg

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Metadata describes a probed video; it is everything needed to encode the
// extracted frames back into an equivalent video.
type Metadata struct {
	Name         string `yaml:"name" json:"name"`
	Width        int    `yaml:"width" json:"width"`
	Height       int    `yaml:"height" json:"height"`
	BitRate      int64  `yaml:"bit_rate" json:"bit_rate"`
	AvgFrameRate string `yaml:"avg_frame_rate" json:"avg_frame_rate"`
	CodecName    string `yaml:"codec_name" json:"codec_name"`
	PixFmt       string `yaml:"pix_fmt" json:"pix_fmt"`
	// Duration is in seconds, or -1 when the stream does not report one.
	Duration float64 `yaml:"duration" json:"duration"`
	// DisplayAspectRatio is empty when the codec carries none.
	DisplayAspectRatio string `yaml:"display_aspect_ratio,omitempty" json:"display_aspect_ratio,omitempty"`
	// AudioCodec is empty when the video has no audio stream.
	AudioCodec string `yaml:"audio_codec,omitempty" json:"audio_codec,omitempty"`
}

// MetadataFrom converts a value exchanged between elements into Metadata. It
// accepts Metadata, *Metadata or a mapping using the yaml field names, which
// is what a definition that declares the metadata literally produces.
func MetadataFrom(v any) (Metadata, error) {
	switch m := v.(type) {
	case Metadata:
		return m, nil
	case *Metadata:
		if m == nil {
			return Metadata{}, fmt.Errorf("video metadata is nil")
		}
		return *m, nil
	case map[string]any:
		raw, err := yaml.Marshal(m)
		if err != nil {
			return Metadata{}, fmt.Errorf("encode video metadata: %w", err)
		}
		var md Metadata
		if err := yaml.Unmarshal(raw, &md); err != nil {
			return Metadata{}, fmt.Errorf("decode video metadata: %w", err)
		}
		return md, nil
	case nil:
		return Metadata{}, fmt.Errorf("video metadata is missing")
	default:
		return Metadata{}, fmt.Errorf("video metadata has unsupported type %T", v)
	}
}
