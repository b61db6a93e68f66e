package data_reader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/elementflow/internal/element"
	"github.com/specialistvlad/elementflow/internal/ffmpeg"
	"github.com/specialistvlad/elementflow/internal/fsutil"
	"github.com/specialistvlad/elementflow/internal/registry"
	"github.com/specialistvlad/elementflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const probeJSON = `{
  "streams": [
    {"codec_type": "video", "codec_name": "h264", "pix_fmt": "yuv420p", "width": 640, "height": 360, "avg_frame_rate": "25/1"}
  ],
  "format": {"bit_rate": "900000"}
}`

// fakeTools answers ffprobe with probeJSON and makes ffmpeg write one frame
// next to the output pattern.
func fakeTools(ffmpegErr error) ffmpeg.Commander {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		if name == ffmpeg.FfprobeBinary {
			return []byte(probeJSON), nil
		}
		if ffmpegErr != nil {
			return nil, ffmpegErr
		}
		out := filepath.Dir(args[len(args)-1])
		return nil, os.WriteFile(filepath.Join(out, "00000001.png"), []byte("png"), 0o644)
	}
}

func resolve(t *testing.T, m *Module) registry.Type {
	t.Helper()
	ctx, _ := testutil.Context(t)
	reg := registry.NewWithModules(m)
	catalog, err := reg.Discover(ctx)
	require.NoError(t, err)
	typ, err := reg.Resolve(ctx, catalog, "DataReader")
	require.NoError(t, err)
	return typ
}

func noDeps() error { return nil }

func TestDataReader_Run(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)
	data := testutil.WriteFiles(t, t.TempDir(), map[string]string{"b.mp4": "", "a.mp4": ""})
	frames := filepath.Join(t.TempDir(), "frames")

	typ := resolve(t, &Module{Commander: fakeTools(nil), CheckDeps: noDeps})
	elem, err := typ.New(element.Values{"frame_file_name_format": "%08d"})
	require.NoError(t, err)

	outputs := element.Values{"directory_extracted_frames": frames, "video_metadata": "video_metadata"}
	out, err := elem.Run(ctx, element.Values{"directory_data_video": data}, outputs)
	require.NoError(t, err)

	assert.Equal(t, frames, out["directory_extracted_frames"])
	md, ok := out["video_metadata"].(ffmpeg.Metadata)
	require.True(t, ok)
	assert.Equal(t, "a.mp4", md.Name, "the first video in name order is used")
	assert.Equal(t, 640, md.Width)
	assert.True(t, fsutil.HasFiles(frames, ".png"))

	require.NoError(t, elem.Cleanup(ctx, outputs))
	assert.False(t, fsutil.IsDir(frames))
}

func TestDataReader_Failures(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	t.Run("no video", func(t *testing.T) {
		typ := resolve(t, &Module{Commander: fakeTools(nil), CheckDeps: noDeps})
		elem, err := typ.New(element.Values{"frame_file_name_format": "%08d"})
		require.NoError(t, err)

		_, err = elem.Run(ctx, element.Values{"directory_data_video": t.TempDir()}, element.Values{"directory_extracted_frames": t.TempDir()})
		var elemErr *element.Error
		require.ErrorAs(t, err, &elemErr)
		assert.Equal(t, element.Major, elemErr.Severity)
	})

	t.Run("ffmpeg fails", func(t *testing.T) {
		typ := resolve(t, &Module{Commander: fakeTools(errors.New("exit status 1")), CheckDeps: noDeps})
		elem, err := typ.New(element.Values{"frame_file_name_format": "%08d"})
		require.NoError(t, err)
		data := testutil.WriteFiles(t, t.TempDir(), map[string]string{"a.mp4": ""})

		_, err = elem.Run(ctx, element.Values{"directory_data_video": data}, element.Values{"directory_extracted_frames": t.TempDir()})
		var elemErr *element.Error
		require.ErrorAs(t, err, &elemErr)
		assert.Equal(t, element.Major, elemErr.Severity)
		assert.Contains(t, elemErr.PublicMessage, "Failed to extract frames from the video: exit status 1")
	})
}

func TestDataReader_RequiresFrameFormat(t *testing.T) {
	t.Parallel()

	typ := resolve(t, &Module{CheckDeps: noDeps})
	_, err := typ.New(nil)
	assert.ErrorIs(t, err, element.ErrMissingValue)
}

func TestDataReader_MissingTools(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	reg := registry.NewWithModules(&Module{CheckDeps: func() error { return ffmpeg.ErrFfmpegNotFound }})
	catalog, err := reg.Discover(ctx)
	require.NoError(t, err)

	_, err = reg.Resolve(ctx, catalog, "DataReader")
	var loadErr *registry.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, ffmpeg.ErrFfmpegNotFound)
}
