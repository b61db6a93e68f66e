package ffmpeg

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/elementflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

// fakeCommander records invocations and answers ffprobe with probeOut.
type fakeCommander struct {
	calls     []call
	probeOut  string
	ffmpegErr error
}

func (f *fakeCommander) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if name == FfprobeBinary {
		return []byte(f.probeOut), nil
	}
	return nil, f.ffmpegErr
}

func TestExecutor_ExtractFrames(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)
	dir := t.TempDir()

	fake := &fakeCommander{probeOut: sampleMJPEG}
	e := NewExecutor("%08d", fake.run)

	md, err := e.ExtractFrames(ctx, filepath.Join(dir, "clip.mp4"), filepath.Join(dir, "frames"))
	require.NoError(t, err)
	assert.Equal(t, "mjpeg", md.CodecName)

	require.Len(t, fake.calls, 2)
	assert.Equal(t, FfprobeBinary, fake.calls[0].name)
	assert.Equal(t, filepath.Join(dir, "clip.mp4"), fake.calls[0].args[len(fake.calls[0].args)-1])
	assert.Equal(t, call{
		name: FfmpegBinary,
		args: []string{"-i", filepath.Join(dir, "clip.mp4"), filepath.Join(dir, "frames", "%08d.png")},
	}, fake.calls[1])
}

func TestExecutor_ExtractFramesFailure(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	toolErr := &ExecError{Tool: FfmpegBinary, Args: []string{"-i"}, Err: errors.New("exit status 1")}
	fake := &fakeCommander{probeOut: sampleMJPEG, ffmpegErr: toolErr}
	e := NewExecutor("%08d", fake.run)

	_, err := e.ExtractFrames(ctx, "clip.mp4", t.TempDir())
	require.ErrorIs(t, err, toolErr)
	assert.Contains(t, err.Error(), "the ffmpeg failed to execute command -i")
	assert.Equal(t, -1, toolErr.ExitCode())
}

func TestExecutor_CreateVideoArgs(t *testing.T) {
	t.Parallel()

	e := NewExecutor("%08d", nil)
	md := Metadata{
		Name:               "clip.mp4",
		Width:              1080,
		Height:             1920,
		BitRate:            8123456,
		AvgFrameRate:       "30/1",
		CodecName:          "h264",
		PixFmt:             "yuv420p",
		DisplayAspectRatio: "9:16",
	}

	assert.Equal(t, []string{
		"-framerate", "30/1",
		"-i", filepath.Join("in", "%08d.png"),
		"-c:v", "h264",
		"-pix_fmt", "yuv420p",
		"-s", "1080x1920",
		"-aspect", "9:16",
		"-b:v", "8123456",
		filepath.Join("out", "clip.mp4"),
		"-y",
	}, e.CreateVideoArgs("in", "out", md))

	md.DisplayAspectRatio = ""
	assert.NotContains(t, e.CreateVideoArgs("in", "out", md), "-aspect")
}

func TestExecutor_CreateVideo(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	fake := &fakeCommander{}
	e := NewExecutor("%08d", fake.run)

	require.Error(t, e.CreateVideo(ctx, "in", "out", Metadata{}), "metadata without a name")
	assert.Empty(t, fake.calls)

	require.NoError(t, e.CreateVideo(ctx, "in", "out", Metadata{Name: "clip.mp4"}))
	require.Len(t, fake.calls, 1)
	assert.Equal(t, FfmpegBinary, fake.calls[0].name)
}

func TestExec(t *testing.T) {
	ctx, logs := testutil.Context(t)

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	out, err := Exec(ctx, "sh", "-c", "echo frame; echo progress >&2")
	require.NoError(t, err)
	assert.Equal(t, "frame\n", string(out))
	assert.Contains(t, logs.String(), "progress")

	_, err = Exec(ctx, "sh", "-c", "echo broken >&2; exit 3")
	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 3, execErr.ExitCode())
	assert.Contains(t, execErr.Output, "broken")
}

func TestCheckDeps(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	missing := map[string]bool{}
	lookPath = func(file string) (string, error) {
		if missing[file] {
			return "", exec.ErrNotFound
		}
		return "/usr/bin/" + file, nil
	}

	assert.NoError(t, CheckDeps())

	missing[FfprobeBinary] = true
	assert.ErrorIs(t, CheckDeps(), ErrFfprobeNotFound)

	missing[FfmpegBinary] = true
	assert.ErrorIs(t, CheckDeps(), ErrFfmpegNotFound)
}
