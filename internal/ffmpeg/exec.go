package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
)

const (
	FfmpegBinary  = "ffmpeg"
	FfprobeBinary = "ffprobe"
)

// Commander runs name with args and returns its standard output.
type Commander func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecError reports a tool that could not be started or exited non-zero.
type ExecError struct {
	Tool   string
	Args   []string
	Output string
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("the %s failed to execute command %s: %v", e.Tool, strings.Join(e.Args, " "), e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// ExitCode returns the tool's exit code, or -1 if it did not exit normally.
func (e *ExecError) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Exec is the default Commander. Standard output is returned; standard error
// is captured and logged line by line at debug level.
func Exec(ctx context.Context, name string, args ...string) ([]byte, error) {
	logger := ctxlog.FromContext(ctx).With("tool", name)
	logger.Debug("Started external tool.", "args", args)

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	scanner := bufio.NewScanner(bytes.NewReader(stderr.Bytes()))
	for scanner.Scan() {
		logger.Debug(scanner.Text())
	}
	logger.Debug("Finished external tool.")

	if err != nil {
		return nil, &ExecError{Tool: name, Args: args, Output: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}
