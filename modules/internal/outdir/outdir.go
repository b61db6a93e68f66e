// Package outdir manages the directories elements write their results to.
// The directory path is the value of a declared output.
package outdir

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
	"github.com/specialistvlad/elementflow/internal/element"
	"github.com/specialistvlad/elementflow/internal/fsutil"
)

// Prepare creates the directory declared as outputs[key] and returns its
// path.
func Prepare(outputs element.Values, key string) (string, error) {
	dir, err := outputs.String(key)
	if err != nil {
		msg := fmt.Sprintf("The output directory '%s' is not declared", key)
		return "", element.NewError(element.Major, msg, "", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		msg := fmt.Sprintf("Failed to create the output directory %s", dir)
		return "", element.NewError(element.Major, msg, fmt.Sprintf("%s: %v", msg, err), err)
	}
	return dir, nil
}

// Cleanup removes the directory declared as outputs[key], if any.
func Cleanup(ctx context.Context, outputs element.Values, key string) error {
	dir, _ := outputs[key].(string)
	removed, err := fsutil.RemoveDir(dir)
	if err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	if removed {
		ctxlog.FromContext(ctx).Debug("Cleaned up output directory.", "directory", dir)
	}
	return nil
}

// Input returns the string input key as a Major error when it is missing.
func Input(inputs element.Values, key string) (string, error) {
	v, err := inputs.String(key)
	if err != nil {
		msg := fmt.Sprintf("The input '%s' is missing or invalid", key)
		return "", element.NewError(element.Major, msg, fmt.Sprintf("%s: %v", msg, err), err)
	}
	return v, nil
}
