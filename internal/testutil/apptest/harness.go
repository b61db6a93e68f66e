// Package apptest runs pipelines through a fully wired app.App. Packages
// that app imports must use testutil instead, or their tests form an import
// cycle.
package apptest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/elementflow/internal/app"
	"github.com/specialistvlad/elementflow/internal/registry"
	"github.com/specialistvlad/elementflow/internal/testutil"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// RunPipeline writes the definition to a temporary file named file (its
// extension selects the format) and runs it through a fresh App built with
// the given modules.
func RunPipeline(t *testing.T, file, content string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunPipelineWithContext(context.Background(), t, file, content, modules...)
}

// RunPipelineWithContext is RunPipeline with a caller provided context.
func RunPipelineWithContext(ctx context.Context, t *testing.T, file, content string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := app.NewConfig(app.Config{
		DefinitionPath: path,
		LogLevel:       "debug",
		LogFormat:      "text",
		RedactionRetry: 1,
	})
	require.NoError(t, err)

	logBuffer := &testutil.SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, cfg, modules...)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}
	t.Cleanup(func() { _ = testApp.Close() })

	runErr := testApp.Run(ctx)

	if os.Getenv("ELEMENTFLOW_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
