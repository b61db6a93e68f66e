package cli

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/elementflow/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestParse_Config(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		env  map[string]string
		want app.Config
	}{
		{
			name: "positional path with defaults",
			args: []string{"pipeline.yml"},
			want: app.Config{
				DefinitionPath: "pipeline.yml",
				Collection:     "elements",
				LogFormat:      "text",
				LogLevel:       "info",
				LogDir:         "logs",
				RedactionRetry: 2,
			},
		},
		{
			name: "long flag wins over shorthand and positional",
			args: []string{"-definition", "a.hcl", "-d", "b.hcl", "c.hcl"},
			want: app.Config{
				DefinitionPath: "a.hcl",
				Collection:     "elements",
				LogFormat:      "text",
				LogLevel:       "info",
				LogDir:         "logs",
				RedactionRetry: 2,
			},
		},
		{
			name: "environment overrides defaults",
			args: []string{"-d", "pipeline.yml"},
			env: map[string]string{
				EnvLogLevel:       "debug",
				EnvLogDir:         "/var/log/elementflow",
				EnvRedactionRetry: "5",
			},
			want: app.Config{
				DefinitionPath: "pipeline.yml",
				Collection:     "elements",
				LogFormat:      "text",
				LogLevel:       "debug",
				LogDir:         "/var/log/elementflow",
				RedactionRetry: 5,
			},
		},
		{
			name: "flags override environment",
			args: []string{"-log-level", "WARN", "-log-dir", "", "-redaction-retry", "3", "-log-format", "json", "-collection", "stages", "-healthcheck-port", "8081", "pipeline.yml"},
			env:  map[string]string{EnvLogLevel: "debug", EnvRedactionRetry: "5"},
			want: app.Config{
				DefinitionPath:  "pipeline.yml",
				Collection:      "stages",
				LogFormat:       "json",
				LogLevel:        "warn",
				RedactionRetry:  3,
				HealthcheckPort: 8081,
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg, exit, err := Parse(tc.args, &bytes.Buffer{}, env(tc.env))
			require.NoError(t, err)
			assert.False(t, exit)
			assert.Equal(t, tc.want, *cfg)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		args    []string
		env     map[string]string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"-bogus"}, wantMsg: "flag provided but not defined"},
		{name: "bad log format", args: []string{"-log-format", "xml", "p.yml"}, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "trace", "p.yml"}, wantMsg: "invalid log-level"},
		{name: "bad retry env", args: []string{"p.yml"}, env: map[string]string{EnvRedactionRetry: "two"}, wantMsg: "invalid ELEMENTFLOW_REDACTION_RETRY"},
		{name: "zero retries", args: []string{"-redaction-retry", "0", "p.yml"}, wantMsg: "RedactionRetry must be at least 1"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg, exit, err := Parse(tc.args, &bytes.Buffer{}, env(tc.env))
			assert.Nil(t, cfg)
			assert.False(t, exit)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}

func TestParse_HelpAndMissingPath(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{{"-h"}, {}} {
		var out bytes.Buffer
		cfg, exit, err := Parse(args, &out, env(nil))
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
		assert.Contains(t, out.String(), "DEFINITION_PATH")
	}
}
