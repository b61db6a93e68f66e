package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/specialistvlad/elementflow/internal/app"
	"github.com/specialistvlad/elementflow/internal/definition"
)

// Environment variables that override the built-in flag defaults. An
// explicit flag always wins.
const (
	EnvLogLevel       = "ELEMENTFLOW_LOG_LEVEL"
	EnvLogDir         = "ELEMENTFLOW_LOG_DIR"
	EnvRedactionRetry = "ELEMENTFLOW_REDACTION_RETRY"
)

const (
	defaultLogDir         = "logs"
	defaultRedactionRetry = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Defaults are read from the environment through getenv.
func Parse(args []string, output io.Writer, getenv func(string) string) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	if getenv == nil {
		getenv = os.Getenv
	}

	flagSet := flag.NewFlagSet("elementflow", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
ElementFlow - Runs a declared, linear pipeline of processing elements.

Usage:
  elementflow [options] [DEFINITION_PATH]

Arguments:
  DEFINITION_PATH
    Path to the pipeline definition (.yml, .yaml, .json or .hcl).

Environment:
  ELEMENTFLOW_LOG_LEVEL, ELEMENTFLOW_LOG_DIR, ELEMENTFLOW_REDACTION_RETRY
    Override the defaults of the matching options.

Options:
`)
		flagSet.PrintDefaults()
	}

	logLevelDefault := envOr(getenv, EnvLogLevel, "info")
	logDirDefault := envOr(getenv, EnvLogDir, defaultLogDir)
	retryDefault := defaultRedactionRetry
	if v := getenv(EnvRedactionRetry); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid %s: %q is not an integer", EnvRedactionRetry, v)}
		}
		retryDefault = n
	}

	definitionFlag := flagSet.String("definition", "", "Path to the pipeline definition file.")
	dFlag := flagSet.String("d", "", "Path to the pipeline definition file (shorthand).")
	collectionFlag := flagSet.String("collection", definition.DefaultCollection, "Top-level key holding the element list.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", logLevelDefault, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logDirFlag := flagSet.String("log-dir", logDirDefault, "Directory for rotating log files. Empty disables file logging.")
	retryFlag := flagSet.Int("redaction-retry", retryDefault, "Attempts per archive sent to the redaction service.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *definitionFlag != "" {
		path = *definitionFlag
	} else if *dFlag != "" {
		path = *dFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Definition path determined.", "path", path)

	if path == "" {
		slog.Debug("No definition path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		DefinitionPath:  path,
		Collection:      *collectionFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		LogDir:          *logDirFlag,
		RedactionRetry:  *retryFlag,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func envOr(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}
