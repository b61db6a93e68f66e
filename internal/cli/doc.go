// Package cli turns command-line arguments and ELEMENTFLOW_* environment
// variables into a validated app.Config. Usage errors carry the exit code
// the process should terminate with.
package cli
