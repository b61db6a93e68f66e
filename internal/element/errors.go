package element

import "fmt"

// Severity classifies an operational element failure.
type Severity string

const (
	// Major aborts the whole pipeline.
	Major Severity = "MAJOR"
	// Minor is absorbed: the element contributes no output and the pipeline
	// continues with the next element.
	Minor Severity = "MINOR"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	return s == Major || s == Minor
}

// Error is the failure an element returns for recoverable, operational
// problems: a tool exiting non-zero, missing input files, an unreachable
// service. PublicMessage is meant for end users, LogMessage for operators.
type Error struct {
	PublicMessage string
	LogMessage    string
	Severity      Severity
	Err           error
}

// NewError builds an Error. An empty logMessage falls back to the public one.
func NewError(severity Severity, publicMessage, logMessage string, err error) *Error {
	if logMessage == "" {
		logMessage = publicMessage
	}
	return &Error{
		PublicMessage: publicMessage,
		LogMessage:    logMessage,
		Severity:      severity,
		Err:           err,
	}
}

// Majorf builds a Major error whose public and log messages are identical.
func Majorf(format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return NewError(Major, msg, msg, nil)
}

// Minorf builds a Minor error whose public and log messages are identical.
func Minorf(format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return NewError(Minor, msg, msg, nil)
}

// Wrap attaches a cause to the error and returns it.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s element error: %s", e.Severity, e.PublicMessage)
}

func (e *Error) Unwrap() error {
	return e.Err
}
