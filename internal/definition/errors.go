package definition

import "fmt"

// DefinitionError reports a malformed or invalid pipeline definition.
// Index is -1 when the problem is not tied to a single record.
type DefinitionError struct {
	Source string
	Index  int
	Name   string
	Reason string
	Err    error
}

func (e *DefinitionError) Error() string {
	msg := "invalid pipeline definition"
	if e.Source != "" {
		msg += " " + e.Source
	}
	switch {
	case e.Index >= 0 && e.Name != "":
		msg += fmt.Sprintf(": element %d (%q)", e.Index, e.Name)
	case e.Index >= 0:
		msg += fmt.Sprintf(": element %d", e.Index)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

func documentError(reason string, err error) *DefinitionError {
	return &DefinitionError{Index: -1, Reason: reason, Err: err}
}

func elementError(index int, name, reason string) *DefinitionError {
	return &DefinitionError{Index: index, Name: name, Reason: reason}
}
