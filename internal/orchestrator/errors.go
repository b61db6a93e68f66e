package orchestrator

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/elementflow/internal/element"
)

// ErrInvalidState is returned when a lifecycle method is called out of order.
var ErrInvalidState = errors.New("invalid orchestrator state")

// elementMessage prefixes every user-facing element failure.
const elementMessage = "the pipeline element raised an exception"

// ContractViolationError reports an element whose result does not match its
// declared outputs: outputs were declared but nothing was returned, or
// nothing was declared but something was returned. It points at a defect in
// the definition or in the element, never at an operational failure.
type ContractViolationError struct {
	Index    int
	Element  string
	Declared bool
	Returned int
}

func (e *ContractViolationError) Error() string {
	if e.Declared {
		return fmt.Sprintf("element %d (%s) declares outputs but returned none; either the definition or the implementation is incorrect", e.Index, e.Element)
	}
	return fmt.Sprintf("element %d (%s) declares no outputs but returned %d; either the definition or the implementation is incorrect", e.Index, e.Element, e.Returned)
}

// AbortError reports a pipeline stopped by a Major element failure.
type AbortError struct {
	Index   int
	Element string
	Cause   *element.Error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%s: %s", elementMessage, e.Cause.PublicMessage)
}

func (e *AbortError) Unwrap() error {
	return e.Cause
}

// PublicMessage is the message to show to end users.
func (e *AbortError) PublicMessage() string {
	return e.Error()
}

// SeverityError reports an element error carrying a severity outside the
// known set, which means the element implementation itself is broken.
type SeverityError struct {
	Index   int
	Element string
	Cause   *element.Error
}

func (e *SeverityError) Error() string {
	return fmt.Sprintf("%s with unknown severity %q: %s. Please check the element's implementation",
		elementMessage, e.Cause.Severity, e.Cause.PublicMessage)
}

func (e *SeverityError) Unwrap() error {
	return e.Cause
}

// ElementFailureError wraps an error an element returned without
// classifying it as an operational failure.
type ElementFailureError struct {
	Index   int
	Element string
	Err     error
}

func (e *ElementFailureError) Error() string {
	return fmt.Sprintf("element %d (%s) failed unexpectedly: %v", e.Index, e.Element, e.Err)
}

func (e *ElementFailureError) Unwrap() error {
	return e.Err
}
