package definition

import "github.com/specialistvlad/elementflow/internal/element"

// Record keys recognised in a definition.
const (
	KeyName     = "name"
	KeyInputs   = "inputs"
	KeyOutputs  = "outputs"
	KeySettings = "settings"
)

// DefaultCollection is the name of the top-level collection holding the
// element records.
const DefaultCollection = "elements"

// ElementSpec is one declared pipeline stage.
type ElementSpec struct {
	// Index is the zero-based position of the record in the document.
	Index int
	// Name selects the implementation type.
	Name string
	// Inputs is never empty after validation.
	Inputs element.Values
	// Outputs is nil when the record declares none, meaning the element is
	// expected to produce nothing.
	Outputs element.Values
	// Settings is nil when the record declares none.
	Settings element.Values
	// Instance is bound once during initialization.
	Instance element.Element
}

// Definition is the ordered list of element specs. Order is execution order.
type Definition []*ElementSpec
