package registry

import "fmt"

// DiscoveryError reports that the catalog could not be built: no eligible
// unit is registered, or two units normalize to the same key.
type DiscoveryError struct {
	Reason string
}

func (e *DiscoveryError) Error() string {
	return "element discovery failed: " + e.Reason
}

// NameNotFoundError reports a declared name with no matching catalog key.
type NameNotFoundError struct {
	Name string
}

func (e *NameNotFoundError) Error() string {
	return fmt.Sprintf("element name '%s' is not found in the element units", e.Name)
}

// LoadError reports a unit that could not be loaded.
type LoadError struct {
	Name string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load unit '%s' for element '%s': %v", e.Path, e.Name, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// TypeNotFoundError reports a unit that loaded but exports no type whose name
// exactly matches the declared one.
type TypeNotFoundError struct {
	Name string
	Path string
}

func (e *TypeNotFoundError) Error() string {
	return fmt.Sprintf("element type '%s' is not found in unit '%s'", e.Name, e.Path)
}
