// Package registry provides the central "glue" for the element system.
//
// Element implementations are grouped in units, the Go counterpart of a
// source file: every element package registers one unit under a path such as
// "modules/tar_archiver" together with a load function returning the element
// types the unit exports. Registration happens once at startup through the
// Module interface; nothing is discovered or loaded reflectively.
//
// Discover builds a Catalog from the registered units, keyed by the unit's
// base name normalized (lower-cased, underscores removed). Resolve maps a
// declared element name to its Type: the normalized name selects the unit,
// the unit is loaded, and the exact, case-sensitive name selects the type.
package registry
