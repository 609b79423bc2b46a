// Package options transforms raw schematic options into validated ones.
//
// Schemas are CUE source. Raw options are encoded into CUE, unified with
// the schema, checked for concreteness and decoded back into a map, so
// defaults declared in the schema are filled in:
//
//	name: string
//	path: *"/" | string
//	skipTests: *false | bool
//
// Options that violate the schema fail with *ValidationError. An empty
// schema accepts any object unchanged.
package options
