// Package engine binds schematics to the host that runs them.
//
// A Schematic pairs a validated name with a rule factory, the collection it
// belongs to and a Host. Calling it composes three steps:
//
//  1. the host creates a fresh context from the parent context
//  2. the host validates and defaults the raw options
//  3. the factory builds a rule from the options and the rule runs on the
//     input stream through rules.CallRule
//
// Option errors surface as the terminal error of the returned stream. A
// schematic keeps no state between calls.
//
// Engine is the concrete Host. It owns collections and rule factories,
// resolves names and aliases, caches built schematics per collection and
// implements rules.Engine so rules can call other schematics.
//
// THREAD SAFETY:
//
// Engine, Collection and Schematic are safe for concurrent use. Contexts
// are created per call and never shared.
//
// NESTING:
//
// Contexts count their depth. rules.ExternalSchematic refuses to nest
// beyond the engine's max depth (DefaultMaxDepth unless WithMaxDepth), so a
// collection whose schematics call each other in a loop fails instead of
// recursing forever.
package engine
