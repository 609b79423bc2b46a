package engine

// DefaultMaxDepth bounds how deeply schematics may call each other through
// rules.ExternalSchematic.
//
// Nested calls are the only way a schematic run can recurse, so the limit
// guarantees termination of self-referential or mutually recursive
// collections. Depth is counted per call chain, not per engine: sibling
// calls at the same level do not add up.
const DefaultMaxDepth = 64

// WithMaxDepth overrides DefaultMaxDepth. Zero disables the limit.
func WithMaxDepth(n int) EngineOption {
	return func(e *Engine) {
		e.maxDepth = n
	}
}
