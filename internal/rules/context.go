package rules

import (
	"context"
	"log/slog"

	"github.com/dhrn/devkit/internal/tree"
)

// Invocable is anything that can be called like a schematic.
type Invocable interface {
	Call(ctx context.Context, options any, input Stream, parent *Context) Stream
}

// Engine is the engine handle carried by a Context. Rules use it to reach
// other schematics; the core itself never calls it.
type Engine interface {
	Schematic(collection, name string) (Invocable, error)
}

// Context is the per-invocation execution context handed to every rule and
// source. It is read-only for the duration of one call.
type Context struct {
	// Engine is the engine that created this context. May be nil in tests.
	Engine Engine

	// Debug enables debug behavior in rules.
	Debug bool

	// Strategy is the merge strategy rules should consult on conflicts.
	Strategy tree.MergeStrategy

	// Depth counts the schematic calls enclosing this one.
	Depth int

	// MaxDepth bounds Depth for nested schematic calls. Zero means no
	// limit.
	MaxDepth int

	// InvocationID correlates logs for one schematic call.
	InvocationID string

	// Logger is the invocation-scoped logger. Use Log() to read it.
	Logger *slog.Logger
}

// Log returns the context logger, falling back to slog.Default().
func (c *Context) Log() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
