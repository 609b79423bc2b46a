package rules

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhrn/devkit/internal/tree"
)

// ErrNoEngine is returned by ExternalSchematic when the context carries no
// engine to resolve schematics with.
var ErrNoEngine = errors.New("context has no engine")

// Noop returns a rule that forwards its input unchanged.
func Noop() Rule {
	return func(context.Context, tree.Tree, *Context) Result {
		return NoOp()
	}
}

// Empty returns a source producing a fresh empty tree.
func Empty() Source {
	return func(context.Context, *Context) Result {
		return Produce(tree.Empty())
	}
}

// Chain returns a rule that applies rs in order, each to the output of the
// previous one.
func Chain(rs ...Rule) Rule {
	return func(ctx context.Context, t tree.Tree, sctx *Context) Result {
		s := Trees(t)
		for _, r := range rs {
			s = CallRule(ctx, r, s, sctx)
		}
		return Pass(s)
	}
}

// Apply returns a source that runs source and then applies rs to its
// output.
func Apply(source Source, rs ...Rule) Source {
	return func(ctx context.Context, sctx *Context) Result {
		return Pass(CallRule(ctx, Chain(rs...), CallSource(ctx, source, sctx), sctx))
	}
}

// ExternalSchematic returns a rule that runs another schematic, resolved
// through the context's engine, on the input tree. The call fails with
// *DepthExceededError once nesting reaches sctx.MaxDepth.
func ExternalSchematic(collection, name string, options any) Rule {
	return func(ctx context.Context, t tree.Tree, sctx *Context) Result {
		if sctx == nil || sctx.Engine == nil {
			return Failed(ErrNoEngine)
		}
		if sctx.MaxDepth > 0 && sctx.Depth >= sctx.MaxDepth {
			return Failed(&DepthExceededError{
				Collection: collection,
				Name:       name,
				Depth:      sctx.Depth + 1,
				Limit:      sctx.MaxDepth,
			})
		}
		s, err := sctx.Engine.Schematic(collection, name)
		if err != nil {
			return Failed(fmt.Errorf("external schematic %s:%s: %w", collection, name, err))
		}
		return Pass(s.Call(ctx, options, Trees(t), sctx))
	}
}
