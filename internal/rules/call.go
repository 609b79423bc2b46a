package rules

import (
	"context"

	"github.com/dhrn/devkit/internal/tree"
)

// CallSource invokes source and returns its result as a canonical stream.
//
// The source runs when the stream is first consumed. A NoOp result is
// invalid for a source and terminates the stream with
// InvalidSourceResultError{Value: nil}.
func CallSource(ctx context.Context, source Source, sctx *Context) Stream {
	return func(yield func(tree.Tree, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}
		emit(ctx, source(ctx, sctx), nil, invalidSource(sctx), yield)
	}
}

// CallRule invokes rule once per tree emitted by input and flattens the
// results, in order, into one canonical stream.
//
// A NoOp result forwards the input tree. Errors from input pass through
// unchanged and end the stream.
func CallRule(ctx context.Context, rule Rule, input Stream, sctx *Context) Stream {
	return func(yield func(tree.Tree, error) bool) {
		for in, err := range input {
			if err != nil {
				yield(nil, err)
				return
			}
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !emit(ctx, rule(ctx, in, sctx), in, invalidRule(sctx), yield) {
				return
			}
		}
	}
}

// emit normalizes r and forwards its trees to yield. It returns false when
// the caller must stop: a terminal error was delivered or the consumer
// unsubscribed.
//
// input is the tree a NoOp stands for; nil means NoOp is itself invalid.
func emit(ctx context.Context, r Result, input tree.Tree, invalid func(any) error, yield func(tree.Tree, error) bool) bool {
	switch r.kind {
	case kindNoOp:
		if input == nil {
			yield(nil, invalid(nil))
			return false
		}
		return yield(input, nil)

	case kindValue:
		return forward(r.value, invalid, yield)

	case kindDeferred:
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return false
		}
		v, err := r.deferred(ctx)
		if err != nil {
			yield(nil, err)
			return false
		}
		return forward(v, invalid, yield)

	case kindStream:
		if r.values == nil {
			yield(nil, invalid(nil))
			return false
		}
		for v, err := range r.values {
			if err != nil {
				yield(nil, err)
				return false
			}
			if !forward(v, invalid, yield) {
				return false
			}
		}
		return true
	}

	yield(nil, invalid(r.value))
	return false
}

// forward validates v and emits it. An invalid v is reported as the
// terminal error instead.
func forward(v any, invalid func(any) error, yield func(tree.Tree, error) bool) bool {
	if !tree.IsTree(v) {
		yield(nil, invalid(v))
		return false
	}
	return yield(v.(tree.Tree), nil)
}

func invalidSource(sctx *Context) func(any) error {
	return func(v any) error {
		sctx.Log().Debug("invalid source result",
			"invocation_id", invocationID(sctx),
			"type", typeName(v),
			"value", dump(v),
		)
		return &InvalidSourceResultError{Value: v}
	}
}

func invalidRule(sctx *Context) func(any) error {
	return func(v any) error {
		sctx.Log().Debug("invalid rule result",
			"invocation_id", invocationID(sctx),
			"type", typeName(v),
			"value", dump(v),
		)
		return &InvalidRuleResultError{Value: v}
	}
}

func invocationID(sctx *Context) string {
	if sctx == nil {
		return ""
	}
	return sctx.InvocationID
}
