package rules

import (
	"context"
	"iter"

	"github.com/dhrn/devkit/internal/tree"
)

// Source produces a tree without an input tree.
type Source func(ctx context.Context, sctx *Context) Result

// Rule transforms the input tree. Returning NoOp() forwards t unchanged,
// which is what rules that mutate t in place usually do.
type Rule func(ctx context.Context, t tree.Tree, sctx *Context) Result

type resultKind int

const (
	kindNoOp resultKind = iota
	kindValue
	kindDeferred
	kindStream
)

// Result is what a Rule or Source returns. The zero value is NoOp.
type Result struct {
	kind     resultKind
	value    any
	deferred func(context.Context) (any, error)
	values   iter.Seq2[any, error]
}

// NoOp reports that nothing new was produced.
func NoOp() Result {
	return Result{}
}

// Produce returns v as the result. v is validated as a tree when emitted.
func Produce(v any) Result {
	return Result{kind: kindValue, value: v}
}

// Await returns a deferred result. fn runs when the stream is consumed and
// its value is then treated as if returned by Produce. An error from fn
// terminates the stream as is.
func Await(fn func(ctx context.Context) (any, error)) Result {
	return Result{kind: kindDeferred, deferred: fn}
}

// Emit returns a stream of values. Each is validated before it is
// forwarded; an error element terminates the stream as is.
func Emit(values iter.Seq2[any, error]) Result {
	return Result{kind: kindStream, values: values}
}

// Pass returns s as the result. Its trees are validated again on the way
// through, so nil trees are still rejected.
func Pass(s Stream) Result {
	return Emit(func(yield func(any, error) bool) {
		for t, err := range s {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(t, nil) {
				return
			}
		}
	})
}

// Failed returns a result that terminates the stream with err.
func Failed(err error) Result {
	return Emit(func(yield func(any, error) bool) {
		yield(nil, err)
	})
}

// Values lifts plain values into an Emit-able sequence.
func Values(vs ...any) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for _, v := range vs {
			if !yield(v, nil) {
				return
			}
		}
	}
}

// IsNoOp reports whether r is the NoOp result.
func (r Result) IsNoOp() bool {
	return r.kind == kindNoOp
}
