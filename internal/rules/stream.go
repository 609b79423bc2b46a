package rules

import (
	"errors"
	"iter"

	"github.com/dhrn/devkit/internal/tree"
)

// Stream is the canonical stream of tree snapshots. If an error is emitted
// it is the last element, paired with a nil tree.
type Stream = iter.Seq2[tree.Tree, error]

// ErrEmptyStream is returned by Last when the stream completed without
// emitting a tree.
var ErrEmptyStream = errors.New("stream completed without a tree")

// Trees returns a stream emitting ts in order, then completing.
func Trees(ts ...tree.Tree) Stream {
	return func(yield func(tree.Tree, error) bool) {
		for _, t := range ts {
			if !yield(t, nil) {
				return
			}
		}
	}
}

// Fail returns a stream that terminates with err immediately.
func Fail(err error) Stream {
	return func(yield func(tree.Tree, error) bool) {
		yield(nil, err)
	}
}

// Last drains s and returns its final tree, like awaiting the stream.
func Last(s Stream) (tree.Tree, error) {
	var last tree.Tree
	seen := false
	for t, err := range s {
		if err != nil {
			return nil, err
		}
		last, seen = t, true
	}
	if !seen {
		return nil, ErrEmptyStream
	}
	return last, nil
}

// Collect drains s and returns every tree delivered before the terminal
// signal, along with the terminal error if any.
func Collect(s Stream) ([]tree.Tree, error) {
	var out []tree.Tree
	for t, err := range s {
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, nil
}
