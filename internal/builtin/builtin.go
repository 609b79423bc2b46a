// Package builtin provides the rule factories every engine ships with.
package builtin

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dhrn/devkit/internal/engine"
	"github.com/dhrn/devkit/internal/options"
	"github.com/dhrn/devkit/internal/rules"
	"github.com/dhrn/devkit/internal/tree"
)

// Factory keys.
const (
	FactoryFiles  = "files"
	FactoryDelete = "delete"
	FactoryNoop   = "noop"
	FactoryChain  = "chain"
)

// Register adds the built-in factories to e.
func Register(e *engine.Engine) {
	e.RegisterFactory(FactoryFiles, Files)
	e.RegisterFactory(FactoryDelete, Delete)
	e.RegisterFactory(FactoryNoop, Noop)
	e.RegisterFactory(FactoryChain, Chain)
}

// FilesOptions configures the files rule.
type FilesOptions struct {
	// Files maps paths to content.
	Files map[string]string `json:"files"`
}

// Files returns a rule that writes every file in options. Existing files
// are overwritten only when the context strategy allows overwrite
// conflicts.
func Files(opts any) rules.Rule {
	var o FilesOptions
	if err := options.Decode(opts, &o); err != nil {
		return failing(err)
	}

	paths := make([]string, 0, len(o.Files))
	for p := range o.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	return func(_ context.Context, t tree.Tree, sctx *rules.Context) rules.Result {
		for _, p := range paths {
			content := []byte(o.Files[p])

			if !t.Exists(p) {
				if err := t.Create(p, content); err != nil {
					return rules.Failed(err)
				}
				sctx.Log().Debug("file created", "path", p, "bytes", len(content))
				continue
			}

			if !sctx.Strategy.Allows(tree.AllowOverwriteConflict) {
				return rules.Failed(fmt.Errorf("%s: %w (strategy %s)", p, tree.ErrFileExists, sctx.Strategy))
			}
			if err := t.Overwrite(p, content); err != nil {
				return rules.Failed(err)
			}
			sctx.Log().Debug("file overwritten", "path", p, "bytes", len(content))
		}
		return rules.NoOp()
	}
}

// DeleteOptions configures the delete rule.
type DeleteOptions struct {
	Paths []string `json:"paths"`
}

// Delete returns a rule that removes every path in options. Missing paths
// fail unless the strategy allows delete conflicts.
func Delete(opts any) rules.Rule {
	var o DeleteOptions
	if err := options.Decode(opts, &o); err != nil {
		return failing(err)
	}

	return func(_ context.Context, t tree.Tree, sctx *rules.Context) rules.Result {
		for _, p := range o.Paths {
			err := t.Delete(p)
			if errors.Is(err, tree.ErrFileNotFound) && sctx.Strategy.Allows(tree.AllowDeleteConflict) {
				sctx.Log().Debug("delete skipped, file missing", "path", p)
				continue
			}
			if err != nil {
				return rules.Failed(err)
			}
			sctx.Log().Debug("file deleted", "path", p)
		}
		return rules.NoOp()
	}
}

// Noop ignores its options and forwards the tree.
func Noop(any) rules.Rule {
	return rules.Noop()
}

// Step names one schematic run by the chain rule.
type Step struct {
	Collection string         `json:"collection"`
	Schematic  string         `json:"schematic"`
	Options    map[string]any `json:"options,omitempty"`
}

// ChainOptions configures the chain rule.
type ChainOptions struct {
	Steps []Step `json:"steps"`
}

// Chain returns a rule that runs each step's schematic in order through
// the context engine, feeding every step the output of the previous one.
func Chain(opts any) rules.Rule {
	var o ChainOptions
	if err := options.Decode(opts, &o); err != nil {
		return failing(err)
	}

	rs := make([]rules.Rule, 0, len(o.Steps))
	for i, st := range o.Steps {
		if st.Collection == "" || st.Schematic == "" {
			return failing(fmt.Errorf("chain step %d: collection and schematic are required", i))
		}
		rs = append(rs, rules.ExternalSchematic(st.Collection, st.Schematic, st.Options))
	}
	return rules.Chain(rs...)
}

func failing(err error) rules.Rule {
	return func(context.Context, tree.Tree, *rules.Context) rules.Result {
		return rules.Failed(err)
	}
}
