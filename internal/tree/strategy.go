package tree

import (
	"fmt"
	"strings"
)

// MergeStrategy tells rules how to reconcile conflicting tree states.
// It is a set of flags; the core only carries it through the context.
type MergeStrategy int

const (
	// Default defers to whatever the rule considers safe.
	Default MergeStrategy = 0

	// Error fails on any conflict.
	Error MergeStrategy = 1 << 0

	AllowOverwriteConflict MergeStrategy = 1 << 1
	AllowCreationConflict  MergeStrategy = 1 << 2
	AllowDeleteConflict    MergeStrategy = 1 << 3

	// ContentOnly only tolerates content conflicts.
	ContentOnly = AllowOverwriteConflict

	// Overwrite tolerates every kind of conflict.
	Overwrite = AllowOverwriteConflict | AllowCreationConflict | AllowDeleteConflict
)

var strategyNames = map[string]MergeStrategy{
	"default":   Default,
	"error":     Error,
	"content":   ContentOnly,
	"overwrite": Overwrite,
}

// Allows reports whether every flag in f is set on s.
func (s MergeStrategy) Allows(f MergeStrategy) bool {
	return f != Default && s&f == f
}

func (s MergeStrategy) String() string {
	switch s {
	case Default:
		return "default"
	case Error:
		return "error"
	case ContentOnly:
		return "content"
	case Overwrite:
		return "overwrite"
	}

	var parts []string
	if s&Error != 0 {
		parts = append(parts, "error")
	}
	if s&AllowOverwriteConflict != 0 {
		parts = append(parts, "allow-overwrite")
	}
	if s&AllowCreationConflict != 0 {
		parts = append(parts, "allow-creation")
	}
	if s&AllowDeleteConflict != 0 {
		parts = append(parts, "allow-delete")
	}
	return strings.Join(parts, "|")
}

// ParseMergeStrategy parses a strategy name as accepted by the CLI.
// The empty string parses as Default.
func ParseMergeStrategy(name string) (MergeStrategy, error) {
	if name == "" {
		return Default, nil
	}
	s, ok := strategyNames[strings.ToLower(name)]
	if !ok {
		return Default, fmt.Errorf("unknown merge strategy %q (want default|error|content|overwrite)", name)
	}
	return s, nil
}
