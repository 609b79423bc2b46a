package rules

import (
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
)

// InvalidSourceResultError is the terminal error of a source stream whose
// produced value is not a tree.
type InvalidSourceResultError struct {
	// Value is the offending value.
	Value any
}

func (e *InvalidSourceResultError) Error() string {
	return fmt.Sprintf("invalid source result: %s", typeName(e.Value))
}

// Detail dumps the offending value for diagnostics.
func (e *InvalidSourceResultError) Detail() string {
	return dump(e.Value)
}

// InvalidRuleResultError is the terminal error of a rule stream whose
// produced value is not a tree.
type InvalidRuleResultError struct {
	// Value is the offending value.
	Value any
}

func (e *InvalidRuleResultError) Error() string {
	return fmt.Sprintf("invalid rule result: %s", typeName(e.Value))
}

// Detail dumps the offending value for diagnostics.
func (e *InvalidRuleResultError) Detail() string {
	return dump(e.Value)
}

// IsInvalidSourceResult returns true if err is or wraps an
// InvalidSourceResultError.
func IsInvalidSourceResult(err error) bool {
	var e *InvalidSourceResultError
	return errors.As(err, &e)
}

// IsInvalidRuleResult returns true if err is or wraps an
// InvalidRuleResultError.
func IsInvalidRuleResult(err error) bool {
	var e *InvalidRuleResultError
	return errors.As(err, &e)
}

// DepthExceededError is returned by ExternalSchematic when a nested call
// would exceed the context's MaxDepth.
type DepthExceededError struct {
	Collection string
	Name       string
	Depth      int
	Limit      int
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("schematic %s:%s exceeded max nesting depth: %d > %d limit",
		e.Collection, e.Name, e.Depth, e.Limit)
}

// IsDepthExceeded returns true if err is or wraps a DepthExceededError.
func IsDepthExceeded(err error) bool {
	var e *DepthExceededError
	return errors.As(err, &e)
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                4,
}

func dump(v any) string {
	return dumper.Sdump(v)
}
