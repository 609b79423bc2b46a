package engine

import (
	"errors"
	"fmt"
)

// InvalidSchematicNameError is returned by NewSchematic when the
// description's name does not match SchematicNamePattern. A schematic with
// such a name can never be constructed.
type InvalidSchematicNameError struct {
	Name string
}

func (e *InvalidSchematicNameError) Error() string {
	return fmt.Sprintf("schematic has invalid name: %q", e.Name)
}

// IsInvalidSchematicName returns true if err is an InvalidSchematicNameError.
// Uses errors.As to handle wrapped errors.
func IsInvalidSchematicName(err error) bool {
	var e *InvalidSchematicNameError
	return errors.As(err, &e)
}

// LookupError represents a failure to resolve something registered with
// the engine.
type LookupError struct {
	// Code identifies the error category.
	Code LookupErrorCode

	// Collection is the collection being searched.
	Collection string

	// Name is the schematic or factory name, empty for collection errors.
	Name string
}

// LookupErrorCode categorizes lookup errors.
type LookupErrorCode string

const (
	// ErrCodeUnknownCollection indicates no collection with that name.
	ErrCodeUnknownCollection LookupErrorCode = "UNKNOWN_COLLECTION"

	// ErrCodeDuplicateCollection indicates a collection name is taken.
	ErrCodeDuplicateCollection LookupErrorCode = "DUPLICATE_COLLECTION"

	// ErrCodeUnknownSchematic indicates the collection has no such schematic.
	ErrCodeUnknownSchematic LookupErrorCode = "UNKNOWN_SCHEMATIC"

	// ErrCodeUnknownFactory indicates a schematic names an unregistered factory.
	ErrCodeUnknownFactory LookupErrorCode = "UNKNOWN_FACTORY"
)

// Error implements the error interface.
func (e *LookupError) Error() string {
	switch e.Code {
	case ErrCodeUnknownCollection:
		return fmt.Sprintf("%s: collection %q not found", e.Code, e.Collection)
	case ErrCodeDuplicateCollection:
		return fmt.Sprintf("%s: collection %q already registered", e.Code, e.Collection)
	case ErrCodeUnknownFactory:
		return fmt.Sprintf("%s: factory %q not registered (collection=%s)", e.Code, e.Name, e.Collection)
	}
	return fmt.Sprintf("%s: schematic %q not found in collection %q", e.Code, e.Name, e.Collection)
}

// IsNotFound returns true if err reports an unknown collection, schematic
// or factory.
func IsNotFound(err error) bool {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Code != ErrCodeDuplicateCollection
	}
	return false
}
