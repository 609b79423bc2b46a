package tree

import (
	"errors"
	"fmt"
	"reflect"
)

// Tree is a snapshot of a virtual file system.
//
// Paths are slash separated and rooted at "/". Implementations must embed
// Base; the unexported marker is what IsTree tests for.
type Tree interface {
	// Exists reports whether a file exists at path.
	Exists(path string) bool

	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)

	// Create adds a new file. Fails with ErrFileExists if path is taken.
	Create(path string, content []byte) error

	// Overwrite replaces the content of an existing file.
	Overwrite(path string, content []byte) error

	// Delete removes a file.
	Delete(path string) error

	// Files returns all file paths in lexical order.
	Files() []string

	treeMarker()
}

// Base marks a type as a Tree. Embed it in concrete tree implementations.
type Base struct{}

func (Base) treeMarker() {}

var (
	// ErrFileExists is returned by Create when the path is already taken.
	ErrFileExists = errors.New("file already exists")

	// ErrFileNotFound is returned when a path does not exist.
	ErrFileNotFound = errors.New("file does not exist")
)

// PathError records a failed tree operation on a path.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// IsTree reports whether v carries the tree capability.
//
// Typed nil pointers are rejected even though their type implements Tree.
func IsTree(v any) bool {
	t, ok := v.(Tree)
	if !ok || t == nil {
		return false
	}
	rv := reflect.ValueOf(t)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface, reflect.Func, reflect.Slice, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}
