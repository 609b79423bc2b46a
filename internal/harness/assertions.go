package harness

import (
	"fmt"
	"strings"

	"github.com/dhrn/devkit/internal/tree"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	// Files lists the final tree for context.
	Files []string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nfiles:\n")
	for _, p := range e.Files {
		fmt.Fprintf(&buf, "  %s\n", p)
	}

	return buf.String()
}

// evaluateAssertion dispatches on the assertion type.
func evaluateAssertion(t tree.Tree, a Assertion) error {
	switch a.Type {
	case AssertFileExists:
		if t.Exists(a.Path) {
			return nil
		}
		return &AssertionError{Type: a.Type, Expected: a.Path + " exists", Actual: "missing", Files: t.Files()}

	case AssertFileAbsent:
		if !t.Exists(a.Path) {
			return nil
		}
		return &AssertionError{Type: a.Type, Expected: a.Path + " absent", Actual: "present", Files: t.Files()}

	case AssertFileContent:
		b, err := t.Read(a.Path)
		if err != nil {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s = %q", a.Path, a.Content), Actual: err.Error(), Files: t.Files()}
		}
		if string(b) != a.Content {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s = %q", a.Path, a.Content), Actual: fmt.Sprintf("%q", b), Files: t.Files()}
		}
		return nil

	case AssertFileCount:
		files := t.Files()
		if len(files) == a.Count {
			return nil
		}
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%d files", a.Count), Actual: fmt.Sprintf("%d files", len(files)), Files: files}
	}

	return fmt.Errorf("unknown assertion type %q", a.Type)
}
