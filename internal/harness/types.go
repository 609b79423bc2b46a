package harness

import "github.com/dhrn/devkit/internal/store"

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step behaved as expected and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace holds one record per executed step, ordered by seq.
	Trace []store.Invocation `json:"trace"`

	// Errors lists expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`

	// Files is the final tree, keyed by path.
	Files map[string]string `json:"files"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []store.Invocation{},
		Errors: []string{},
		Files:  map[string]string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
