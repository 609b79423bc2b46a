package options

import (
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// ValidationError reports options that do not satisfy a schema.
type ValidationError struct {
	// Issues holds one message per violation, CUE path first.
	Issues []string
}

func (e *ValidationError) Error() string {
	return "invalid options: " + strings.Join(e.Issues, "; ")
}

// SchemaError reports a schema that does not compile.
type SchemaError struct {
	Message string
}

func (e *SchemaError) Error() string {
	return "invalid options schema: " + e.Message
}

// Transformer validates options against CUE schemas.
//
// Thread-safety: a cue.Context is not safe for concurrent use, so every
// method holds the transformer mutex. Compiled schemas are cached by source.
type Transformer struct {
	mu      sync.Mutex
	ctx     *cue.Context
	schemas map[string]cue.Value
}

// NewTransformer creates a Transformer with its own CUE context.
func NewTransformer() *Transformer {
	return &Transformer{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}
}

// Transform validates raw against schema and returns the resulting options
// with schema defaults applied. A nil raw is treated as an empty object.
func (t *Transformer) Transform(schema string, raw any) (map[string]any, error) {
	if raw == nil {
		raw = map[string]any{}
	}

	if schema == "" {
		if m, ok := raw.(map[string]any); ok {
			return m, nil
		}
		schema = "{...}"
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	sv, err := t.compile(schema)
	if err != nil {
		return nil, err
	}

	v := t.ctx.Encode(raw)
	if err := v.Err(); err != nil {
		return nil, &ValidationError{Issues: issues(err)}
	}

	unified := sv.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, &ValidationError{Issues: issues(err)}
	}

	if unified.IncompleteKind() != cue.StructKind {
		return nil, &ValidationError{Issues: []string{fmt.Sprintf("options must be an object, got %v", unified.IncompleteKind())}}
	}

	var out map[string]any
	if err := unified.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// CheckSchema reports whether schema compiles.
func (t *Transformer) CheckSchema(schema string) error {
	if schema == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := t.compile(schema)
	return err
}

// compile returns the cached schema value. Caller holds t.mu.
func (t *Transformer) compile(schema string) (cue.Value, error) {
	if v, ok := t.schemas[schema]; ok {
		return v, nil
	}

	v := t.ctx.CompileString(schema)
	if err := v.Err(); err != nil {
		return cue.Value{}, &SchemaError{Message: strings.Join(issues(err), "; ")}
	}

	t.schemas[schema] = v
	return v, nil
}

// Decode decodes transformed options into dst, a pointer to a struct with
// json tags.
func Decode(opts any, dst any) error {
	if opts == nil {
		return nil
	}
	v := cuecontext.New().Encode(opts)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	if err := v.Decode(dst); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	return nil
}

func issues(err error) []string {
	var out []string
	for _, e := range cueerrors.Errors(err) {
		out = append(out, e.Error())
	}
	if len(out) == 0 {
		out = append(out, err.Error())
	}
	return out
}
