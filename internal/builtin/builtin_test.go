package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhrn/devkit/internal/engine"
	"github.com/dhrn/devkit/internal/rules"
	"github.com/dhrn/devkit/internal/testutil"
	"github.com/dhrn/devkit/internal/tree"
)

const testCollection = "@devkit/test"

func newEngine(t *testing.T, opts ...engine.EngineOption) *engine.Engine {
	t.Helper()

	opts = append([]engine.EngineOption{
		engine.WithLogger(testutil.DiscardLogger()),
	}, opts...)
	e := engine.New(opts...)
	Register(e)

	_, err := e.AddCollection(engine.CollectionDescription{
		Name: testCollection,
		Schematics: map[string]engine.SchematicDescription{
			"write":   {Factory: FactoryFiles, Schema: "files: [string]: string\n"},
			"remove":  {Factory: FactoryDelete, Schema: "paths: [...string]\n"},
			"nothing": {Factory: FactoryNoop},
			"steps":   {Factory: FactoryChain},
		},
	})
	require.NoError(t, err)
	return e
}

func run(t *testing.T, e *engine.Engine, name string, opts any, input tree.Tree, parent *rules.Context) (tree.Tree, error) {
	t.Helper()

	s, err := e.CreateSchematic(testCollection, name)
	require.NoError(t, err)
	return rules.Last(s.Call(context.Background(), opts, rules.Trees(input), parent))
}

func read(t *testing.T, tr tree.Tree, p string) string {
	t.Helper()

	b, err := tr.Read(p)
	require.NoError(t, err)
	return string(b)
}

func TestFiles_Creates(t *testing.T) {
	e := newEngine(t)

	out, err := run(t, e, "write", map[string]any{
		"files": map[string]any{"/a.txt": "A", "b/c.txt": "C"},
	}, tree.Empty(), nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"/a.txt": "A", "/b/c.txt": "C"}, testutil.Snapshot(t, out))
}

func TestFiles_ConflictWithDefaultStrategy(t *testing.T) {
	e := newEngine(t)
	in := testutil.TreeOf(t, map[string]string{"/a.txt": "old"})

	_, err := run(t, e, "write", map[string]any{
		"files": map[string]any{"/a.txt": "new"},
	}, in, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, tree.ErrFileExists)
	assert.Equal(t, "old", read(t, in, "/a.txt"))
}

func TestFiles_OverwriteAllowedByStrategy(t *testing.T) {
	tests := []struct {
		name   string
		engine []engine.EngineOption
		parent *rules.Context
	}{
		{name: "engine default", engine: []engine.EngineOption{engine.WithStrategy(tree.Overwrite)}},
		{name: "parent context", parent: &rules.Context{Strategy: tree.ContentOnly}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, tt.engine...)
			in := testutil.TreeOf(t, map[string]string{"/a.txt": "old"})

			out, err := run(t, e, "write", map[string]any{
				"files": map[string]any{"/a.txt": "new"},
			}, in, tt.parent)
			require.NoError(t, err)
			assert.Equal(t, "new", read(t, out, "/a.txt"))
		})
	}
}

func TestFiles_RejectsBadOptions(t *testing.T) {
	e := newEngine(t)

	_, err := run(t, e, "write", map[string]any{"files": map[string]any{"/a": 1}}, tree.Empty(), nil)
	require.Error(t, err)
}

func TestDelete(t *testing.T) {
	e := newEngine(t)
	in := testutil.TreeOf(t, map[string]string{"/a.txt": "A", "/b.txt": "B"})

	out, err := run(t, e, "remove", map[string]any{"paths": []any{"/a.txt"}}, in, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/b.txt"}, out.Files())
}

func TestDelete_Missing(t *testing.T) {
	t.Run("fails by default", func(t *testing.T) {
		e := newEngine(t)

		_, err := run(t, e, "remove", map[string]any{"paths": []any{"/nope"}}, tree.Empty(), nil)
		assert.ErrorIs(t, err, tree.ErrFileNotFound)
	})

	t.Run("skipped when allowed", func(t *testing.T) {
		e := newEngine(t, engine.WithStrategy(tree.AllowDeleteConflict))
		in := testutil.TreeOf(t, map[string]string{"/keep": "k"})

		out, err := run(t, e, "remove", map[string]any{"paths": []any{"/nope"}}, in, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"/keep"}, out.Files())
	})
}

func TestNoop(t *testing.T) {
	e := newEngine(t)
	in := testutil.TreeOf(t, map[string]string{"/a": "a"})

	out, err := run(t, e, "nothing", map[string]any{"ignored": true}, in, nil)
	require.NoError(t, err)
	assert.Same(t, in, out)
}

func TestChain(t *testing.T) {
	e := newEngine(t)

	out, err := run(t, e, "steps", map[string]any{
		"steps": []any{
			map[string]any{
				"collection": testCollection,
				"schematic":  "write",
				"options":    map[string]any{"files": map[string]any{"/a": "a", "/b": "b"}},
			},
			map[string]any{
				"collection": testCollection,
				"schematic":  "remove",
				"options":    map[string]any{"paths": []any{"/a"}},
			},
		},
	}, tree.Empty(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/b"}, out.Files())
}

func TestChain_UnknownStep(t *testing.T) {
	e := newEngine(t)

	_, err := run(t, e, "steps", map[string]any{
		"steps": []any{
			map[string]any{"collection": testCollection, "schematic": "missing"},
		},
	}, tree.Empty(), nil)
	require.Error(t, err)
	assert.True(t, engine.IsNotFound(err))
}

func TestChain_IncompleteStep(t *testing.T) {
	e := newEngine(t)

	_, err := run(t, e, "steps", map[string]any{
		"steps": []any{map[string]any{"schematic": "write"}},
	}, tree.Empty(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chain step 0")
}
