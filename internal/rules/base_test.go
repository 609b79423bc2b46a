package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhrn/devkit/internal/tree"
)

func writeFile(path, content string) Rule {
	return func(_ context.Context, t tree.Tree, _ *Context) Result {
		if err := t.Create(path, []byte(content)); err != nil {
			return Failed(err)
		}
		return NoOp()
	}
}

func TestNoop(t *testing.T) {
	tree0 := tree.Empty()

	got, err := Last(CallRule(context.Background(), Noop(), Trees(tree0), testContext()))
	require.NoError(t, err)
	assert.Same(t, tree0, got)
}

func TestEmpty(t *testing.T) {
	got, err := Last(CallSource(context.Background(), Empty(), testContext()))
	require.NoError(t, err)
	assert.Empty(t, got.Files())
}

func TestChain_AppliesInOrder(t *testing.T) {
	var order []string
	step := func(name string) Rule {
		return func(context.Context, tree.Tree, *Context) Result {
			order = append(order, name)
			return NoOp()
		}
	}

	tree0 := tree.Empty()
	got, err := Last(CallRule(context.Background(), Chain(step("a"), step("b"), step("c")), Trees(tree0), testContext()))
	require.NoError(t, err)
	assert.Same(t, tree0, got)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestChain_ThreadsReplacedTree(t *testing.T) {
	replacement := tree.Empty()
	var seen tree.Tree

	replace := ruleOf(Produce(replacement))
	observe := func(_ context.Context, in tree.Tree, _ *Context) Result {
		seen = in
		return NoOp()
	}

	got, err := Last(CallRule(context.Background(), Chain(replace, observe), Trees(tree.Empty()), testContext()))
	require.NoError(t, err)
	assert.Same(t, replacement, got)
	assert.Same(t, replacement, seen)
}

func TestChain_InvalidResultKeepsKind(t *testing.T) {
	_, err := Last(CallRule(context.Background(), Chain(Noop(), ruleOf(Produce(1))), Trees(tree.Empty()), testContext()))

	var invalid *InvalidRuleResultError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 1, invalid.Value)
}

func TestChain_Empty(t *testing.T) {
	tree0 := tree.Empty()

	got, err := Last(CallRule(context.Background(), Chain(), Trees(tree0), testContext()))
	require.NoError(t, err)
	assert.Same(t, tree0, got)
}

func TestApply(t *testing.T) {
	source := Apply(Empty(), writeFile("/a.txt", "a"), writeFile("/b.txt", "b"))

	got, err := Last(CallSource(context.Background(), source, testContext()))
	require.NoError(t, err)
	assert.Equal(t, []string{"/a.txt", "/b.txt"}, got.Files())
}

func TestApply_RuleErrorStopsChain(t *testing.T) {
	called := false
	after := func(context.Context, tree.Tree, *Context) Result {
		called = true
		return NoOp()
	}

	source := Apply(Empty(), writeFile("/a.txt", "a"), writeFile("/a.txt", "again"), after)

	_, err := Last(CallSource(context.Background(), source, testContext()))
	assert.ErrorIs(t, err, tree.ErrFileExists)
	assert.False(t, called)
}

type fakeInvocable struct {
	options any
	parent  *Context
}

func (f *fakeInvocable) Call(ctx context.Context, options any, input Stream, parent *Context) Stream {
	f.options = options
	f.parent = parent
	return CallRule(ctx, writeFile("/external.txt", "x"), input, parent)
}

type fakeEngine struct {
	schematics map[string]*fakeInvocable
}

func (e *fakeEngine) Schematic(collection, name string) (Invocable, error) {
	s, ok := e.schematics[collection+":"+name]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func TestExternalSchematic(t *testing.T) {
	inv := &fakeInvocable{}
	sctx := &Context{Engine: &fakeEngine{schematics: map[string]*fakeInvocable{"@demo/c:files": inv}}}
	tree0 := tree.Empty()

	rule := ExternalSchematic("@demo/c", "files", map[string]any{"k": "v"})
	got, err := Last(CallRule(context.Background(), rule, Trees(tree0), sctx))
	require.NoError(t, err)

	assert.Same(t, tree0, got)
	assert.True(t, got.Exists("/external.txt"))
	assert.Equal(t, map[string]any{"k": "v"}, inv.options)
	assert.Same(t, sctx, inv.parent)
}

func TestExternalSchematic_Unknown(t *testing.T) {
	sctx := &Context{Engine: &fakeEngine{}}

	_, err := Last(CallRule(context.Background(), ExternalSchematic("@demo/c", "missing", nil), Trees(tree.Empty()), sctx))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "external schematic @demo/c:missing")
}

func TestExternalSchematic_NoEngine(t *testing.T) {
	_, err := Last(CallRule(context.Background(), ExternalSchematic("c", "s", nil), Trees(tree.Empty()), testContext()))
	assert.ErrorIs(t, err, ErrNoEngine)
}

func TestLast_EmptyStream(t *testing.T) {
	_, err := Last(Trees())
	assert.ErrorIs(t, err, ErrEmptyStream)
}

func TestPass_RejectsNilTree(t *testing.T) {
	_, err := Last(CallRule(context.Background(), ruleOf(Pass(Trees(nil))), Trees(tree.Empty()), testContext()))
	assert.True(t, IsInvalidRuleResult(err))
}
