package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customTree struct {
	Base
	*HostTree
}

type notATree struct {
	files map[string][]byte
}

func TestIsTree(t *testing.T) {
	var nilHost *HostTree

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"host tree", Empty(), true},
		{"embedded base", customTree{HostTree: Empty()}, true},
		{"nil", nil, false},
		{"typed nil pointer", nilHost, false},
		{"empty struct", struct{}{}, false},
		{"map", map[string]any{}, false},
		{"lookalike", &notATree{}, false},
		{"string", "tree", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTree(tt.value))
		})
	}
}

func TestHostTree_CreateRead(t *testing.T) {
	tr := Empty()

	require.NoError(t, tr.Create("src/main.go", []byte("package main")))
	assert.True(t, tr.Exists("/src/main.go"))
	assert.True(t, tr.Exists("src/./main.go"))

	content, err := tr.Read("/src/main.go")
	require.NoError(t, err)
	assert.Equal(t, "package main", string(content))

	err = tr.Create("/src/main.go", nil)
	assert.ErrorIs(t, err, ErrFileExists)
}

func TestHostTree_ReadReturnsCopy(t *testing.T) {
	tr := Empty()
	require.NoError(t, tr.Create("a", []byte("abc")))

	content, err := tr.Read("a")
	require.NoError(t, err)
	content[0] = 'x'

	again, err := tr.Read("a")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestHostTree_OverwriteDelete(t *testing.T) {
	tr := Empty()

	assert.ErrorIs(t, tr.Overwrite("a", []byte("1")), ErrFileNotFound)
	assert.ErrorIs(t, tr.Delete("a"), ErrFileNotFound)

	require.NoError(t, tr.Create("a", []byte("1")))
	require.NoError(t, tr.Overwrite("a", []byte("2")))

	content, err := tr.Read("a")
	require.NoError(t, err)
	assert.Equal(t, "2", string(content))

	require.NoError(t, tr.Delete("a"))
	assert.False(t, tr.Exists("a"))

	_, err = tr.Read("a")
	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "read", pe.Op)
	assert.Equal(t, "/a", pe.Path)
}

func TestHostTree_FilesSorted(t *testing.T) {
	tr := Empty()
	require.NoError(t, tr.Create("/b.txt", nil))
	require.NoError(t, tr.Create("/a/c.txt", nil))
	require.NoError(t, tr.Create("/a.txt", nil))

	assert.Equal(t, []string{"/a.txt", "/a/c.txt", "/b.txt"}, tr.Files())
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/a/b", NormalizePath("a/b"))
	assert.Equal(t, "/a/b", NormalizePath("/a//b/"))
	assert.Equal(t, "/b", NormalizePath("/a/../b"))
	assert.Equal(t, "/a/b", NormalizePath(`a\b`))
	// "e" + combining acute accent composes to a single code point.
	assert.Equal(t, "/caf\u00e9", NormalizePath("cafe\u0301"))
}

func TestMergeStrategy(t *testing.T) {
	s, err := ParseMergeStrategy("overwrite")
	require.NoError(t, err)
	assert.Equal(t, Overwrite, s)
	assert.True(t, s.Allows(AllowCreationConflict))
	assert.True(t, s.Allows(AllowOverwriteConflict|AllowDeleteConflict))
	assert.False(t, s.Allows(Error))
	assert.False(t, Default.Allows(Default))

	s, err = ParseMergeStrategy("")
	require.NoError(t, err)
	assert.Equal(t, Default, s)

	_, err = ParseMergeStrategy("merge-everything")
	assert.Error(t, err)

	assert.Equal(t, "content", ContentOnly.String())
	assert.Equal(t, "error|allow-creation", (Error | AllowCreationConflict).String())
}

func TestCopy(t *testing.T) {
	src := Empty()
	require.NoError(t, src.Create("/a", []byte("A")))
	require.NoError(t, src.Create("/dir/b", []byte("B")))

	dst, err := Copy(src)
	require.NoError(t, err)
	assert.Equal(t, src.Files(), dst.Files())

	require.NoError(t, dst.Overwrite("/a", []byte("changed")))
	b, err := src.Read("/a")
	require.NoError(t, err)
	assert.Equal(t, "A", string(b))
}
