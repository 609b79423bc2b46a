package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhrn/devkit/internal/tree"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TreeOf builds an in-memory tree holding files.
func TreeOf(t testing.TB, files map[string]string) *tree.HostTree {
	t.Helper()

	ht := tree.Empty()
	for p, content := range files {
		require.NoError(t, ht.Create(p, []byte(content)))
	}
	return ht
}

// Snapshot returns every file of tr keyed by normalized path.
func Snapshot(t testing.TB, tr tree.Tree) map[string]string {
	t.Helper()

	out := make(map[string]string)
	for _, p := range tr.Files() {
		b, err := tr.Read(p)
		require.NoError(t, err)
		out[p] = string(b)
	}
	return out
}
