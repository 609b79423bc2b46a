package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	out, err := execute(t, "list", manifest)
	require.NoError(t, err)
	newGoldie(t).Assert(t, "list", []byte(out))
}

func TestList_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "list", manifest)
	require.NoError(t, err)
	newGoldie(t).Assert(t, "list_json", []byte(out))
}

func TestList_MissingManifest(t *testing.T) {
	out, err := execute(t, "list", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E102]")
}
