package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhrn/devkit/internal/store"
	"github.com/dhrn/devkit/internal/testutil"
)

type historyResponse struct {
	Status string             `json:"status"`
	Data   []store.Invocation `json:"data"`
}

func historyJSON(t *testing.T, args ...string) historyResponse {
	t.Helper()

	out, err := execute(t, append([]string{"--format", "json", "history"}, args...)...)
	require.NoError(t, err)

	var resp historyResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp
}

func TestHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	ids := testutil.NewSequentialIDs("inv")

	require.NoError(t, runWithIDs(t, ids, manifest, "files", "--db", db, "--options", `{"files": {"/a.txt": "a"}}`))
	err := runWithIDs(t, ids, manifest, "delete", "--db", db, "--strategy", "error", "--options", `{"paths": ["/nope"]}`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	newGoldie(t).Assert(t, "history", []byte(out))

	resp := historyJSON(t, "--db", db, "--limit", "1")
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "inv-2", resp.Data[0].ID)
	assert.Equal(t, store.StatusFailed, resp.Data[0].Status)
	assert.Equal(t, map[string]any{"paths": []any{"/nope"}}, resp.Data[0].Options)
}

func TestHistory_Filters(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	ids := testutil.NewSequentialIDs("inv")

	require.NoError(t, runWithIDs(t, ids, manifest, "files", "--db", db, "--options", `{"files": {"/a.txt": "a"}}`))
	require.NoError(t, runWithIDs(t, ids, manifest, "noop", "--db", db))
	require.NoError(t, runWithIDs(t, ids, manifest, "f", "--db", db, "--options", `{"files": {"/b.txt": "b"}}`))

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"schematic", []string{"--schematic", "files"}, []string{"inv-1", "inv-3"}},
		{"schematic with limit", []string{"--schematic", "files", "--limit", "1"}, []string{"inv-3"}},
		{"collection", []string{"--collection", "@devkit/sample"}, []string{"inv-1", "inv-2", "inv-3"}},
		{"unknown collection", []string{"--collection", "@devkit/other"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := historyJSON(t, append([]string{"--db", db}, tt.args...)...)

			got := []string{}
			for _, inv := range resp.Data {
				got = append(got, inv.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHistory_Empty(t *testing.T) {
	out, err := execute(t, "history", "--db", filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	assert.Equal(t, "No invocations recorded.\n", out)
}

func TestHistory_RequiresDatabase(t *testing.T) {
	_, err := execute(t, "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
