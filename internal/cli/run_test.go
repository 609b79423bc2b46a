package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhrn/devkit/internal/engine"
	"github.com/dhrn/devkit/internal/rules"
	"github.com/dhrn/devkit/internal/store"
	"github.com/dhrn/devkit/internal/testutil"
	"github.com/dhrn/devkit/internal/tree"
)

// runCommand runs the run command with root options and returns stdout
// and stderr.
func runCommand(t *testing.T, root *RootOptions, args ...string) (string, string, error) {
	t.Helper()

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRunCommand(root)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// runWithIDs runs one schematic through the run command with
// deterministic invocation IDs.
func runWithIDs(t *testing.T, ids *testutil.SequentialIDs, args ...string) error {
	t.Helper()
	_, _, err := runCommand(t, &RootOptions{Format: "text", IDGenerator: ids}, args...)
	return err
}

func TestRun(t *testing.T) {
	out, err := execute(t, "run", manifest, "files", "--options", `{"files": {"/b.txt": "bb", "/a.txt": "a"}}`)
	require.NoError(t, err)
	newGoldie(t).Assert(t, "run", []byte(out))
}

func TestRun_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "run", manifest, "f", "--options", `{"files": {"/b.txt": "bb", "/a.txt": "a"}}`)
	require.NoError(t, err)
	newGoldie(t).Assert(t, "run_json", []byte(out))
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{
			name:     "bad options json",
			args:     []string{"run", manifest, "files", "--options", "{"},
			wantCode: ExitCommandError,
			wantOut:  "Error [E101]: invalid --options",
		},
		{
			name:     "bad strategy",
			args:     []string{"run", manifest, "files", "--strategy", "sometimes"},
			wantCode: ExitCommandError,
			wantOut:  "Error [E101]: unknown merge strategy",
		},
		{
			name:     "unknown schematic",
			args:     []string{"run", manifest, "nope"},
			wantCode: ExitCommandError,
			wantOut:  "Error [E103]",
		},
		{
			name:     "options fail schema",
			args:     []string{"run", manifest, "files", "--options", `{"files": {"/a": 1}}`},
			wantCode: ExitFailure,
			wantOut:  "Error [E201]: schematic files",
		},
		{
			name:     "rule fails",
			args:     []string{"run", manifest, "delete", "--options", `{"paths": ["/nope"]}`},
			wantCode: ExitFailure,
			wantOut:  "Error [E201]: delete /nope: file does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, GetExitCode(err))
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestRun_JSONError(t *testing.T) {
	out, err := execute(t, "--format", "json", "run", manifest, "nope")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeUnknownSchematic, resp.Error.Code)
}

func TestRun_InvalidResultDetails(t *testing.T) {
	broken := func(any) rules.Rule {
		return func(context.Context, tree.Tree, *rules.Context) rules.Result {
			return rules.Produce(map[string]int{"answer": 42})
		}
	}
	root := &RootOptions{
		Format:        "json",
		EngineOptions: []engine.EngineOption{engine.WithFactory("broken", broken)},
	}

	out, _, err := runCommand(t, root, filepath.Join("testdata", "broken", "collection.yaml"), "bad")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, rules.IsInvalidRuleResult(err))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string            `json:"code"`
			Message string            `json:"message"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeSchematicFailed, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "invalid rule result: map[string]int")
	assert.Contains(t, resp.Error.Details["value"], `"answer": (int) 42`)
}

func TestRun_RecordsRootInvocationID(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	ids := testutil.NewSequentialIDs("inv")
	root := &RootOptions{Format: "text", Verbose: true, IDGenerator: ids}

	// The chain's nested files call takes the second ID.
	_, stderr, err := runCommand(t, root, manifest, "scaffold", "--db", db,
		"--options", `{"steps": [{"collection": "@devkit/sample", "schematic": "files", "options": {"files": {"/a.txt": "a"}}}]}`)
	require.NoError(t, err)
	assert.Contains(t, stderr, "invocation_id=inv-1")
	assert.Contains(t, stderr, "invocation_id=inv-2")
	assert.Contains(t, stderr, `msg="invocation recorded" invocation_id=inv-1 seq=1`)

	_, _, err = runCommand(t, root, manifest, "noop", "--db", db)
	require.NoError(t, err)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	history, err := st.ReadInvocations(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "inv-1", history[0].ID)
	assert.Equal(t, "scaffold", history[0].Schematic)
	assert.Equal(t, []string{"/a.txt"}, history[0].Files)
	assert.Equal(t, "inv-3", history[1].ID)
	assert.Equal(t, int64(2), history[1].Seq)
}
