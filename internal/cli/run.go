package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dhrn/devkit/internal/builtin"
	"github.com/dhrn/devkit/internal/collection"
	"github.com/dhrn/devkit/internal/engine"
	"github.com/dhrn/devkit/internal/rules"
	"github.com/dhrn/devkit/internal/store"
	"github.com/dhrn/devkit/internal/tree"
)

// Error codes reported in CLI responses.
const (
	CodeInvalidArgs      = "E101"
	CodeCollectionLoad   = "E102"
	CodeUnknownSchematic = "E103"
	CodeSchematicFailed  = "E201"
	CodeHistory          = "E301"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Options  string
	Strategy string
	Debug    bool
	Database string
}

// FileEntry is one file of a resulting tree.
type FileEntry struct {
	Path    string `json:"path"`
	Size    int    `json:"size"`
	Content string `json:"content"`
}

// RunResult is the output of a successful run.
type RunResult struct {
	Collection   string      `json:"collection"`
	Schematic    string      `json:"schematic"`
	Strategy     string      `json:"strategy"`
	InvocationID string      `json:"invocation_id,omitempty"`
	Seq          int64       `json:"seq,omitempty"`
	Files        []FileEntry `json:"files"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <manifest> <schematic>",
		Short: "Run a schematic on an empty tree",
		Long: `Run a schematic from a collection manifest on an empty tree and print the
resulting files.

Options are given as a JSON object and validated against the schematic's
CUE schema. With --db the run is recorded in the invocation history.

Environment:
  DEVKIT_DB        default for --db
  DEVKIT_STRATEGY  default for --strategy
  DEVKIT_DEBUG     default for --debug

Example:
  devkit run ./collection.yaml files --options '{"files": {"/a.txt": "hi"}}'
  devkit run ./collection.yaml delete --strategy overwrite --db ./history.db`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchematic(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.Options, "options", "{}", "schematic options as a JSON object")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", rootOpts.Config.Strategy, "merge strategy (default|error|content|overwrite)")
	cmd.Flags().BoolVar(&opts.Debug, "debug", rootOpts.Config.Debug, "run in debug mode")
	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.Database, "record the run in this SQLite database")

	return cmd
}

func runSchematic(cmd *cobra.Command, opts *RunOptions, manifest, name string) error {
	logger := configureLogging(opts.Verbose, cmd.ErrOrStderr())
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	var raw map[string]any
	if err := json.Unmarshal([]byte(opts.Options), &raw); err != nil {
		_ = out.Error(CodeInvalidArgs, "invalid --options: "+err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid --options", err)
	}

	strategy, err := tree.ParseMergeStrategy(opts.Strategy)
	if err != nil {
		_ = out.Error(CodeInvalidArgs, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid --strategy", err)
	}

	desc, err := collection.Load(manifest)
	if err != nil {
		_ = out.Error(CodeCollectionLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load collection", err)
	}

	ids := &rootIDs{gen: opts.RootOptions.IDGenerator}
	engineOpts := append([]engine.EngineOption{
		engine.WithLogger(logger),
		engine.WithDebug(opts.Debug),
		engine.WithStrategy(strategy),
		engine.WithIDGenerator(ids),
	}, opts.RootOptions.EngineOptions...)
	eng := engine.New(engineOpts...)
	builtin.Register(eng)
	if _, err := eng.AddCollection(desc); err != nil {
		_ = out.Error(CodeCollectionLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to register collection", err)
	}

	s, err := eng.CreateSchematic(desc.Name, name)
	if err != nil {
		_ = out.Error(CodeUnknownSchematic, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to create schematic", err)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	logger.Debug("running schematic",
		"collection", desc.Name,
		"schematic", s.Description().Name,
		"strategy", strategy,
	)
	result, runErr := rules.Last(s.Call(ctx, raw, rules.Trees(tree.Empty()), nil))

	res := RunResult{
		Collection: desc.Name,
		Schematic:  s.Description().Name,
		Strategy:   strategy.String(),
		Files:      []FileEntry{},
	}
	if runErr == nil {
		res.Files, err = fileEntries(result)
		if err != nil {
			return WrapExitError(ExitFailure, "read result tree", err)
		}
	}

	if opts.Database != "" {
		inv := store.Invocation{
			Collection: res.Collection,
			Schematic:  res.Schematic,
			Options:    raw,
			Strategy:   res.Strategy,
			Debug:      opts.Debug,
			Status:     store.StatusOK,
		}
		if runErr != nil {
			inv.Status = store.StatusFailed
			inv.Error = runErr.Error()
		}
		for _, f := range res.Files {
			inv.Files = append(inv.Files, f.Path)
		}

		inv.ID = ids.First()
		if err := recordInvocation(ctx, opts.Database, &inv); err != nil {
			_ = out.Error(CodeHistory, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record invocation", err)
		}
		res.InvocationID = inv.ID
		res.Seq = inv.Seq
		logger.Debug("invocation recorded",
			"invocation_id", inv.ID,
			"seq", inv.Seq,
			"status", inv.Status,
		)
	}

	if runErr != nil {
		_ = out.Error(CodeSchematicFailed, runErr.Error(), failureDetails(runErr))
		return WrapExitError(ExitFailure, "schematic failed", runErr)
	}

	return out.Success(res, func(w io.Writer) {
		fmt.Fprintf(w, "Ran %s:%s (strategy %s)\n", res.Collection, res.Schematic, res.Strategy)
		for _, f := range res.Files {
			fmt.Fprintf(w, "  %s (%d bytes)\n", f.Path, f.Size)
		}
		fmt.Fprintf(w, "%d file(s)\n", len(res.Files))
		if res.InvocationID != "" {
			fmt.Fprintf(w, "Recorded %s (seq %d)\n", res.InvocationID, res.Seq)
		}
	})
}

func fileEntries(t tree.Tree) ([]FileEntry, error) {
	files := []FileEntry{}
	for _, p := range t.Files() {
		b, err := t.Read(p)
		if err != nil {
			return nil, err
		}
		files = append(files, FileEntry{Path: p, Size: len(b), Content: string(b)})
	}
	return files, nil
}

// failureDetails returns a dump of the offending value when err is an
// invalid rule or source result.
func failureDetails(err error) any {
	var ruleErr *rules.InvalidRuleResultError
	if errors.As(err, &ruleErr) {
		return map[string]string{"value": ruleErr.Detail()}
	}
	var sourceErr *rules.InvalidSourceResultError
	if errors.As(err, &sourceErr) {
		return map[string]string{"value": sourceErr.Detail()}
	}
	return nil
}

// rootIDs hands invocation IDs to the engine and remembers the first one,
// which belongs to the top-level schematic call. History records reuse it
// so they line up with the run's log lines.
type rootIDs struct {
	gen engine.IDGenerator

	mu    sync.Mutex
	first string
}

func (r *rootIDs) Generate() string {
	gen := r.gen
	if gen == nil {
		gen = engine.UUIDv7Generator{}
	}
	id := gen.Generate()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.first == "" {
		r.first = id
	}
	return id
}

// First returns the first generated ID, generating one if the engine never
// asked.
func (r *rootIDs) First() string {
	r.mu.Lock()
	first := r.first
	r.mu.Unlock()
	if first == "" {
		return r.Generate()
	}
	return first
}

// recordInvocation assigns inv the next seq and writes it to the database
// at path.
func recordInvocation(ctx context.Context, path string, inv *store.Invocation) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	last, err := st.LastSeq(ctx)
	if err != nil {
		return err
	}
	inv.Seq = last + 1

	return st.WriteInvocation(ctx, *inv)
}

// signalContext cancels on SIGINT/SIGTERM or when parent is done.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
