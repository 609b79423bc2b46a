package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dhrn/devkit/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database   string
	Limit      int
	Collection string
	Schematic  string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded invocations",
		Long: `Show the most recent invocations recorded by run --db, oldest first.

Example:
  devkit history --db ./history.db
  devkit history --db ./history.db --limit 5 --format json
  devkit history --db ./history.db --collection @devkit/sample --schematic files`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.Database, "path to SQLite database (or DEVKIT_DB)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "number of invocations to show (0 for all)")
	cmd.Flags().StringVar(&opts.Collection, "collection", "", "only show invocations from this collection")
	cmd.Flags().StringVar(&opts.Schematic, "schematic", "", "only show invocations of this schematic")

	return cmd
}

func showHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	configureLogging(opts.Verbose, cmd.ErrOrStderr())
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	if opts.Database == "" {
		_ = out.Error(CodeInvalidArgs, "--db or DEVKIT_DB is required", nil)
		return NewExitError(ExitCommandError, "--db or DEVKIT_DB is required")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = out.Error(CodeHistory, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	invocations, err := st.QueryInvocations(cmd.Context(), store.Query{
		Collection: opts.Collection,
		Schematic:  opts.Schematic,
		Limit:      opts.Limit,
	})
	if err != nil {
		_ = out.Error(CodeHistory, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read history", err)
	}

	return out.Success(invocations, func(w io.Writer) {
		if len(invocations) == 0 {
			fmt.Fprintln(w, "No invocations recorded.")
			return
		}
		for _, inv := range invocations {
			fmt.Fprintf(w, "#%d %s %s:%s %s strategy=%s files=%d\n",
				inv.Seq, inv.ID, inv.Collection, inv.Schematic, inv.Status, inv.Strategy, len(inv.Files))
			if inv.Error != "" {
				fmt.Fprintf(w, "    error: %s\n", inv.Error)
			}
		}
	})
}
