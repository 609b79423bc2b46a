package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/dhrn/devkit/internal/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Config carries environment defaults for command flags.
	Config Config

	// IDGenerator names schematic invocations and the history records of
	// top-level runs. Defaults to UUIDv7; overridable for testing.
	IDGenerator engine.IDGenerator

	// EngineOptions are applied after the defaults when run builds its
	// engine. Tests use it to register extra factories.
	EngineOptions []engine.EngineOption
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the devkit root command. Environment defaults are
// read once here; a malformed environment is reported when a command runs.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	cfg, cfgErr := LoadConfig()
	opts.Config = cfg

	cmd := &cobra.Command{
		Use:   "devkit",
		Short: "devkit - run schematics",
		Long:  "Run code-transformation schematics from YAML collections against virtual file trees.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment", cfgErr)
			}
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}
