package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhrn/devkit/internal/collection"
	"github.com/dhrn/devkit/internal/engine"
)

// SchematicInfo describes one listed schematic.
type SchematicInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Factory     string   `json:"factory"`
	Aliases     []string `json:"aliases,omitempty"`
}

// ListResult is the output of the list command.
type ListResult struct {
	Collection string          `json:"collection"`
	Version    string          `json:"version,omitempty"`
	Schematics []SchematicInfo `json:"schematics"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <manifest>",
		Short: "List the schematics of a collection",
		Long: `List the visible schematics of a collection manifest. Hidden schematics
are omitted but remain callable with run.

Example:
  devkit list ./collection.yaml
  devkit list ./collection.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSchematics(cmd, rootOpts, args[0])
		},
	}
}

func listSchematics(cmd *cobra.Command, opts *RootOptions, manifest string) error {
	logger := configureLogging(opts.Verbose, cmd.ErrOrStderr())
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	desc, err := collection.Load(manifest)
	if err != nil {
		_ = out.Error(CodeCollectionLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load collection", err)
	}

	eng := engine.New(engine.WithLogger(logger))
	coll, err := eng.AddCollection(desc)
	if err != nil {
		_ = out.Error(CodeCollectionLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to register collection", err)
	}

	res := ListResult{
		Collection: desc.Name,
		Version:    desc.Version,
		Schematics: []SchematicInfo{},
	}
	width := 0
	for _, name := range coll.Names() {
		sd := desc.Schematics[name]
		res.Schematics = append(res.Schematics, SchematicInfo{
			Name:        name,
			Description: sd.Description,
			Factory:     sd.Factory,
			Aliases:     sd.Aliases,
		})
		width = max(width, len(name))
	}

	return out.Success(res, func(w io.Writer) {
		header := res.Collection
		if res.Version != "" {
			header += " " + res.Version
		}
		fmt.Fprintln(w, header)
		for _, s := range res.Schematics {
			line := fmt.Sprintf("  %-*s  %s", width, s.Name, s.Description)
			if len(s.Aliases) > 0 {
				line += fmt.Sprintf(" (aliases: %s)", strings.Join(s.Aliases, ", "))
			}
			fmt.Fprintln(w, strings.TrimRight(line, " "))
		}
	})
}
