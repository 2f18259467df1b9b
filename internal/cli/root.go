package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the heed CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "heed",
		Short: "heed - DDL event triggers and command deparsing",
		Long: `Administers DDL event-trigger registrations: a catalog of named
callbacks keyed by lifecycle event and command tag, plus tooling to
deparse structured command nodes back into text.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Taxonomy
	cmd.AddCommand(NewTagsCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))

	// Manifests
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))

	// Catalog administration
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewEnableCommand(opts))
	cmd.AddCommand(NewDisableCommand(opts))
	cmd.AddCommand(NewRenameCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))

	// Inspection and scenarios
	cmd.AddCommand(NewDeparseCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
