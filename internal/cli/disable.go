package cli

import (
	"github.com/spf13/cobra"

	"github.com/heeddb/heed/internal/trigger"
)

// DisableOptions holds flags for the disable command.
type DisableOptions struct {
	*RootOptions
	Database string
}

// NewDisableCommand creates the disable command.
func NewDisableCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DisableOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "disable <event> <name>",
		Short: "Disable a registration",
		Long: `Disable a registration so it never fires.

The registration stays in the catalog and keeps its tag filter; use
enable to bring it back.

Examples:
  heed disable --db ./heed.db command_end audit`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDisable(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to catalog database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runDisable(opts *DisableOptions, eventArg, name string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	return updateEnabledState(formatter, opts.Database, eventArg, name, trigger.EnabledDisabled)
}
