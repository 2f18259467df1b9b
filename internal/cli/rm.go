package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heeddb/heed/internal/catalog"
	"github.com/heeddb/heed/internal/trigger"
)

// RemoveOptions holds flags for the rm command.
type RemoveOptions struct {
	*RootOptions
	Database string
}

// RemoveResult reports a registration removal.
type RemoveResult struct {
	ID    int64         `json:"id"`
	Event trigger.Event `json:"event"`
	Name  string        `json:"name"`
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RemoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rm <event> <name>",
		Short: "Remove a registration from a catalog",
		Long: `Remove a registration from a catalog.

Removal is permanent; to keep the registration but stop it firing,
use disable instead.

Examples:
  heed rm --db ./heed.db command_end audit`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to catalog database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRemove(opts *RemoveOptions, eventArg, name string, cmd *cobra.Command) error {
	ctx := context.Background()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	event, err := trigger.ParseEvent(eventArg)
	if err != nil {
		return outputCatalogError(formatter, err)
	}

	st, err := catalog.Open(opts.Database)
	if err != nil {
		return outputStoreError(formatter, fmt.Sprintf("failed to open catalog: %v", err))
	}
	defer st.Close()

	reg, err := st.GetByEventAndName(ctx, event, name)
	if err != nil {
		if trigger.IsConfigError(err) {
			return outputCatalogError(formatter, err)
		}
		return outputStoreError(formatter, fmt.Sprintf("failed to look up %s/%s: %v", event, name, err))
	}

	if err := st.Delete(ctx, reg.ID); err != nil {
		if trigger.IsConfigError(err) {
			return outputCatalogError(formatter, err)
		}
		return outputStoreError(formatter, fmt.Sprintf("failed to remove %s/%s: %v", event, name, err))
	}

	result := RemoveResult{ID: reg.ID, Event: event, Name: name}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s %s/%s removed\n", markOK("✓"), event, name)
	return nil
}
