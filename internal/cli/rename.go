package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heeddb/heed/internal/catalog"
	"github.com/heeddb/heed/internal/trigger"
)

// RenameOptions holds flags for the rename command.
type RenameOptions struct {
	*RootOptions
	Database string
}

// RenameResult reports a registration rename.
type RenameResult struct {
	ID      int64         `json:"id"`
	Event   trigger.Event `json:"event"`
	OldName string        `json:"old_name"`
	NewName string        `json:"new_name"`
}

// NewRenameCommand creates the rename command.
func NewRenameCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenameOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rename <event> <old-name> <new-name>",
		Short: "Rename a registration",
		Long: `Rename a registration within its event.

Names are unique per event, so the new name must not collide with
another registration on the same event. Invocation order follows
names, so renaming changes when the callback fires relative to its
peers.

Examples:
  heed rename --db ./heed.db command_end audit audit_v2`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to catalog database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRename(opts *RenameOptions, eventArg, oldName, newName string, cmd *cobra.Command) error {
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

	reg, err := st.GetByEventAndName(ctx, event, oldName)
	if err != nil {
		if trigger.IsConfigError(err) {
			return outputCatalogError(formatter, err)
		}
		return outputStoreError(formatter, fmt.Sprintf("failed to look up %s/%s: %v", event, oldName, err))
	}

	if err := st.Rename(ctx, reg.ID, newName); err != nil {
		if trigger.IsConfigError(err) {
			return outputCatalogError(formatter, err)
		}
		return outputStoreError(formatter, fmt.Sprintf("failed to rename %s/%s: %v", event, oldName, err))
	}

	result := RenameResult{ID: reg.ID, Event: event, OldName: oldName, NewName: newName}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s %s/%s renamed to %s\n", markOK("✓"), event, oldName, newName)
	return nil
}
