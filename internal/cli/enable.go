package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heeddb/heed/internal/catalog"
	"github.com/heeddb/heed/internal/trigger"
)

// EnableOptions holds flags for the enable command.
type EnableOptions struct {
	*RootOptions
	Database string
	State    string
}

// StateChangeResult reports an enabled-state update.
type StateChangeResult struct {
	ID      int64                `json:"id"`
	Event   trigger.Event        `json:"event"`
	Name    string               `json:"name"`
	Enabled trigger.EnabledState `json:"enabled"`
}

// NewEnableCommand creates the enable command.
func NewEnableCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EnableOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "enable <event> <name>",
		Short: "Enable a registration",
		Long: `Enable a registration, optionally restricted to a session role.

With no --state flag the registration fires for every session role.
"origin" restricts firing to ordinary sessions, "replica" to sessions
applying replicated changes.

Examples:
  heed enable --db ./heed.db command_end audit
  heed enable --db ./heed.db command_end audit --state replica`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnable(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to catalog database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.State, "state", "always", "enabled state: always, origin or replica")

	return cmd
}

func runEnable(opts *EnableOptions, eventArg, name string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	state, err := trigger.ParseEnabled(opts.State)
	if err != nil {
		return outputCatalogError(formatter, err)
	}
	if state == trigger.EnabledDisabled {
		msg := "use 'heed disable' to disable a registration"
		_ = formatter.Error(ErrCodeGeneric, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	return updateEnabledState(formatter, opts.Database, eventArg, name, state)
}

// updateEnabledState resolves event/name in the catalog and writes the
// new enabled state. Shared by enable and disable.
func updateEnabledState(formatter *OutputFormatter, database, eventArg, name string, state trigger.EnabledState) error {
	ctx := context.Background()

	event, err := trigger.ParseEvent(eventArg)
	if err != nil {
		return outputCatalogError(formatter, err)
	}

	st, err := catalog.Open(database)
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

	if err := st.UpdateEnabled(ctx, reg.ID, state); err != nil {
		if trigger.IsConfigError(err) {
			return outputCatalogError(formatter, err)
		}
		return outputStoreError(formatter, fmt.Sprintf("failed to update %s/%s: %v", event, name, err))
	}

	result := StateChangeResult{ID: reg.ID, Event: event, Name: name, Enabled: state}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s %s/%s is now %s\n", markOK("✓"), event, name, state)
	return nil
}
