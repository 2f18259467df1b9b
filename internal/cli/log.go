package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/heeddb/heed/internal/catalog"
	"github.com/heeddb/heed/internal/trigger"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Database  string
	CommandID string
	Event     string
	Limit     int64
}

// LogStats holds summary statistics for a firing-log read.
type LogStats struct {
	TotalFirings int `json:"total_firings"`
	Commands     int `json:"commands"`
	Canceled     int `json:"canceled"`
}

// LogResult holds the firing-log rows and their summary.
type LogResult struct {
	Firings []trigger.Firing `json:"firings"`
	Stats   LogStats         `json:"stats"`
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Read the firing log",
		Long: `Read the firing log of a catalog in audit order.

Each row records one callback invocation: the command it belongs to,
the lifecycle event, the classified tag, the registration that
matched and whether the invocation vetoed the command.

Examples:
  heed log --db ./heed.db
  heed log --db ./heed.db --command cmd-000001
  heed log --db ./heed.db --event command_end --limit 20
  heed log --db ./heed.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to catalog database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.CommandID, "command", "", "filter to one command execution")
	cmd.Flags().StringVar(&opts.Event, "event", "", "filter to one lifecycle event")
	cmd.Flags().Int64Var(&opts.Limit, "limit", 0, "cap the number of rows returned (0 = all)")

	return cmd
}

func runLog(opts *LogOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := catalog.Open(opts.Database)
	if err != nil {
		return outputStoreError(formatter, fmt.Sprintf("failed to open catalog: %v", err))
	}
	defer st.Close()

	firings, err := st.ListFirings(ctx, catalog.FiringQuery{
		CommandID: opts.CommandID,
		Event:     opts.Event,
		Limit:     opts.Limit,
	})
	if err != nil {
		if trigger.IsConfigError(err) {
			return outputCatalogError(formatter, err)
		}
		return outputStoreError(formatter, fmt.Sprintf("failed to read firing log: %v", err))
	}

	result := LogResult{Firings: firings, Stats: logStats(firings)}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	return outputLogText(formatter, result, opts)
}

// logStats computes summary statistics over the returned rows.
func logStats(firings []trigger.Firing) LogStats {
	stats := LogStats{TotalFirings: len(firings)}

	commands := make(map[string]bool)
	for _, firing := range firings {
		commands[firing.CommandID] = true
		if firing.Canceled {
			stats.Canceled++
		}
	}
	stats.Commands = len(commands)

	return stats
}

// outputLogText renders the firing log as text.
func outputLogText(formatter *OutputFormatter, result LogResult, opts *LogOptions) error {
	w := formatter.Writer

	if len(result.Firings) == 0 {
		fmt.Fprintln(w, "No firings recorded")
		return nil
	}

	fmt.Fprintf(w, "Firing log: %s\n", opts.Database)
	if opts.CommandID != "" {
		fmt.Fprintf(w, "Command: %s\n", opts.CommandID)
	}
	if opts.Event != "" {
		fmt.Fprintf(w, "Event: %s\n", opts.Event)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Firings ===")
	for _, firing := range result.Firings {
		formatFiringLine(w, firing, formatter.Verbose)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Firings: %d\n", result.Stats.TotalFirings)
	fmt.Fprintf(w, "  Commands:      %d\n", result.Stats.Commands)
	fmt.Fprintf(w, "  Canceled:      %d\n", result.Stats.Canceled)

	return nil
}

// formatFiringLine formats a single firing-log row for text output.
func formatFiringLine(w io.Writer, firing trigger.Firing, verbose bool) {
	line := fmt.Sprintf("  [%d] %s %s %s: %s → %s",
		firing.Seq,
		truncateID(firing.CommandID),
		firing.Event,
		firing.Tag,
		firing.Registration,
		firing.CallbackID)
	if firing.Canceled {
		line += " " + markFail("CANCELED")
	}
	fmt.Fprintln(w, line)

	if verbose {
		fmt.Fprintf(w, "       ID: %s\n", truncateID(firing.ID))
		if firing.ObjectName != "" {
			object := firing.ObjectName
			if firing.SchemaName != "" {
				object = firing.SchemaName + "." + object
			}
			fmt.Fprintf(w, "       Object: %s\n", object)
		}
	}
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
