package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heeddb/heed/internal/trigger"
)

// EventInfo describes one lifecycle event for output.
type EventInfo struct {
	Event     string `json:"event"`
	Class     string `json:"class"`      // "before" or "after"
	CanCancel bool   `json:"can_cancel"` // before/instead_of callbacks may veto here
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the lifecycle events",
		Long: `List the lifecycle events registrations subscribe to, in firing
order. Before-class events may be vetoed by callbacks registered with
before or instead_of timing; the after-class event may not.

Examples:
  heed events
  heed events --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(rootOpts, cmd)
		},
	}

	return cmd
}

func runEvents(opts *RootOptions, cmd *cobra.Command) error {
	events := trigger.Events()
	infos := make([]EventInfo, 0, len(events))
	for _, e := range events {
		info := EventInfo{Event: e.String(), Class: "after"}
		if e.Class() == trigger.EventClassBefore {
			info.Class = "before"
			info.CanCancel = true
		}
		infos = append(infos, info)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(infos)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, heading(fmt.Sprintf("%d lifecycle events", len(infos))))
	for _, info := range infos {
		cancel := ""
		if info.CanCancel {
			cancel = "cancelable"
		}
		fmt.Fprintf(w, "  %-20s %-8s %s\n", info.Event, info.Class, cancel)
	}
	return nil
}
