package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heeddb/heed/internal/catalog"
	"github.com/heeddb/heed/internal/trigger"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Database string
	Event    string // optional - filter to a single event
}

// ListResult holds the registrations read from a catalog.
type ListResult struct {
	Registrations []trigger.Registration `json:"registrations"`
	Total         int                    `json:"total"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registrations in a catalog",
		Long: `List the registrations stored in a catalog, grouped by event in
firing order.

Examples:
  heed list --db ./heed.db
  heed list --db ./heed.db --event command_end
  heed list --db ./heed.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to catalog database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Event, "event", "", "filter to a single event")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	events := trigger.Events()
	if opts.Event != "" {
		event, err := trigger.ParseEvent(opts.Event)
		if err != nil {
			return outputCatalogError(formatter, err)
		}
		events = []trigger.Event{event}
	}

	st, err := catalog.Open(opts.Database)
	if err != nil {
		return outputStoreError(formatter, fmt.Sprintf("failed to open catalog: %v", err))
	}
	defer st.Close()

	result := ListResult{Registrations: []trigger.Registration{}}
	for _, event := range events {
		regs, err := st.ScanByEvent(ctx, event)
		if err != nil {
			return outputStoreError(formatter, fmt.Sprintf("failed to scan %s: %v", event, err))
		}
		result.Registrations = append(result.Registrations, regs...)
	}
	result.Total = len(result.Registrations)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if result.Total == 0 {
		fmt.Fprintln(formatter.Writer, "No registrations in catalog")
		return nil
	}

	for _, event := range events {
		var regs []trigger.Registration
		for _, reg := range result.Registrations {
			if reg.Event == event {
				regs = append(regs, reg)
			}
		}
		if len(regs) == 0 {
			continue
		}

		fmt.Fprintf(formatter.Writer, "%s (%d)\n", heading(event.String()), len(regs))
		for _, reg := range regs {
			tags := "any command"
			if len(reg.Tags) > 0 {
				tags = strings.Join(reg.Tags, ", ")
			}
			fmt.Fprintf(formatter.Writer, "  [%d] %s: %s, %s → %s [%s]\n",
				reg.ID, reg.Name, reg.Timing, reg.Enabled, reg.CallbackID, tags)
		}
		fmt.Fprintln(formatter.Writer)
	}

	return nil
}

// outputStoreError reports a catalog access failure.
func outputStoreError(formatter *OutputFormatter, message string) error {
	_ = formatter.Error(ErrCodeStoreError, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeStoreError, message))
}

// outputCatalogError reports a catalog-level config error (unknown
// event, missing name) under its own code.
func outputCatalogError(formatter *OutputFormatter, err error) error {
	var cfgErr *trigger.ConfigError
	if errors.As(err, &cfgErr) {
		_ = formatter.Error(string(cfgErr.Code), cfgErr.Message, cfgErr.Registration)
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", cfgErr.Code, cfgErr.Message))
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return NewExitError(ExitFailure, err.Error())
}
