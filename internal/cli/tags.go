package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heeddb/heed/internal/ddl"
)

// NewTagsCommand creates the tags command.
func NewTagsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the command-tag taxonomy",
		Long: `List every command tag registrations may filter on.

The set is closed: a registration whose filter names a tag outside
this list is rejected, and commands outside the taxonomy never fire
callbacks.

Examples:
  heed tags
  heed tags --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTags(rootOpts, cmd)
		},
	}

	return cmd
}

func runTags(opts *RootOptions, cmd *cobra.Command) error {
	tags := ddl.Tags()
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.String())
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(names)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, heading(fmt.Sprintf("%d command tags", len(names))))
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", name)
	}
	return nil
}
