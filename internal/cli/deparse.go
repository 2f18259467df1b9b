package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heeddb/heed/internal/ddl"
	"github.com/heeddb/heed/internal/deparse"
	"github.com/heeddb/heed/internal/exprtext"
)

// DeparseOptions holds flags for the deparse command.
type DeparseOptions struct {
	*RootOptions
	SearchPath string
}

// DeparseReport pairs the classified tag with the rendered command.
type DeparseReport struct {
	Tag string `json:"tag"`
	deparse.Result
}

// NewDeparseCommand creates the deparse command.
func NewDeparseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeparseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "deparse [file]",
		Short: "Render normalized text for a command node",
		Long: `Classify a JSON command node and render its normalized text.

Reads the node from the given file, or from stdin when no file (or
"-") is given. Shapes without a rendering report not-available
rather than failing; that is the expected answer for most of the
taxonomy.

Examples:
  heed deparse create_table.json
  heed deparse create_table.json --search-path app,public
  cat node.json | heed deparse --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeparse(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SearchPath, "search-path", "", "comma-separated schema search path for unqualified names")

	return cmd
}

func runDeparse(opts *DeparseOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := readDeparseInput(cmd, args)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	node, err := ddl.DecodeNode(data)
	if err != nil {
		msg := fmt.Sprintf("failed to decode command node: %v", err)
		_ = formatter.Error(ErrCodeGeneric, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	tag, err := ddl.Classify(node)
	if err != nil {
		return outputCatalogError(formatter, err)
	}

	dep := deparse.New(exprtext.NewRenderer(), splitSearchPath(opts.SearchPath))
	result, err := dep.Deparse(node)
	if err != nil {
		msg := fmt.Sprintf("failed to deparse %s: %v", tag, err)
		_ = formatter.Error(ErrCodeGeneric, msg, nil)
		return NewExitError(ExitFailure, msg)
	}

	report := DeparseReport{Tag: tag.String(), Result: result}
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "Tag:    %s\n", heading(tag.String()))
	if !result.Available {
		fmt.Fprintln(formatter.Writer, "Text:   (not available for this command shape)")
		return nil
	}

	if result.ObjectName != "" {
		object := result.ObjectName
		if result.SchemaName != "" {
			object = result.SchemaName + "." + object
		}
		fmt.Fprintf(formatter.Writer, "Object: %s\n", object)
	}
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintln(formatter.Writer, result.Text)

	return nil
}

// readDeparseInput reads the node JSON from the file argument, or from
// stdin when no file (or "-") is given.
func readDeparseInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %v", args[0], err)
		}
		return data, nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %v", err)
	}
	return data, nil
}

// splitSearchPath parses a comma-separated schema list, dropping empty
// entries.
func splitSearchPath(s string) []string {
	if s == "" {
		return nil
	}
	var path []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			path = append(path, part)
		}
	}
	return path
}
