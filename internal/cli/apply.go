package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heeddb/heed/internal/catalog"
	"github.com/heeddb/heed/internal/manifest"
	"github.com/heeddb/heed/internal/trigger"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Database string
	DryRun   bool
}

// ApplyResult holds the outcome of applying manifests to a catalog.
type ApplyResult struct {
	Applied       int                    `json:"applied"`
	DryRun        bool                   `json:"dry_run,omitempty"`
	IDs           []int64                `json:"ids,omitempty"`
	Registrations []trigger.Registration `json:"registrations"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <manifest-dir>",
		Short: "Apply registration manifests to a catalog",
		Long: `Compile and validate registration manifests, then write them to a
catalog in one transaction.

The batch is all-or-nothing: a name collision with the catalog, or
between two registrations in the batch, rolls back every insert.
Nothing is written unless validation passes cleanly.

Examples:
  heed apply --db ./heed.db ./manifests
  heed apply --db ./heed.db ./manifests --dry-run
  heed apply --db ./heed.db ./manifests --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to catalog database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "validate and show what would be applied without writing")

	return cmd
}

func runApply(opts *ApplyOptions, manifestDir string, cmd *cobra.Command) error {
	ctx := context.Background()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadManifests(manifestDir, LoadModeCollectAll)

	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputApplyError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputApplyError(formatter, ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, manifestDir)

	var validationErrors []manifest.ValidationError
	for _, err := range loadErrors {
		validationErrors = append(validationErrors, loadErrorToValidation(err))
	}
	validationErrors = append(validationErrors, manifest.Validate(loadResult.Registrations)...)

	// Never touch the catalog with a dirty batch.
	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	if opts.DryRun {
		return outputApplySuccess(formatter, ApplyResult{
			Applied:       0,
			DryRun:        true,
			Registrations: loadResult.Registrations,
		}, opts.Database)
	}

	st, err := catalog.Open(opts.Database)
	if err != nil {
		return outputApplyError(formatter, ErrCodeStoreError, fmt.Sprintf("failed to open catalog: %v", err))
	}
	defer st.Close()

	ids, err := st.InsertBatch(ctx, loadResult.Registrations)
	if err != nil {
		var cfgErr *trigger.ConfigError
		if errors.As(err, &cfgErr) {
			// Catalog rejected the batch (duplicate name, bad stored
			// state); the transaction already rolled back.
			_ = formatter.Error(string(cfgErr.Code), cfgErr.Message, cfgErr.Registration)
			return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", cfgErr.Code, cfgErr.Message))
		}
		return outputApplyError(formatter, ErrCodeStoreError, fmt.Sprintf("failed to apply registrations: %v", err))
	}

	return outputApplySuccess(formatter, ApplyResult{
		Applied:       len(ids),
		IDs:           ids,
		Registrations: loadResult.Registrations,
	}, opts.Database)
}

// outputApplySuccess outputs a successful (or dry-run) apply.
func outputApplySuccess(formatter *OutputFormatter, result ApplyResult, database string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if result.DryRun {
		fmt.Fprintf(formatter.Writer, "%s %d registration(s) valid (dry run, nothing written)\n\n",
			markOK("✓"), len(result.Registrations))
	} else {
		fmt.Fprintf(formatter.Writer, "%s Applied %d registration(s) to %s\n\n",
			markOK("✓"), result.Applied, database)
	}

	for i, reg := range result.Registrations {
		line := fmt.Sprintf("%s/%s → %s", reg.Event, reg.Name, reg.CallbackID)
		if result.DryRun {
			fmt.Fprintf(formatter.Writer, "  %s\n", line)
		} else {
			fmt.Fprintf(formatter.Writer, "  [%d] %s\n", result.IDs[i], line)
		}
	}

	return nil
}

// outputApplyError outputs a command-level apply error.
func outputApplyError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
