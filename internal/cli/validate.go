package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heeddb/heed/internal/manifest"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Errors []manifest.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest-dir>",
		Short: "Validate registration manifests without applying",
		Long: `Validate CUE registration manifests without touching a catalog.

Compiles every registration, resolves events, timings, enabled states
and tags against the canonical tables, and reports every problem
found rather than stopping at the first.

Exit codes:
  0 - Manifests valid
  1 - Validation errors found
  2 - Command error (directory missing, no CUE files, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, manifestDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs stay off the JSON stream
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadManifests(manifestDir, LoadModeCollectAll)

	// Structural load failures (missing directory, no files, broken
	// CUE) are command errors, not validation results.
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, manifestDir)

	var validationErrors []manifest.ValidationError
	for _, err := range loadErrors {
		validationErrors = append(validationErrors, loadErrorToValidation(err))
	}
	validationErrors = append(validationErrors, manifest.Validate(loadResult.Registrations)...)

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter, len(loadResult.Registrations))
}

// loadErrorToValidation converts a per-registration load error into a
// validation error, folding the CUE position into the message.
func loadErrorToValidation(err error) manifest.ValidationError {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		return manifest.ValidationError{
			Field:   "load",
			Message: err.Error(),
			Code:    ErrCodeGeneric,
		}
	}

	msg := loadErr.Message
	if loadErr.Pos.IsValid() {
		msg = fmt.Sprintf("%s:%d:%d: %s", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column(), loadErr.Message)
	}
	return manifest.ValidationError{
		Field:   "load",
		Message: msg,
		Code:    loadErr.Code,
	}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, count int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}

	fmt.Fprintf(formatter.Writer, "%s %d registration(s) valid\n", markOK("✓"), count)
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs the collected validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []manifest.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintf(formatter.Writer, "%s Validation failed\n\n", markFail("✗"))
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  [%s] %s: %s\n", err.Code, err.Field, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
