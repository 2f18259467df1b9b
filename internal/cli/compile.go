package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heeddb/heed/internal/manifest"
	"github.com/heeddb/heed/internal/trigger"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledManifest holds the fully resolved registrations.
type CompiledManifest struct {
	Registrations []trigger.Registration `json:"registrations"`
}

// CompilationStats holds summary statistics.
type CompilationStats struct {
	RegistrationCount int
	EventCount        int
	WildcardCount     int
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <manifest-dir>",
		Short: "Compile CUE manifests to resolved registrations",
		Long: `Compile CUE registration manifests to their resolved form.

Events, timings, enabled states and tags are parsed against the
canonical tables and defaults are filled in, so the output shows
exactly what apply would write to a catalog.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, manifestDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadManifests(manifestDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputCompileError(formatter, ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, manifestDir)

	for _, reg := range loadResult.Registrations {
		formatter.VerboseLog("Compiled registration: %s (%s)", reg.Name, reg.Event)
	}

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result := &CompiledManifest{Registrations: loadResult.Registrations}
	stats := compileStats(result)

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writeCompiledManifest(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, stats, opts.Output)
}

// compileStats computes summary statistics from a compiled manifest.
func compileStats(result *CompiledManifest) CompilationStats {
	stats := CompilationStats{
		RegistrationCount: len(result.Registrations),
	}

	seen := make(map[trigger.Event]bool)
	for _, reg := range result.Registrations {
		seen[reg.Event] = true
		if len(reg.Tags) == 0 {
			stats.WildcardCount++
		}
	}
	stats.EventCount = len(seen)

	return stats
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompiledManifest, stats CompilationStats, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	// Human-readable text output, grouped by event in firing order
	fmt.Fprintf(formatter.Writer, "%s Compiled %d registration(s) across %d event(s)\n\n",
		markOK("✓"), stats.RegistrationCount, stats.EventCount)

	for _, event := range trigger.Events() {
		var regs []trigger.Registration
		for _, reg := range result.Registrations {
			if reg.Event == event {
				regs = append(regs, reg)
			}
		}
		if len(regs) == 0 {
			continue
		}

		fmt.Fprintf(formatter.Writer, "%s\n", heading(event.String()))
		for _, reg := range regs {
			tags := "any command"
			if len(reg.Tags) > 0 {
				tags = strings.Join(reg.Tags, ", ")
			}
			fmt.Fprintf(formatter.Writer, "  %s: %s, %s → %s [%s]\n",
				reg.Name, reg.Timing, reg.Enabled, reg.CallbackID, tags)
		}
		fmt.Fprintln(formatter.Writer)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote compiled manifest to %s\n", outputFile)
	}

	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		// JSON format - use CLIResponse with first error
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{
				Code:    code,
				Message: message,
			}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Compilation errors are command-level errors (exit code 2)
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintf(formatter.Writer, "%s Compilation failed\n\n", markFail("✗"))

	for _, err := range errs {
		code, message := parseCompileError(err)
		var compileErr *manifest.CompileError
		if errors.As(err, &compileErr) && compileErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				compileErr.Pos.Filename(),
				compileErr.Pos.Line(),
				compileErr.Pos.Column())
		}
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var compileErr *manifest.CompileError
	if errors.As(err, &compileErr) {
		code := MapFieldToErrorCode(compileErr.Field)
		return code, compileErr.Message
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeCompiledManifest writes the compiled registrations to a file.
func writeCompiledManifest(result *CompiledManifest, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling registrations: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
