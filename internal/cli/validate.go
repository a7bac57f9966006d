package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/archgen/internal/design"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool         `json:"valid"`
	Name       string       `json:"name,omitempty"`
	DesignHash string       `json:"design_hash,omitempty"`
	Stats      design.Stats `json:"stats"`
	Errors     []CLIError   `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <design-dir>",
		Short: "Validate a design without enumerating it",
		Long: `Validate a CUE design directory without enumerating configurations.

Compiles every declaration, resolves every constraint to its legal value
pairs, and reports parameter, sweep, and constraint counts. All errors are
reported, not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, designDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.Logger(cmd.ErrOrStderr())

	loadResult, loadErrors := LoadDesign(designDir, LoadModeCollectAll, logger)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		e := toCLIError(loadErrors[0])
		_ = formatter.Error(e.Code, e.Message, e.Details)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", e.Code, e.Message))
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, designDir)

	var errs []CLIError
	for _, err := range loadErrors {
		errs = append(errs, toCLIError(err))
	}
	if loadResult.Session != nil {
		if err := loadResult.Session.Validate(); err != nil {
			for _, e := range flattenErrors(err) {
				errs = append(errs, CLIError{Code: ErrCodeIncomplete, Message: e.Error()})
			}
		}
	}

	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	s := loadResult.Session
	hash, err := s.Hash()
	if err != nil {
		return WrapExitError(ExitFailure, "hashing design", err)
	}
	result := ValidationResult{
		Valid:      true,
		Name:       s.Name(),
		DesignHash: hash,
		Stats:      s.Stats(),
	}
	return outputValidateSuccess(formatter, result)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Design %s valid\n\n", result.Name)
	fmt.Fprintf(formatter.Writer, "  parameters:  %d\n", result.Stats.Parameters)
	fmt.Fprintf(formatter.Writer, "  sweeps:      %d\n", result.Stats.Sweeps)
	fmt.Fprintf(formatter.Writer, "  constraints: %d\n", result.Stats.Constraints)
	fmt.Fprintf(formatter.Writer, "  naive space: %d\n", result.Stats.NaiveSpace)
	formatter.VerboseLog("design hash %s", result.DesignHash)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []CLIError) error {
	if formatter.Format == "json" {
		if err := formatter.Errors("Validation failed", errs); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		fmt.Fprintln(formatter.Writer)
		for _, e := range errs {
			if d, ok := e.Details.(map[string]any); ok {
				fmt.Fprintf(formatter.Writer, "%v:%v:%v\n", d["file"], d["line"], d["column"])
			}
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", e.Code, e.Message)
		}
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
