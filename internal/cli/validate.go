package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/arpp/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Path   string                   `json:"path"`
	Valid  bool                     `json:"valid"`
	Config *config.Config           `json:"config,omitempty"`
	Errors []config.ValidationError `json:"errors,omitempty"`
}

// String renders the result for text output.
func (r ValidationResult) String() string {
	if r.Valid {
		return fmt.Sprintf("%s is valid (measure %s)", r.Path, r.Config.Measure)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s has %d error(s):", r.Path, len(r.Errors))
	for _, e := range r.Errors {
		b.WriteString("\n  " + e.Error())
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Validate a config file without classifying",
		Long: `Validate an arpp config file against the config schema.

Checks field types and ranges, custom measure kinds and that the selected
measure is registered. ARPP_* environment variables are applied before
validation, the same way classify applies them.

Exit codes:
  0 - Config is valid
  1 - Config failed to decode or validate
  2 - Config file not found`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("config file not found: %s", path), nil, err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil, err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInvalidConfig, err.Error(), nil, err)
	}
	formatter.VerboseLog("Loaded config from %s", path)

	result := ValidationResult{Path: path, Valid: true, Config: cfg}
	checkErr := cfg.Check()
	if errs, ok := config.AsValidationErrors(checkErr); ok {
		result.Valid = false
		result.Config = nil
		result.Errors = errs
	}

	if err := formatter.Success(result); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	if !result.Valid {
		exitErr := WrapExitError(ExitFailure, "config validation failed", checkErr)
		exitErr.Reported = true
		return exitErr
	}
	return nil
}
