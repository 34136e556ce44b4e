package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/datediff/internal/model"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                    `json:"valid"`
	Files     int                     `json:"files,omitempty"`
	Tables    []TableSummary          `json:"tables,omitempty"`
	Functions []FunctionSummary       `json:"functions,omitempty"`
	Errors    []model.ValidationError `json:"errors,omitempty"`
}

// TableSummary describes one table of a loaded model.
type TableSummary struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"` // "name type", "?" suffix when nullable
}

// FunctionSummary describes one function of a loaded model.
type FunctionSummary struct {
	Name      string `json:"name"`
	Signature string `json:"signature"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <model>",
		Short: "Validate a CUE model and list its tables and functions",
		Long: `Load a CUE model file, or every .cue file under a directory, register
DateDiff on it and check the declarations.

Example:
  datediff validate ./model.cue
  datediff validate ./models --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, err := LoadModel(path)
	if err != nil {
		code, items := modelErrors(err)
		if code != ErrCodeBuildFailed {
			return outputValidateError(formatter, code, items[0].Error(), nil)
		}
		verrs := make([]model.ValidationError, len(items))
		for i, e := range items {
			verrs[i] = e.(model.ValidationError)
		}
		return outputValidationErrors(formatter, verrs)
	}

	formatter.VerboseLog("Loaded %d CUE file(s) from %s", loaded.FileCount, path)
	return outputValidateSuccess(formatter, summarize(loaded))
}

// summarize lists a model's tables and functions in name order.
func summarize(loaded *LoadedModel) ValidationResult {
	result := ValidationResult{Valid: true, Files: loaded.FileCount}
	for _, t := range loaded.Model.Tables() {
		ts := TableSummary{Name: t.Name, Columns: make([]string, len(t.Columns))}
		for i, c := range t.Columns {
			ts.Columns[i] = columnString(c)
		}
		result.Tables = append(result.Tables, ts)
	}
	for _, f := range loaded.Model.Functions() {
		params := make([]string, len(f.Params))
		for i, p := range f.Params {
			params[i] = string(p)
		}
		result.Functions = append(result.Functions, FunctionSummary{
			Name:      f.Name,
			Signature: fmt.Sprintf("%s(%s) %s", f.Name, strings.Join(params, ", "), f.Result),
		})
	}
	return result
}

func columnString(c model.Column) string {
	s := c.Name + " " + string(c.Type)
	if c.Nullable {
		s += "?"
	}
	return s
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✓ Model valid")
	for _, t := range result.Tables {
		fmt.Fprintf(w, "table %s\n", t.Name)
		for _, c := range t.Columns {
			fmt.Fprintf(w, "  %s\n", c)
		}
	}
	for _, f := range result.Functions {
		fmt.Fprintf(w, "function %s\n", f.Signature)
	}
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Unloadable models are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []model.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    ErrCodeBuildFailed,
				Message: errs[0].Error(),
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
