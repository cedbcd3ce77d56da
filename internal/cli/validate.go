package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/ecvalue/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Schema  string                   `json:"schema,omitempty"`
	Valid   bool                     `json:"valid"`
	Classes int                      `json:"classes"`
	Errors  []schema.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema-file>",
		Short: "Validate a class schema",
		Long: `Load a CUE or YAML class schema and check it.

Every problem is reported (names, primitive types, struct references,
occurs bounds, ad-hoc markers, embedded struct cycles), not just the first.`,
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
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := LoadSchema(path)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeLoadFailed, err)
	}
	formatter.VerboseLog("Loaded schema %q with %d class(es) from %s", s.Name, len(s.Classes), path)

	result := ValidationResult{
		Schema:  s.Name,
		Classes: len(s.Classes),
		Errors:  schema.Validate(s),
	}
	result.Valid = len(result.Errors) == 0

	if result.Valid {
		if formatter.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "%s Schema %s valid (%d classes)\n",
			formatter.colorize("✓", color.FgGreen), s.Name, len(s.Classes))
		return nil
	}

	if formatter.Format == "json" {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    result.Errors[0].Code,
				Message: result.Errors[0].Message,
			},
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "%s Validation failed\n\n", formatter.colorize("✗", color.FgRed))
		rows := make([][]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			rows = append(rows, []string{e.Code, e.Field, e.Message})
		}
		if err := formatter.Table([]string{"Code", "Field", "Message"}, rows); err != nil {
			return err
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}
