package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ecvalue/internal/value"
)

// TypedValue is a primitive value with its type name.
type TypedValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ConvertResult holds a parsed value and its conversion.
type ConvertResult struct {
	From TypedValue `json:"from"`
	To   TypedValue `json:"to"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "convert <type> <literal> --to <type>",
		Short: "Parse a primitive value and convert it to another type",
		Long: `Parse a literal as a primitive type and convert it to another one.

Types: int, long, double, boolean, point2d, point3d, dateTime, string.
Points are written "x,y" or "x,y,z"; date-times "2024-01-02T03:04:05Z"
(UTC), "2024-01-02T03:04:05" (unspecified), "2024-01-02" (date only)
or "2024-01-02Z" (UTC date).`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(rootOpts, args[0], args[1], to, cmd)
		},
	}

	cmd.Flags().StringVar(&to, "to", "string", "target type")
	return cmd
}

func runConvert(opts *RootOptions, fromType, literal, toType string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	from, err := value.ParsePrimitiveType(fromType)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeBadArgument, err)
	}
	target, err := value.ParsePrimitiveType(toType)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeBadArgument, err)
	}

	v, err := value.ParseValue(literal, from)
	if err != nil {
		return failWith(formatter, ExitFailure, ErrCodeGeneric, err)
	}
	result := ConvertResult{From: TypedValue{Type: from.String(), Value: v.String()}}

	if err := v.ConvertToPrimitiveType(target); err != nil {
		return failWith(formatter, ExitFailure, ErrCodeGeneric, err)
	}
	result.To = TypedValue{Type: target.String(), Value: v.String()}
	formatter.VerboseLog("Converted %s to %s", from, target)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "%s (%s) -> %s (%s)\n", result.From.Value, result.From.Type, result.To.Value, result.To.Type)
	return nil
}
