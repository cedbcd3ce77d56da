package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/ecvalue/internal/accessor"
)

// RemapResult pairs an access string of the old schema with its remapped
// accessor.
type RemapResult struct {
	From ResolveResult `json:"from"`
	To   ResolveResult `json:"to"`
}

// NewRemapCommand creates the remap command.
func NewRemapCommand(rootOpts *RootOptions) *cobra.Command {
	var mapPath string

	cmd := &cobra.Command{
		Use:   "remap <old-schema> <new-schema> <class> <access-string>... --map <remap.yaml>",
		Short: "Move value accessors from one schema version to another",
		Long: `Resolve access strings against a class of the old schema, then rebuild
each accessor against the new schema using a remap table of class and
property renames. <class> is the class name in the old schema.`,
		Args:          cobra.MinimumNArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemap(rootOpts, args[0], args[1], args[2], args[3:], mapPath, cmd)
		},
	}

	cmd.Flags().StringVar(&mapPath, "map", "", "YAML remap table (required)")
	_ = cmd.MarkFlagRequired("map")
	return cmd
}

func runRemap(opts *RootOptions, oldPath, newPath, className string, accessStrings []string, mapPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	oldEnablers, err := LoadEnablers(oldPath)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeLoadFailed, err)
	}
	newEnablers, err := LoadEnablers(newPath)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeLoadFailed, err)
	}
	table, err := LoadRemap(mapPath)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeLoadFailed, err)
	}

	oldRoot, err := oldEnablers.Enabler(className)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeGeneric, err)
	}
	newRoot, err := newEnablers.Enabler(table.ResolveClassName(className))
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeGeneric, err)
	}

	results := make([]RemapResult, 0, len(accessStrings))
	for _, s := range accessStrings {
		a := accessor.New()
		if err := a.PopulateValueAccessor(oldRoot, s); err != nil {
			return failWith(formatter, ExitFailure, ErrCodeGeneric, fmt.Errorf("resolving %q: %w", s, err))
		}
		remapped, err := accessor.RemapValueAccessor(a, newRoot, table)
		if err != nil {
			return failWith(formatter, ExitFailure, ErrCodeGeneric, fmt.Errorf("remapping %q: %w", s, err))
		}
		formatter.VerboseLog("Remapped %s to %s", a, remapped)
		results = append(results, RemapResult{From: describeAccessor(a), To: describeAccessor(remapped)})
	}

	if formatter.Format == "json" {
		return formatter.Success(results)
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.From.AccessString, r.To.AccessString})
	}
	fmt.Fprintf(formatter.Writer, "%s %s -> %s\n",
		formatter.colorize("Remap", color.Bold), oldRoot.ClassName(), newRoot.ClassName())
	return formatter.Table([]string{"Old", "New"}, rows)
}
