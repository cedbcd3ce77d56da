package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/ecvalue/internal/accessor"
)

// LocationResult is one location of a resolved accessor.
type LocationResult struct {
	Class         string `json:"class"`
	PropertyIndex uint32 `json:"propertyIndex"`
	Property      string `json:"property"`
	ArrayIndex    int32  `json:"arrayIndex"`
}

// ResolveResult is the accessor an access string resolved to.
type ResolveResult struct {
	AccessString string           `json:"accessString"`
	Locations    []LocationResult `json:"locations"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	var cacheSize int

	cmd := &cobra.Command{
		Use:   "resolve <schema-file> <class> <access-string>...",
		Short: "Resolve access strings to value accessor locations",
		Long: `Resolve one or more access strings against a class and print the
locations of each resulting value accessor.

Access strings name properties ("Width"), embedded struct members
("Size.Height"), array elements ("Items[2]") and members of struct array
elements ("Items[2].Name").`,
		Args:          cobra.MinimumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, args[0], args[1], args[2:], cacheSize, cmd)
		},
	}

	cmd.Flags().IntVar(&cacheSize, "cache-size", accessor.DefaultResolverSize, "number of resolved access strings to cache")
	return cmd
}

func runResolve(opts *RootOptions, schemaPath, className string, accessStrings []string, cacheSize int, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	enablers, err := LoadEnablers(schemaPath)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeLoadFailed, err)
	}
	root, err := enablers.Enabler(className)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeGeneric, err)
	}
	resolver, err := accessor.NewResolver(cacheSize)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeBadArgument, err)
	}

	results := make([]ResolveResult, 0, len(accessStrings))
	for _, s := range accessStrings {
		a, err := resolver.Resolve(root, s)
		if err != nil {
			return failWith(formatter, ExitFailure, ErrCodeGeneric, fmt.Errorf("resolving %q: %w", s, err))
		}
		formatter.VerboseLog("Resolved %q to %s", s, a)
		results = append(results, describeAccessor(a))
	}
	formatter.VerboseLog("Resolver holds %d accessor(s)", resolver.Len())

	if formatter.Format == "json" {
		return formatter.Success(results)
	}
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(formatter.Writer)
		}
		fmt.Fprintln(formatter.Writer, formatter.colorize(r.AccessString, color.FgCyan))
		rows := make([][]string, 0, len(r.Locations))
		for depth, loc := range r.Locations {
			rows = append(rows, []string{
				strconv.Itoa(depth),
				loc.Class,
				strconv.FormatUint(uint64(loc.PropertyIndex), 10),
				loc.Property,
				strconv.FormatInt(int64(loc.ArrayIndex), 10),
			})
		}
		if err := formatter.Table([]string{"Depth", "Class", "Index", "Property", "Array Index"}, rows); err != nil {
			return err
		}
	}
	return nil
}

func describeAccessor(a *accessor.ValueAccessor) ResolveResult {
	r := ResolveResult{AccessString: a.AccessString(), Locations: make([]LocationResult, 0, a.Depth())}
	for i := range a.Depth() {
		loc := a.Location(i)
		r.Locations = append(r.Locations, LocationResult{
			Class:         loc.Enabler.ClassName(),
			PropertyIndex: loc.PropertyIndex,
			Property:      loc.AccessString(),
			ArrayIndex:    loc.ArrayIndex,
		})
	}
	return r
}
