package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/ecvalue/internal/accessor"
	"github.com/roach88/ecvalue/internal/instance"
	"github.com/roach88/ecvalue/internal/status"
	"github.com/roach88/ecvalue/internal/value"
)

// DumpNode is one value of a dumped instance, in pre-order.
type DumpNode struct {
	AccessString string  `json:"accessString"`
	Depth        int     `json:"depth"`
	Kind         string  `json:"kind"`
	Type         string  `json:"type,omitempty"`
	Value        *string `json:"value"`
	ReadOnly     bool    `json:"readOnly,omitempty"`
}

// DumpResult is a dumped instance.
type DumpResult struct {
	Class  string     `json:"class"`
	ID     string     `json:"id"`
	Values []DumpNode `json:"values"`
}

type dumpOptions struct {
	arrays []string
	adHocs []string
	sets   []string
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &dumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump <schema-file> <class>",
		Short: "Build an in-memory instance and print its values",
		Long: `Create an instance of a class, apply edits and print every value
reachable from it.

Edits are applied in this order: --array, --adhoc, --set.

  --array Items=3                     append 3 elements to Items
  --array Items[0].Parts=2            append to an array of a struct element
  --adhoc Extras:Torque:double=12.5   add an ad-hoc property to Extras
  --set Items[1].Name=bolt            parse the literal as the target's type
  --set Torque=13                     ad-hoc properties are found by name
  --set Width='<null>'                set a value to null`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(rootOpts, opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.arrays, "array", nil, "append elements: ACCESS=COUNT (repeatable)")
	cmd.Flags().StringArrayVar(&opts.adHocs, "adhoc", nil, "add an ad-hoc property: CONTAINER:NAME[:TYPE]=LITERAL (repeatable)")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "set a value: ACCESS=LITERAL (repeatable)")
	return cmd
}

func runDump(opts *RootOptions, dopts *dumpOptions, schemaPath, className string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	enablers, err := LoadEnablers(schemaPath)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeLoadFailed, err)
	}
	enabler, err := enablers.Enabler(className)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeGeneric, err)
	}

	inst := instance.New(enabler,
		instance.WithLogger(opts.Logger),
		instance.WithIDGenerator(instance.NewSequenceGenerator(enabler.ClassName())),
	)
	defer inst.Release()

	for _, spec := range dopts.arrays {
		if err := applyArray(inst, spec); err != nil {
			return failEdit(formatter, "--array", spec, err)
		}
		formatter.VerboseLog("Applied --array %s", spec)
	}
	for _, spec := range dopts.adHocs {
		if err := applyAdHoc(inst, spec); err != nil {
			return failEdit(formatter, "--adhoc", spec, err)
		}
		formatter.VerboseLog("Applied --adhoc %s", spec)
	}
	for _, spec := range dopts.sets {
		if err := applySet(inst, spec); err != nil {
			return failEdit(formatter, "--set", spec, err)
		}
		formatter.VerboseLog("Applied --set %s", spec)
	}

	result := DumpResult{Class: inst.ClassName(), ID: inst.InstanceID()}
	err = accessor.Walk(inst, func(pv *accessor.PropertyValue) error {
		v, err := pv.Value()
		if err != nil {
			return fmt.Errorf("reading %s: %w", pv.Accessor().AccessString(), err)
		}
		result.Values = append(result.Values, dumpNode(pv.Accessor(), v))
		return nil
	})
	if err != nil {
		return failWith(formatter, ExitFailure, ErrCodeGeneric, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "%s %s\n", formatter.colorize(result.Class, color.Bold), result.ID)
	for _, n := range result.Values {
		text := formatter.colorize(value.NullString, color.Faint)
		if n.Value != nil {
			text = *n.Value
		}
		fmt.Fprintf(formatter.Writer, "%s%s = %s\n", strings.Repeat("  ", n.Depth), n.AccessString, text)
	}
	return nil
}

func dumpNode(a *accessor.ValueAccessor, v *value.Value) DumpNode {
	n := DumpNode{
		AccessString: a.AccessString(),
		Depth:        a.Depth() - 1,
		Kind:         v.Kind().String(),
		ReadOnly:     v.IsReadOnly(),
	}
	if t := v.PrimitiveType(); t != value.PrimitiveTypeNone {
		n.Type = t.String()
	}
	if !v.IsNull() {
		s := v.String()
		n.Value = &s
	}
	return n
}

func failEdit(f *OutputFormatter, flag, spec string, err error) error {
	exit := ExitFailure
	if status.CodeOf(err) == "" {
		exit = ExitCommandError
	}
	return failWith(f, exit, ErrCodeBadArgument, fmt.Errorf("%s %s: %w", flag, spec, err))
}

func splitAssignment(spec string) (string, string, error) {
	key, literal, ok := strings.Cut(spec, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("expected KEY=VALUE")
	}
	return key, literal, nil
}

// applyArray appends elements to the array addressed by ACCESS. The access
// string may pass through struct-array elements.
func applyArray(inst *instance.MemoryInstance, spec string) error {
	path, countText, err := splitAssignment(spec)
	if err != nil {
		return err
	}
	count, err := strconv.ParseUint(countText, 10, 32)
	if err != nil {
		return fmt.Errorf("element count %q: %v", countText, err)
	}

	a := accessor.New()
	if err := a.PopulateValueAccessor(inst.Enabler(), path); err != nil {
		return err
	}
	last := a.LastLocation()
	if last.ArrayIndex != accessor.NoArrayIndex {
		return status.New(status.ErrCodeDataTypeMismatch, "%s addresses an element, not an array", path)
	}

	var owner accessor.Instance = inst
	if a.Depth() > 1 {
		parent := a.Clone()
		parent.PopLocation()
		v := value.New()
		defer v.Clear()
		if err := accessor.GetValueUsingAccessor(inst, v, parent); err != nil {
			return err
		}
		if v.IsNull() {
			return status.New(status.ErrCodeInvalidAccessor, "%s is null", parent.AccessString())
		}
		element, ok := v.Struct().(accessor.Instance)
		if !ok {
			return status.New(status.ErrCodeDataTypeMismatch, "%s does not expose its properties", parent.AccessString())
		}
		owner = element
	}
	return owner.AddArrayElements(last.PropertyIndex, uint32(count))
}

// applyAdHoc adds an ad-hoc property: CONTAINER:NAME[:TYPE]=LITERAL.
func applyAdHoc(inst *instance.MemoryInstance, spec string) error {
	key, literal, err := splitAssignment(spec)
	if err != nil {
		return err
	}
	parts := strings.Split(key, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("expected CONTAINER:NAME[:TYPE]=LITERAL")
	}

	t := value.PrimitiveTypeString
	if len(parts) == 3 {
		if t, err = value.ParsePrimitiveType(parts[2]); err != nil {
			return err
		}
	}
	v, err := value.ParseValue(literal, t)
	if err != nil {
		return err
	}

	props, err := instance.NewAdHocProperties(inst, parts[0])
	if err != nil {
		return err
	}
	return props.Add(parts[1], v, instance.AdHocOptions{})
}

// applySet parses LITERAL as the type of the value at ACCESS and stores it.
func applySet(inst *instance.MemoryInstance, spec string) error {
	path, literal, err := splitAssignment(spec)
	if err != nil {
		return err
	}

	a := accessor.New()
	if err := a.PopulateValueAccessorForInstance(inst, path, true); err != nil {
		return err
	}
	current := value.New()
	defer current.Clear()
	if err := accessor.GetValueUsingAccessor(inst, current, a); err != nil {
		return err
	}
	if !current.IsPrimitive() {
		return status.New(status.ErrCodeDataTypeMismatch, "%s holds a %s value; only primitives can be set", path, current.Kind())
	}

	t := current.PrimitiveType()
	var v *value.Value
	if literal == value.NullString {
		v = value.NewOfType(t)
	} else if v, err = value.ParseValue(literal, t); err != nil {
		return err
	}
	return accessor.SetValueUsingAccessor(inst, a, v)
}
