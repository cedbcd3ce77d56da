package schema

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// LoadCUE reads a CUE schema file.
func LoadCUE(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	ctx := cuecontext.New()
	return CompileCUE(ctx.CompileBytes(data, cue.Filename(path)))
}

// CompileCUE parses a CUE value into a Schema.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// Classes and properties are structs keyed by name; CUE keeps their
// declaration order, which becomes the enabler layout order:
//
//	schema: "Widgets"
//	relationship: WidgetOwner: id: 7
//	class: Widget: property: {
//		Label: type: "string"
//		Items: {struct: "Item", array: true}
//	}
func CompileCUE(v cue.Value) (*Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	var doc schemaDoc
	var err error
	if doc.Name, _, err = lookupString(v, "schema"); err != nil {
		return nil, err
	}

	relVal := v.LookupPath(cue.ParsePath("relationship"))
	if relVal.Exists() {
		iter, err := relVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			id, _, err := lookupUint(iter.Value(), "id")
			if err != nil {
				return nil, err
			}
			doc.Relationships = append(doc.Relationships, relationshipDoc{Name: iter.Label(), ID: id})
		}
	}

	classVal := v.LookupPath(cue.ParsePath("class"))
	if !classVal.Exists() {
		return nil, &CompileError{Field: "class", Message: "at least one class is required", Pos: v.Pos()}
	}
	iter, err := classVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		cd, err := parseClass(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		doc.Classes = append(doc.Classes, cd)
	}

	return doc.build(), nil
}

func parseClass(name string, v cue.Value) (classDoc, error) {
	cd := classDoc{Name: name}
	var err error
	if cd.Struct, _, err = lookupBool(v, "struct"); err != nil {
		return cd, err
	}

	adhocVal := v.LookupPath(cue.ParsePath("adhoc"))
	if adhocVal.Exists() {
		cd.AdHoc = &adHocDoc{}
		for field, dst := range map[string]*string{
			"name":         &cd.AdHoc.Name,
			"value":        &cd.AdHoc.Value,
			"type":         &cd.AdHoc.Type,
			"unit":         &cd.AdHoc.Unit,
			"displayLabel": &cd.AdHoc.DisplayLabel,
			"extendedType": &cd.AdHoc.ExtendedType,
			"isReadOnly":   &cd.AdHoc.IsReadOnly,
			"isHidden":     &cd.AdHoc.IsHidden,
		} {
			if *dst, _, err = lookupString(adhocVal, field); err != nil {
				return cd, err
			}
		}
	}

	propVal := v.LookupPath(cue.ParsePath("property"))
	if !propVal.Exists() {
		return cd, nil
	}
	iter, err := propVal.Fields()
	if err != nil {
		return cd, formatCUEError(err)
	}
	for iter.Next() {
		pd, err := parseProperty(iter.Label(), iter.Value())
		if err != nil {
			return cd, err
		}
		cd.Properties = append(cd.Properties, pd)
	}
	return cd, nil
}

func parseProperty(name string, v cue.Value) (propertyDoc, error) {
	pd := propertyDoc{Name: name}
	var err error
	for field, dst := range map[string]*string{
		"type":         &pd.Type,
		"struct":       &pd.Struct,
		"navigation":   &pd.Navigation,
		"extendedType": &pd.ExtendedType,
	} {
		if *dst, _, err = lookupString(v, field); err != nil {
			return pd, err
		}
	}
	if pd.Array, _, err = lookupBool(v, "array"); err != nil {
		return pd, err
	}
	if pd.ReadOnly, _, err = lookupBool(v, "readOnly"); err != nil {
		return pd, err
	}
	minOccurs, _, err := lookupUint(v, "minOccurs")
	if err != nil {
		return pd, err
	}
	maxOccurs, _, err := lookupUint(v, "maxOccurs")
	if err != nil {
		return pd, err
	}
	if minOccurs > 1<<32-1 || maxOccurs > 1<<32-1 {
		return pd, &CompileError{Field: name, Message: "occurs bounds must fit in 32 bits", Pos: v.Pos()}
	}
	pd.MinOccurs, pd.MaxOccurs = uint32(minOccurs), uint32(maxOccurs)
	return pd, nil
}

func lookupString(v cue.Value, field string) (string, bool, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", false, nil
	}
	s, err := f.String()
	if err != nil {
		return "", true, formatCUEError(err)
	}
	return s, true, nil
}

func lookupBool(v cue.Value, field string) (bool, bool, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return false, false, nil
	}
	b, err := f.Bool()
	if err != nil {
		return false, true, formatCUEError(err)
	}
	return b, true, nil
}

func lookupUint(v cue.Value, field string) (uint64, bool, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return 0, false, nil
	}
	n, err := f.Uint64()
	if err != nil {
		return 0, true, formatCUEError(err)
	}
	return n, true, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
