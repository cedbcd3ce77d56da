package accessor

import (
	"github.com/roach88/ecvalue/internal/schema"
	"github.com/roach88/ecvalue/internal/status"
	"github.com/roach88/ecvalue/internal/value"
)

// Instance holds property values addressed by the layout indices of its
// enabler. Struct-array elements are themselves Instances, referenced from
// struct values.
//
// arrayIndex is NoArrayIndex for non-array properties; GetValue on an array
// property with NoArrayIndex yields the array descriptor.
type Instance interface {
	value.StructInstance

	Enabler() schema.Enabler
	GetValue(v *value.Value, propertyIndex uint32, arrayIndex int32) error
	SetValue(propertyIndex uint32, v *value.Value, arrayIndex int32) error
	AddArrayElements(propertyIndex uint32, count uint32) error
	RemoveArrayElement(propertyIndex uint32, index uint32) error
	ClearArray(propertyIndex uint32) error
}

// GetValueUsingAccessor reads the value addressed by a into v.
//
// Locations whose enabler is not the enabler of the instance they are applied
// to are re-resolved by access string, so accessors built from one schema
// enabler work on instances of an equivalent one. Ad-hoc accessors yield the
// entry's stored value converted to the entry's declared type.
func GetValueUsingAccessor(inst Instance, v *value.Value, a *ValueAccessor) error {
	target, loc, err := walk(inst, a)
	if err != nil {
		return err
	}
	if !a.isAdHoc {
		return target.GetValue(v, loc.PropertyIndex, loc.ArrayIndex)
	}

	entry, spec, err := adHocEntry(target, loc)
	if err != nil {
		return err
	}
	stored, err := readMember(entry, spec.Value)
	if err != nil {
		return err
	}
	if spec.Type != "" {
		typeName, err := readMember(entry, spec.Type)
		if err != nil {
			return err
		}
		if !typeName.IsNull() && typeName.UTF8() != "" {
			t, err := value.ParsePrimitiveType(typeName.UTF8())
			if err != nil {
				return status.New(status.ErrCodeDataTypeMismatch, "ad-hoc entry declares %s", err.Error())
			}
			if err := stored.ConvertToPrimitiveType(t); err != nil {
				return err
			}
		}
	}
	v.CopyFrom(stored)
	return nil
}

// SetValueUsingAccessor writes v to the value addressed by a. Ad-hoc entries
// store v rendered as a string and refuse writes when marked read-only.
func SetValueUsingAccessor(inst Instance, a *ValueAccessor, v *value.Value) error {
	target, loc, err := walk(inst, a)
	if err != nil {
		return err
	}
	if !a.isAdHoc {
		return target.SetValue(loc.PropertyIndex, v, loc.ArrayIndex)
	}

	entry, spec, err := adHocEntry(target, loc)
	if err != nil {
		return err
	}
	if spec.IsReadOnly != "" {
		ro, err := readMember(entry, spec.IsReadOnly)
		if err != nil {
			return err
		}
		if !ro.IsNull() && ro.Boolean() {
			return status.New(status.ErrCodeReadOnly, "ad-hoc property is read-only")
		}
	}
	text := v.Copy()
	if err := text.ConvertToPrimitiveType(value.PrimitiveTypeString); err != nil {
		return err
	}
	idx, err := entry.Enabler().PropertyIndex(spec.Value)
	if err != nil {
		return err
	}
	return entry.SetValue(idx, text, NoArrayIndex)
}

// walk follows every location but the last through struct-array elements and
// returns the instance holding the leaf together with the leaf location,
// re-resolved against that instance's enabler.
func walk(inst Instance, a *ValueAccessor) (Instance, Location, error) {
	if a.Depth() == 0 {
		return nil, Location{}, status.New(status.ErrCodeInvalidAccessor, "accessor has no locations")
	}

	cur := inst
	for i := 0; ; i++ {
		loc, err := rebind(cur, a.locations[i])
		if err != nil {
			return nil, Location{}, err
		}
		if i == a.Depth()-1 {
			return cur, loc, nil
		}
		if loc.ArrayIndex == NoArrayIndex {
			return nil, Location{}, status.New(status.ErrCodeInvalidAccessor,
				"location %d of %s does not address an array element", i, a.AccessString())
		}
		next, err := elementInstance(cur, loc.PropertyIndex, loc.ArrayIndex)
		if err != nil {
			return nil, Location{}, err
		}
		if next == nil {
			return nil, Location{}, status.New(status.ErrCodeInvalidAccessor,
				"element %s[%d] is null", loc.AccessString(), loc.ArrayIndex)
		}
		cur = next
	}
}

func rebind(inst Instance, loc Location) (Location, error) {
	enabler := inst.Enabler()
	if loc.Enabler == enabler {
		return loc, nil
	}
	if loc.Enabler == nil {
		return Location{}, status.New(status.ErrCodeInvalidAccessor, "location has no enabler")
	}
	accessString, err := loc.Enabler.AccessString(loc.PropertyIndex)
	if err != nil {
		return Location{}, err
	}
	idx, err := enabler.PropertyIndex(accessString)
	if err != nil {
		return Location{}, err
	}
	return Location{Enabler: enabler, PropertyIndex: idx, ArrayIndex: loc.ArrayIndex}, nil
}

// elementInstance returns the struct-array element at index, or nil when the
// element is null.
func elementInstance(inst Instance, propertyIndex uint32, index int32) (Instance, error) {
	var v value.Value
	if err := inst.GetValue(&v, propertyIndex, index); err != nil {
		return nil, err
	}
	defer v.Clear()
	if !v.IsStruct() {
		return nil, status.New(status.ErrCodeDataTypeMismatch, "property %d of %q is not a struct array",
			propertyIndex, inst.Enabler().ClassName())
	}
	if v.IsNull() {
		return nil, nil
	}
	element, ok := v.Struct().(Instance)
	if !ok {
		return nil, status.New(status.ErrCodeDataTypeMismatch, "struct element does not expose its properties")
	}
	return element, nil
}

func adHocEntry(container Instance, loc Location) (Instance, *schema.AdHocSpec, error) {
	spec, err := adHocSpecOf(container.Enabler(), loc.PropertyIndex)
	if err != nil {
		return nil, nil, err
	}
	if spec == nil || loc.ArrayIndex == NoArrayIndex {
		return nil, nil, status.New(status.ErrCodeInvalidAccessor, "%s is not an ad-hoc entry", loc.AccessString())
	}
	entry, err := elementInstance(container, loc.PropertyIndex, loc.ArrayIndex)
	if err != nil {
		return nil, nil, err
	}
	if entry == nil {
		return nil, nil, status.New(status.ErrCodeInvalidAccessor, "ad-hoc entry %d is null", loc.ArrayIndex)
	}
	return entry, spec, nil
}

// readMember reads a top-level member of a struct instance by name.
func readMember(inst Instance, name string) (*value.Value, error) {
	idx, err := inst.Enabler().PropertyIndex(name)
	if err != nil {
		return nil, err
	}
	v := value.New()
	if err := inst.GetValue(v, idx, NoArrayIndex); err != nil {
		return nil, err
	}
	return v, nil
}
