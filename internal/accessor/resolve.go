package accessor

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/ecvalue/internal/schema"
	"github.com/roach88/ecvalue/internal/status"
	"github.com/roach88/ecvalue/internal/value"
)

// PopulateValueAccessor replaces the contents of a with the path described
// by accessString, resolved against enabler alone.
//
// Segments without brackets are managed access strings ("Size.Height").
// "Items[2]" addresses an array element; "Items[2].Name" continues into the
// struct-array element's class. On failure a is left empty.
func (a *ValueAccessor) PopulateValueAccessor(enabler schema.Enabler, accessString string) error {
	a.Clear()
	if err := a.populate(enabler, accessString); err != nil {
		a.Clear()
		return err
	}
	return nil
}

// PopulateValueAccessorForInstance resolves accessString against the
// instance's enabler. When that fails with PropertyNotFound and
// includeAdHocs is set, the instance's ad-hoc containers are searched for an
// entry named accessString; a match yields an ad-hoc accessor addressing
// the entry's array element.
func (a *ValueAccessor) PopulateValueAccessorForInstance(inst Instance, accessString string, includeAdHocs bool) error {
	err := a.PopulateValueAccessor(inst.Enabler(), accessString)
	if err == nil || !includeAdHocs || !status.IsPropertyNotFound(err) {
		return err
	}

	containerIdx, element, found, adHocErr := findAdHocEntry(inst, accessString)
	if adHocErr != nil {
		return adHocErr
	}
	if !found {
		return err
	}
	a.PushLocation(inst.Enabler(), containerIdx, element)
	a.isAdHoc = true
	return nil
}

func (a *ValueAccessor) populate(enabler schema.Enabler, accessString string) error {
	if accessString == "" {
		return status.New(status.ErrCodeMalformedAccessString, "empty access string")
	}

	rest := accessString
	for {
		open := strings.IndexByte(rest, '[')
		if open < 0 {
			if strings.IndexByte(rest, ']') >= 0 {
				return malformed(accessString, "unmatched ']'")
			}
			return a.PushLocationByName(enabler, rest, NoArrayIndex)
		}

		name := rest[:open]
		if name == "" {
			return malformed(accessString, "array index without a property name")
		}
		closeAt := strings.IndexByte(rest[open:], ']')
		if closeAt < 0 {
			return malformed(accessString, "missing ']'")
		}
		closeAt += open
		index, err := strconv.ParseInt(rest[open+1:closeAt], 10, 32)
		if err != nil || index < 0 {
			return malformed(accessString, "array index must be a non-negative integer")
		}

		propIdx, err := enabler.PropertyIndex(name)
		if err != nil {
			return err
		}
		info := enabler.LookupProperty(propIdx)
		if !info.Property.IsArray() {
			return status.New(status.ErrCodeDataTypeMismatch, "property %q is not an array", name).
				WithDetail("access_string", accessString)
		}
		a.PushLocation(enabler, propIdx, int32(index))

		rest = rest[closeAt+1:]
		if rest == "" {
			return nil
		}
		if rest[0] != '.' || len(rest) == 1 {
			return malformed(accessString, "expected '.member' after ']'")
		}
		if info.Property.Kind != schema.PropertyKindStructArray {
			return status.New(status.ErrCodeDataTypeMismatch, "elements of %q have no members", name).
				WithDetail("access_string", accessString)
		}
		enabler, err = enabler.EnablerForStructArrayMember(info.Property.StructClass)
		if err != nil {
			return err
		}
		rest = rest[1:]
	}
}

func malformed(accessString, reason string) error {
	return status.New(status.ErrCodeMalformedAccessString, "%s in %q", reason, accessString).
		WithDetail("access_string", accessString)
}

// findAdHocEntry scans the struct arrays of inst whose element class carries
// an ad-hoc marker, in layout order, for the first entry named name.
func findAdHocEntry(inst Instance, name string) (uint32, int32, bool, error) {
	name = norm.NFC.String(name)
	enabler := inst.Enabler()
	for idx := uint32(1); idx <= enabler.PropertyCount(); idx++ {
		spec, err := adHocSpecOf(enabler, idx)
		if err != nil {
			return 0, 0, false, err
		}
		if spec == nil {
			continue
		}

		var arr value.Value
		if err := inst.GetValue(&arr, idx, NoArrayIndex); err != nil {
			return 0, 0, false, err
		}
		count := arr.ArrayInfo().Count
		for i := int32(0); i < int32(count); i++ {
			entry, err := elementInstance(inst, idx, i)
			if err != nil {
				return 0, 0, false, err
			}
			if entry == nil {
				continue
			}
			entryName, err := readMember(entry, spec.Name)
			if err != nil {
				return 0, 0, false, err
			}
			if !entryName.IsNull() && norm.NFC.String(entryName.UTF8()) == name {
				return idx, i, true, nil
			}
		}
	}
	return 0, 0, false, nil
}

// adHocSpecOf returns the ad-hoc marker of the element class of property
// idx, or nil when idx is not a struct array of an ad-hoc class.
func adHocSpecOf(enabler schema.Enabler, idx uint32) (*schema.AdHocSpec, error) {
	info := enabler.LookupProperty(idx)
	if info == nil || info.Property.Kind != schema.PropertyKindStructArray {
		return nil, nil
	}
	element, err := enabler.EnablerForStructArrayMember(info.Property.StructClass)
	if err != nil {
		return nil, err
	}
	container, ok := element.(schema.AdHocContainer)
	if !ok {
		return nil, nil
	}
	return container.AdHocSpec(), nil
}
