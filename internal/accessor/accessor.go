package accessor

import (
	"fmt"
	"strings"

	"github.com/roach88/ecvalue/internal/schema"
	"github.com/roach88/ecvalue/internal/status"
)

// NoArrayIndex marks a Location that addresses a whole property rather
// than one array element.
const NoArrayIndex int32 = -1

// Location addresses one property of the class described by Enabler, or one
// element of it when ArrayIndex is not NoArrayIndex.
type Location struct {
	Enabler       schema.Enabler
	PropertyIndex uint32
	ArrayIndex    int32
}

// AccessString returns the managed access string of the location's property.
func (l Location) AccessString() string {
	if l.Enabler == nil {
		return ""
	}
	s, err := l.Enabler.AccessString(l.PropertyIndex)
	if err != nil {
		return ""
	}
	return s
}

// ValueAccessor is a path of Locations from a root instance down to one
// value. Locations after the first address properties of struct-array
// elements reached through the previous location.
//
// A ValueAccessor is not safe for concurrent mutation.
type ValueAccessor struct {
	locations []Location
	isAdHoc   bool
}

// New returns an empty accessor.
func New() *ValueAccessor {
	return &ValueAccessor{}
}

// NewAdHoc returns an accessor addressing the ad-hoc entry at element of
// the struct array containerIndex.
func NewAdHoc(enabler schema.Enabler, containerIndex uint32, element int32) *ValueAccessor {
	a := New()
	a.PushLocation(enabler, containerIndex, element)
	a.isAdHoc = true
	return a
}

// PushLocation appends a location.
func (a *ValueAccessor) PushLocation(enabler schema.Enabler, propertyIndex uint32, arrayIndex int32) {
	a.locations = append(a.locations, Location{Enabler: enabler, PropertyIndex: propertyIndex, ArrayIndex: arrayIndex})
}

// PushLocationByName resolves accessString against enabler and appends the
// resulting location. The accessor is unchanged on failure.
func (a *ValueAccessor) PushLocationByName(enabler schema.Enabler, accessString string, arrayIndex int32) error {
	idx, err := enabler.PropertyIndex(accessString)
	if err != nil {
		return err
	}
	a.PushLocation(enabler, idx, arrayIndex)
	return nil
}

// PopLocation removes the last location. It is a no-op on an empty accessor.
func (a *ValueAccessor) PopLocation() {
	if len(a.locations) > 0 {
		a.locations = a.locations[:len(a.locations)-1]
	}
}

// Clear removes every location and the ad-hoc mark.
func (a *ValueAccessor) Clear() {
	a.locations = a.locations[:0]
	a.isAdHoc = false
}

func (a *ValueAccessor) Depth() int { return len(a.locations) }

// Location returns the i-th location, root first.
func (a *ValueAccessor) Location(i int) Location { return a.locations[i] }

// LastLocation returns the leaf location. It panics on an empty accessor.
func (a *ValueAccessor) LastLocation() Location { return a.locations[len(a.locations)-1] }

func (a *ValueAccessor) last() *Location { return &a.locations[len(a.locations)-1] }

// IsAdHoc reports whether the accessor addresses an ad-hoc property entry
// rather than a declared property.
func (a *ValueAccessor) IsAdHoc() bool { return a.isAdHoc }

// Equals reports whether both accessors have the same locations.
func (a *ValueAccessor) Equals(o *ValueAccessor) bool {
	if len(a.locations) != len(o.locations) {
		return false
	}
	for i := range a.locations {
		if a.locations[i] != o.locations[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (a *ValueAccessor) Clone() *ValueAccessor {
	return &ValueAccessor{
		locations: append([]Location(nil), a.locations...),
		isAdHoc:   a.isAdHoc,
	}
}

// AccessString renders the path back to text, e.g. "Items[2].Name".
// PopulateValueAccessor accepts the result for accessors that are not ad-hoc.
func (a *ValueAccessor) AccessString() string {
	var b strings.Builder
	for i, loc := range a.locations {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(loc.AccessString())
		if loc.ArrayIndex != NoArrayIndex {
			fmt.Fprintf(&b, "[%d]", loc.ArrayIndex)
		}
	}
	return b.String()
}

// String describes every location with its class and indices.
func (a *ValueAccessor) String() string {
	if len(a.locations) == 0 {
		return "<empty>"
	}
	parts := make([]string, len(a.locations))
	for i, loc := range a.locations {
		class := "<nil>"
		if loc.Enabler != nil {
			class = loc.Enabler.ClassName()
		}
		parts[i] = fmt.Sprintf("%s:%d[%d]", class, loc.PropertyIndex, loc.ArrayIndex)
	}
	s := strings.Join(parts, " / ")
	if a.isAdHoc {
		s += " (ad-hoc)"
	}
	return s
}

// propertyInfo returns the layout slot of loc, or a PropertyNotFound error.
func propertyInfo(loc Location) (*schema.PropertyInfo, error) {
	if loc.Enabler == nil {
		return nil, status.New(status.ErrCodeInvalidAccessor, "location has no enabler")
	}
	info := loc.Enabler.LookupProperty(loc.PropertyIndex)
	if info == nil {
		return nil, status.New(status.ErrCodePropertyNotFound, "class %q has no property index %d",
			loc.Enabler.ClassName(), loc.PropertyIndex)
	}
	return info, nil
}
