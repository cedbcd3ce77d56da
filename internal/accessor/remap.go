package accessor

import (
	"github.com/roach88/ecvalue/internal/schema"
	"github.com/roach88/ecvalue/internal/status"
)

// Remapper maps names of an older schema version to the current one.
// schema.RemapTable implements it.
type Remapper interface {
	ResolveClassName(className string) string
	// ResolvePropertyName maps an old access string of a property of
	// className, which is already a current class name.
	ResolvePropertyName(className, accessString string) string
}

// RemapValueAccessor rebuilds a, which was resolved against an older schema,
// against newRoot. Each location's class and access string are mapped through
// remapper and resolved again; element classes are obtained from the previous
// new enabler. a is not modified.
func RemapValueAccessor(a *ValueAccessor, newRoot schema.Enabler, remapper Remapper) (*ValueAccessor, error) {
	out := New()
	out.isAdHoc = a.isAdHoc

	var target schema.Enabler
	for i, loc := range a.locations {
		if loc.Enabler == nil {
			return nil, status.New(status.ErrCodeInvalidAccessor, "location %d has no enabler", i)
		}
		className := remapper.ResolveClassName(loc.Enabler.ClassName())
		if i == 0 {
			if className != newRoot.ClassName() {
				return nil, status.ClassNotFound(className).WithDetail("root", newRoot.ClassName())
			}
			target = newRoot
		} else {
			next, err := target.EnablerForStructArrayMember(className)
			if err != nil {
				return nil, err
			}
			target = next
		}

		oldAccess, err := loc.Enabler.AccessString(loc.PropertyIndex)
		if err != nil {
			return nil, err
		}
		if err := out.PushLocationByName(target, remapper.ResolvePropertyName(className, oldAccess), loc.ArrayIndex); err != nil {
			return nil, err
		}
	}
	return out, nil
}
