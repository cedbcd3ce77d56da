package instance

import (
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/ecvalue/internal/accessor"
	"github.com/roach88/ecvalue/internal/schema"
	"github.com/roach88/ecvalue/internal/status"
	"github.com/roach88/ecvalue/internal/value"
)

// AdHocOptions carries the optional metadata of a new ad-hoc property.
// Each non-zero field needs the matching member in the entry class.
type AdHocOptions struct {
	Unit         string
	DisplayLabel string
	ExtendedType string
	ReadOnly     bool
	Hidden       bool
}

// AdHocProperties edits the ad-hoc properties stored in one struct-array
// property of an instance. Entries are addressed by their position in the
// array.
type AdHocProperties struct {
	inst      *MemoryInstance
	container uint32
	spec      *schema.AdHocSpec
}

// NewAdHocProperties returns the ad-hoc properties held in the struct array
// named containerAccessString, whose element class must carry an ad-hoc marker.
func NewAdHocProperties(inst *MemoryInstance, containerAccessString string) (*AdHocProperties, error) {
	idx, err := inst.enabler.PropertyIndex(containerAccessString)
	if err != nil {
		return nil, err
	}
	info := inst.enabler.LookupProperty(idx)
	if info.Property.Kind != schema.PropertyKindStructArray {
		return nil, status.New(status.ErrCodeDataTypeMismatch, "property %q is not a struct array", containerAccessString)
	}
	element, err := inst.enabler.EnablerForStructArrayMember(info.Property.StructClass)
	if err != nil {
		return nil, err
	}
	c, ok := element.(schema.AdHocContainer)
	if !ok || c.AdHocSpec() == nil {
		return nil, status.New(status.ErrCodeDataTypeMismatch, "class %q has no ad-hoc marker", info.Property.StructClass)
	}
	return &AdHocProperties{inst: inst, container: idx, spec: c.AdHocSpec()}, nil
}

func (p *AdHocProperties) Count() int {
	return len(p.inst.slots[p.container-1].elements)
}

func (p *AdHocProperties) entry(i int) (*MemoryInstance, error) {
	if i < 0 || i >= p.Count() {
		return nil, status.IndexOutOfRange(i, p.Count())
	}
	v := p.inst.slots[p.container-1].elements[i]
	e, ok := v.Struct().(*MemoryInstance)
	if !ok {
		return nil, status.New(status.ErrCodeInvalidAccessor, "ad-hoc entry %d is null", i)
	}
	return e, nil
}

// PropertyIndex returns the position of the entry named name.
func (p *AdHocProperties) PropertyIndex(name string) (int, error) {
	name = norm.NFC.String(name)
	for i := 0; i < p.Count(); i++ {
		n, err := p.Name(i)
		if err != nil {
			return 0, err
		}
		if n == name {
			return i, nil
		}
	}
	return 0, status.PropertyNotFound(name)
}

func (p *AdHocProperties) Name(i int) (string, error) {
	v, err := p.member(i, p.spec.Name)
	if err != nil {
		return "", err
	}
	return v.UTF8(), nil
}

// GetValue reads entry i's value converted to its declared type.
func (p *AdHocProperties) GetValue(v *value.Value, i int) error {
	a, err := p.adHocAccessor(i)
	if err != nil {
		return err
	}
	return accessor.GetValueUsingAccessor(p.inst, v, a)
}

// SetValue replaces entry i's value. Read-only entries refuse.
func (p *AdHocProperties) SetValue(i int, v *value.Value) error {
	a, err := p.adHocAccessor(i)
	if err != nil {
		return err
	}
	return accessor.SetValueUsingAccessor(p.inst, a, v)
}

func (p *AdHocProperties) adHocAccessor(i int) (*accessor.ValueAccessor, error) {
	if _, err := p.entry(i); err != nil {
		return nil, err
	}
	return accessor.NewAdHoc(p.inst.enabler, p.container, int32(i)), nil
}

func (p *AdHocProperties) IsReadOnly(i int) (bool, error) {
	return p.flag(i, p.spec.IsReadOnly)
}

func (p *AdHocProperties) IsHidden(i int) (bool, error) {
	return p.flag(i, p.spec.IsHidden)
}

func (p *AdHocProperties) flag(i int, member string) (bool, error) {
	if member == "" {
		if _, err := p.entry(i); err != nil {
			return false, err
		}
		return false, nil
	}
	v, err := p.member(i, member)
	if err != nil {
		return false, err
	}
	return !v.IsNull() && v.Boolean(), nil
}

func (p *AdHocProperties) member(i int, name string) (*value.Value, error) {
	e, err := p.entry(i)
	if err != nil {
		return nil, err
	}
	idx, err := e.enabler.PropertyIndex(name)
	if err != nil {
		return nil, err
	}
	v := value.New()
	if err := e.GetValue(v, idx, accessor.NoArrayIndex); err != nil {
		return nil, err
	}
	return v, nil
}

func (p *AdHocProperties) setMember(e *MemoryInstance, role schema.AdHocRole, v *value.Value) error {
	name := p.spec.Member(role)
	if name == "" {
		return status.New(status.ErrCodePropertyNotFound, "ad-hoc class %q has no %s member", e.ClassName(), role)
	}
	idx, err := e.enabler.PropertyIndex(name)
	if err != nil {
		return err
	}
	return e.SetValue(idx, v, accessor.NoArrayIndex)
}

// Add appends an entry named name holding v rendered as text, with v's
// primitive type recorded when the entry class has a type member. Names must
// be unique. On any failure the new entry is removed again.
func (p *AdHocProperties) Add(name string, v *value.Value, opts AdHocOptions) (err error) {
	name = norm.NFC.String(name)
	if name == "" {
		return status.New(status.ErrCodeMalformedAccessString, "ad-hoc property name is empty")
	}
	if _, err := p.PropertyIndex(name); err == nil {
		return status.New(status.ErrCodeDuplicateName, "ad-hoc property %q already exists", name).
			WithDetail("name", name)
	}

	if err := p.inst.AddArrayElements(p.container, 1); err != nil {
		return err
	}
	i := p.Count() - 1
	defer func() {
		if err != nil {
			_ = p.inst.RemoveArrayElement(p.container, uint32(i))
		}
	}()

	e, err := p.entry(i)
	if err != nil {
		return err
	}

	text := v.Copy()
	if err = text.ConvertToPrimitiveType(value.PrimitiveTypeString); err != nil {
		return err
	}
	if err = p.setMember(e, schema.AdHocRoleName, value.NewString(name)); err != nil {
		return err
	}
	if err = p.setMember(e, schema.AdHocRoleValue, text); err != nil {
		return err
	}
	if p.spec.Type != "" && v.IsPrimitive() {
		if err = p.setMember(e, schema.AdHocRoleType, value.NewString(v.PrimitiveType().String())); err != nil {
			return err
		}
	}

	for _, opt := range []struct {
		role schema.AdHocRole
		set  bool
		v    *value.Value
	}{
		{schema.AdHocRoleUnit, opts.Unit != "", value.NewString(opts.Unit)},
		{schema.AdHocRoleDisplayLabel, opts.DisplayLabel != "", value.NewString(opts.DisplayLabel)},
		{schema.AdHocRoleExtendedType, opts.ExtendedType != "", value.NewString(opts.ExtendedType)},
		{schema.AdHocRoleIsReadOnly, opts.ReadOnly, value.NewBoolean(true)},
		{schema.AdHocRoleIsHidden, opts.Hidden, value.NewBoolean(true)},
	} {
		if !opt.set {
			continue
		}
		if err = p.setMember(e, opt.role, opt.v); err != nil {
			return err
		}
	}

	p.inst.logger.Debug("ad-hoc property added", "class", p.inst.ClassName(), "name", name)
	return nil
}

// Remove deletes entry i.
func (p *AdHocProperties) Remove(i int) error {
	if _, err := p.entry(i); err != nil {
		return err
	}
	return p.inst.RemoveArrayElement(p.container, uint32(i))
}

// Clear deletes every entry.
func (p *AdHocProperties) Clear() error {
	return p.inst.ClearArray(p.container)
}

// CopyFrom replaces every entry with copies of other's entries. If any copy
// fails the container is left empty.
func (p *AdHocProperties) CopyFrom(other *AdHocProperties) (err error) {
	if p.inst == other.inst && p.container == other.container {
		return nil
	}
	if err := p.Clear(); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = p.Clear()
		}
	}()

	for i := 0; i < other.Count(); i++ {
		name, err := other.Name(i)
		if err != nil {
			return err
		}
		v := value.New()
		if err := other.GetValue(v, i); err != nil {
			return err
		}
		opts, err := other.options(i)
		if err != nil {
			return err
		}
		if err := p.Add(name, v, opts); err != nil {
			return err
		}
	}
	return nil
}

func (p *AdHocProperties) options(i int) (AdHocOptions, error) {
	var opts AdHocOptions
	for _, f := range []struct {
		member string
		dst    *string
	}{
		{p.spec.Unit, &opts.Unit},
		{p.spec.DisplayLabel, &opts.DisplayLabel},
		{p.spec.ExtendedType, &opts.ExtendedType},
	} {
		if f.member == "" {
			continue
		}
		v, err := p.member(i, f.member)
		if err != nil {
			return opts, err
		}
		*f.dst = v.UTF8()
	}
	var err error
	if opts.ReadOnly, err = p.IsReadOnly(i); err != nil {
		return opts, err
	}
	if opts.Hidden, err = p.IsHidden(i); err != nil {
		return opts, err
	}
	return opts, nil
}
