package instance

import (
	"log/slog"
	"sync/atomic"

	"github.com/roach88/ecvalue/internal/accessor"
	"github.com/roach88/ecvalue/internal/schema"
	"github.com/roach88/ecvalue/internal/status"
	"github.com/roach88/ecvalue/internal/value"
)

// Option configures a MemoryInstance.
type Option func(*MemoryInstance)

// WithLogger sets the logger for debug output. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *MemoryInstance) {
		m.logger = logger
	}
}

// WithIDGenerator sets the instance id generator. Defaults to UUIDv7Generator.
// Struct-array elements created by the instance use the same generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(m *MemoryInstance) {
		m.ids = gen
	}
}

// MemoryInstance stores property values in memory, one slot per layout index
// of its enabler.
//
// A new instance holds one reference owned by its creator. Struct values
// referring to it hold one more each. When the count drops to zero the
// instance releases its struct-array elements.
//
// Reference counting is atomic; property storage is not synchronised.
type MemoryInstance struct {
	id      string
	enabler schema.Enabler
	slots   []slot // slots[i-1] holds layout index i
	refs    atomic.Int32

	logger *slog.Logger
	ids    IDGenerator
	opts   []Option
}

// slot holds one property. Primitive and navigation properties use value;
// arrays use elements. Embedded structs have no storage of their own.
type slot struct {
	info     *schema.PropertyInfo
	value    *value.Value
	elements []*value.Value
}

// New creates an instance of the class described by enabler with every
// property null, variable arrays empty and fixed-size arrays filled with
// null elements.
func New(enabler schema.Enabler, opts ...Option) *MemoryInstance {
	m := &MemoryInstance{
		enabler: enabler,
		logger:  slog.Default(),
		ids:     UUIDv7Generator{},
		opts:    opts,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.id = m.ids.Generate()
	m.refs.Store(1)

	m.slots = make([]slot, enabler.PropertyCount())
	for i := range m.slots {
		info := enabler.LookupProperty(uint32(i + 1))
		s := slot{info: info}
		switch info.Property.Kind {
		case schema.PropertyKindPrimitive:
			s.value = value.NewOfType(info.Property.PrimitiveType)
		case schema.PropertyKindNavigation:
			s.value = value.New()
			s.value.SetNavigationInfo(0, info.Relationship)
		case schema.PropertyKindPrimitiveArray, schema.PropertyKindStructArray:
			if info.Property.IsFixedSize() {
				s.elements = make([]*value.Value, info.Property.MaxOccurs)
				for j := range s.elements {
					s.elements[j] = m.nullElement(info)
				}
			}
		}
		m.slots[i] = s
	}

	m.logger.Debug("instance created", "class", enabler.ClassName(), "id", m.id)
	return m
}

// InstanceID implements value.StructInstance.
func (m *MemoryInstance) InstanceID() string { return m.id }

func (m *MemoryInstance) Enabler() schema.Enabler { return m.enabler }

func (m *MemoryInstance) ClassName() string { return m.enabler.ClassName() }

// AddRef implements value.RefCounted.
func (m *MemoryInstance) AddRef() int32 { return m.refs.Add(1) }

// Release implements value.RefCounted. Dropping the last reference releases
// the instance's struct-array elements.
func (m *MemoryInstance) Release() int32 {
	n := m.refs.Add(-1)
	if n == 0 {
		for i := range m.slots {
			for _, e := range m.slots[i].elements {
				e.Clear()
			}
			m.slots[i].elements = nil
		}
		m.logger.Debug("instance released", "class", m.enabler.ClassName(), "id", m.id)
	}
	return n
}

// RefCount returns the current number of references.
func (m *MemoryInstance) RefCount() int32 { return m.refs.Load() }

func (m *MemoryInstance) slot(propertyIndex uint32) (*slot, error) {
	if propertyIndex == 0 || int(propertyIndex) > len(m.slots) {
		return nil, status.New(status.ErrCodePropertyNotFound, "class %q has no property index %d",
			m.enabler.ClassName(), propertyIndex)
	}
	return &m.slots[propertyIndex-1], nil
}

func (s *slot) element(arrayIndex int32) (*value.Value, error) {
	if arrayIndex < 0 || int(arrayIndex) >= len(s.elements) {
		return nil, status.IndexOutOfRange(int(arrayIndex), len(s.elements)).
			WithDetail("access_string", s.info.AccessString)
	}
	return s.elements[arrayIndex], nil
}

// GetValue implements accessor.Instance.
//
// v keeps its advisory flags: when AllowsPointersIntoInstanceMemory is set,
// strings and binaries are returned borrowed from the instance's storage and
// stay valid until the property is next written; otherwise they are copied.
// IsReadOnly reflects the property declaration and IsLoaded is set.
func (m *MemoryInstance) GetValue(v *value.Value, propertyIndex uint32, arrayIndex int32) error {
	s, err := m.slot(propertyIndex)
	if err != nil {
		return err
	}

	allow := v.AllowsPointersIntoInstanceMemory()
	prop := s.info.Property
	switch prop.Kind {
	case schema.PropertyKindPrimitive, schema.PropertyKindNavigation:
		if arrayIndex != accessor.NoArrayIndex {
			return notAnArray(s)
		}
		if err := load(v, s.value, allow); err != nil {
			return err
		}
	case schema.PropertyKindStruct:
		if arrayIndex != accessor.NoArrayIndex {
			return notAnArray(s)
		}
		v.SetStruct(nil)
	case schema.PropertyKindPrimitiveArray, schema.PropertyKindStructArray:
		if arrayIndex == accessor.NoArrayIndex {
			count := uint32(len(s.elements))
			if prop.Kind == schema.PropertyKindPrimitiveArray {
				v.SetPrimitiveArrayInfo(prop.PrimitiveType, count, prop.IsFixedSize())
			} else {
				v.SetStructArrayInfo(count, prop.IsFixedSize())
			}
			break
		}
		e, err := s.element(arrayIndex)
		if err != nil {
			return err
		}
		if err := load(v, e, allow); err != nil {
			return err
		}
	}

	v.SetAllowsPointersIntoInstanceMemory(allow)
	v.SetIsReadOnly(prop.ReadOnly)
	v.SetIsLoaded(true)
	return nil
}

func load(v, stored *value.Value, allow bool) error {
	if allow && !stored.IsNull() {
		switch {
		case stored.IsString():
			v.SetUTF8Bytes(stored.UTF8Bytes(), false)
			return nil
		case stored.IsBinary():
			v.SetBinary(stored.Binary(), false)
			return nil
		case stored.IsIGeometry():
			return v.SetIGeometry(stored.IGeometry(), false)
		}
	}
	v.CopyFrom(stored)
	return nil
}

// SetValue implements accessor.Instance. v must match the declared type of
// the property, or be null. Read-only properties accept a value only while
// null. Struct-array elements must be MemoryInstances of the declared struct
// class. Whole arrays are edited through the array methods.
func (m *MemoryInstance) SetValue(propertyIndex uint32, v *value.Value, arrayIndex int32) error {
	s, err := m.slot(propertyIndex)
	if err != nil {
		return err
	}

	prop := s.info.Property
	var dst *value.Value
	switch prop.Kind {
	case schema.PropertyKindStruct:
		return status.New(status.ErrCodeDataTypeMismatch, "embedded struct %q is set member by member", s.info.AccessString)
	case schema.PropertyKindPrimitive, schema.PropertyKindNavigation:
		if arrayIndex != accessor.NoArrayIndex {
			return notAnArray(s)
		}
		dst = s.value
	default:
		if arrayIndex == accessor.NoArrayIndex {
			return status.New(status.ErrCodeDataTypeMismatch, "array %q is edited element by element", s.info.AccessString)
		}
		if dst, err = s.element(arrayIndex); err != nil {
			return err
		}
	}

	if prop.ReadOnly && !dst.IsNull() {
		return status.New(status.ErrCodeReadOnly, "property %q is read-only", s.info.AccessString)
	}

	switch prop.Kind {
	case schema.PropertyKindStructArray:
		err = m.storeElement(s, dst, v)
	case schema.PropertyKindNavigation:
		err = storeNavigation(s, dst, v)
	default:
		err = storePrimitive(s, dst, v)
	}
	if err != nil {
		return err
	}

	m.logger.Debug("value set",
		"class", m.enabler.ClassName(),
		"property", s.info.AccessString,
		"array_index", arrayIndex,
		"null", v.IsNull(),
	)
	return nil
}

func storePrimitive(s *slot, dst, v *value.Value) error {
	want := s.info.Property.PrimitiveType
	if v.IsNull() && (v.IsUninitialized() || v.IsPrimitive()) {
		dst.SetPrimitiveType(want)
		dst.SetToNull()
		return nil
	}
	if !v.IsPrimitive() || v.PrimitiveType() != want {
		return mismatch(s, want.String(), v)
	}
	switch want {
	case value.PrimitiveTypeString:
		dst.SetUTF8Bytes(v.UTF8Bytes(), true)
	case value.PrimitiveTypeBinary:
		dst.SetBinary(v.Binary(), true)
	case value.PrimitiveTypeIGeometry:
		return dst.SetIGeometry(v.IGeometry(), true)
	default:
		dst.CopyFrom(v)
	}
	return nil
}

func storeNavigation(s *slot, dst, v *value.Value) error {
	if v.IsUninitialized() {
		dst.SetNavigationInfo(0, s.info.Relationship)
		return nil
	}
	if !v.IsNavigation() {
		return mismatch(s, "navigation", v)
	}
	dst.CopyFrom(v)
	return nil
}

func (m *MemoryInstance) storeElement(s *slot, dst, v *value.Value) error {
	if v.IsNull() && (v.IsUninitialized() || v.IsStruct()) {
		dst.SetStruct(nil)
		return nil
	}
	if !v.IsStruct() {
		return mismatch(s, s.info.Property.StructClass, v)
	}
	element, ok := v.Struct().(*MemoryInstance)
	if !ok || element.ClassName() != s.info.Property.StructClass {
		return status.New(status.ErrCodeDataTypeMismatch, "elements of %q must be %s instances",
			s.info.AccessString, s.info.Property.StructClass)
	}
	if element == m {
		return status.New(status.ErrCodeDataTypeMismatch, "instance cannot contain itself")
	}
	dst.SetStruct(element)
	return nil
}

func mismatch(s *slot, want string, got *value.Value) error {
	return status.New(status.ErrCodeDataTypeMismatch, "property %q expects %s, got %s",
		s.info.AccessString, want, describe(got)).
		WithDetail("access_string", s.info.AccessString)
}

func describe(v *value.Value) string {
	if v.IsPrimitive() {
		return v.PrimitiveType().String()
	}
	return v.Kind().String()
}

func notAnArray(s *slot) error {
	return status.New(status.ErrCodeDataTypeMismatch, "property %q is not an array", s.info.AccessString)
}

// GetValueUsingAccessor reads the value addressed by a.
func (m *MemoryInstance) GetValueUsingAccessor(v *value.Value, a *accessor.ValueAccessor) error {
	return accessor.GetValueUsingAccessor(m, v, a)
}

// SetValueUsingAccessor writes the value addressed by a.
func (m *MemoryInstance) SetValueUsingAccessor(a *accessor.ValueAccessor, v *value.Value) error {
	return accessor.SetValueUsingAccessor(m, a, v)
}

// GetValueByAccessString resolves accessString, including ad-hoc properties,
// and reads the value it addresses.
func (m *MemoryInstance) GetValueByAccessString(v *value.Value, accessString string) error {
	a := accessor.New()
	if err := a.PopulateValueAccessorForInstance(m, accessString, true); err != nil {
		return err
	}
	return accessor.GetValueUsingAccessor(m, v, a)
}

// SetValueByAccessString resolves accessString, including ad-hoc properties,
// and writes the value it addresses.
func (m *MemoryInstance) SetValueByAccessString(accessString string, v *value.Value) error {
	a := accessor.New()
	if err := a.PopulateValueAccessorForInstance(m, accessString, true); err != nil {
		return err
	}
	return accessor.SetValueUsingAccessor(m, a, v)
}

var _ accessor.Instance = (*MemoryInstance)(nil)
var _ value.RefCounted = (*MemoryInstance)(nil)
