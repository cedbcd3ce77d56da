package instance

import (
	"slices"

	"github.com/roach88/ecvalue/internal/schema"
	"github.com/roach88/ecvalue/internal/status"
	"github.com/roach88/ecvalue/internal/value"
)

// AddArrayElements appends count elements to a variable-size array.
// Primitive elements start null; struct elements are new, empty instances
// of the declared struct class.
func (m *MemoryInstance) AddArrayElements(propertyIndex uint32, count uint32) error {
	s, err := m.resizableArray(propertyIndex)
	if err != nil {
		return err
	}
	return m.insert(s, uint32(len(s.elements)), count)
}

// InsertArrayElements inserts count elements before index. index may equal
// the current count, which appends.
func (m *MemoryInstance) InsertArrayElements(propertyIndex uint32, index uint32, count uint32) error {
	s, err := m.resizableArray(propertyIndex)
	if err != nil {
		return err
	}
	if int(index) > len(s.elements) {
		return status.IndexOutOfRange(int(index), len(s.elements)+1)
	}
	return m.insert(s, index, count)
}

func (m *MemoryInstance) insert(s *slot, index uint32, count uint32) error {
	if limit := s.info.Property.MaxOccurs; limit > 0 && uint32(len(s.elements))+count > limit {
		return status.New(status.ErrCodeOutOfRange, "array %q holds at most %d elements", s.info.AccessString, limit).
			WithDetail("access_string", s.info.AccessString)
	}

	added := make([]*value.Value, count)
	for i := range added {
		e, err := m.newElement(s.info)
		if err != nil {
			for _, done := range added[:i] {
				done.Clear()
			}
			return err
		}
		added[i] = e
	}
	s.elements = slices.Insert(s.elements, int(index), added...)

	m.logger.Debug("array elements added",
		"class", m.enabler.ClassName(),
		"property", s.info.AccessString,
		"index", index,
		"count", count,
	)
	return nil
}

// RemoveArrayElement removes one element of a variable-size array, releasing
// it when it is a struct.
func (m *MemoryInstance) RemoveArrayElement(propertyIndex uint32, index uint32) error {
	s, err := m.resizableArray(propertyIndex)
	if err != nil {
		return err
	}
	if int(index) >= len(s.elements) {
		return status.IndexOutOfRange(int(index), len(s.elements))
	}
	s.elements[index].Clear()
	s.elements = slices.Delete(s.elements, int(index), int(index)+1)
	return nil
}

// ClearArray removes every element of a variable-size array.
func (m *MemoryInstance) ClearArray(propertyIndex uint32) error {
	s, err := m.resizableArray(propertyIndex)
	if err != nil {
		return err
	}
	for _, e := range s.elements {
		e.Clear()
	}
	s.elements = nil
	return nil
}

func (m *MemoryInstance) resizableArray(propertyIndex uint32) (*slot, error) {
	s, err := m.slot(propertyIndex)
	if err != nil {
		return nil, err
	}
	if !s.info.Property.IsArray() {
		return nil, notAnArray(s)
	}
	if s.info.Property.IsFixedSize() {
		return nil, status.New(status.ErrCodeFixedSizeArray, "array %q has a fixed size of %d",
			s.info.AccessString, s.info.Property.MaxOccurs)
	}
	return s, nil
}

func (m *MemoryInstance) nullElement(info *schema.PropertyInfo) *value.Value {
	if info.Property.Kind == schema.PropertyKindStructArray {
		v := value.New()
		v.SetStruct(nil)
		return v
	}
	return value.NewOfType(info.Property.PrimitiveType)
}

// newElement returns a null primitive, or a struct value referring to a new
// element instance. The value holds the element's only reference.
func (m *MemoryInstance) newElement(info *schema.PropertyInfo) (*value.Value, error) {
	if info.Property.Kind != schema.PropertyKindStructArray {
		return m.nullElement(info), nil
	}
	enabler, err := m.enabler.EnablerForStructArrayMember(info.Property.StructClass)
	if err != nil {
		return nil, err
	}
	element := New(enabler, m.opts...)
	v := value.New()
	v.SetStruct(element)
	element.Release()
	return v, nil
}
