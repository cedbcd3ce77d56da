package schema

import (
	"strings"
	"sync"

	"github.com/roach88/ecvalue/internal/status"
	"github.com/roach88/ecvalue/internal/value"
)

// Enabler describes the property layout of one class.
//
// Property indices are 1-based; 0 means "none" both as a parent index (the
// class itself) and as a result of FirstPropertyIndex / NextPropertyIndex.
// Members of embedded structs get their own indices with dotted access
// strings ("Size.Width") and the embedding property as parent.
type Enabler interface {
	ClassName() string
	PropertyCount() uint32
	PropertyIndex(accessString string) (uint32, error)
	AccessString(index uint32) (string, error)
	FirstPropertyIndex(parentIndex uint32) uint32
	NextPropertyIndex(parentIndex, currentIndex uint32) uint32
	LookupProperty(index uint32) *PropertyInfo
	EnablerForStructArrayMember(structClass string) (Enabler, error)
	ParentPropertyIndex(index uint32) uint32
}

// AdHocContainer is implemented by enablers of struct classes that can hold
// ad-hoc property entries. AdHocSpec returns nil when the class is not marked.
type AdHocContainer interface {
	AdHocSpec() *AdHocSpec
}

// PropertyInfo is one slot of an enabler layout.
type PropertyInfo struct {
	Index        uint32
	Parent       uint32
	AccessString string
	Property     *Property

	// Relationship is resolved for navigation properties.
	Relationship *value.RelationshipClass
}

// Name is the leaf name of the property.
func (p *PropertyInfo) Name() string { return p.Property.Name }

// Enablers builds and caches one ClassEnabler per class of a schema.
// Safe for concurrent use.
type Enablers struct {
	schema *Schema

	mu      sync.Mutex
	byClass map[string]*ClassEnabler
}

// NewEnablers creates an enabler cache for s.
func NewEnablers(s *Schema) *Enablers {
	return &Enablers{schema: s, byClass: make(map[string]*ClassEnabler)}
}

// Schema returns the schema the enablers are built from.
func (e *Enablers) Schema() *Schema { return e.schema }

// Enabler returns the enabler for className, building it on first use.
func (e *Enablers) Enabler(className string) (*ClassEnabler, error) {
	className = normalizeName(className)

	e.mu.Lock()
	defer e.mu.Unlock()

	if ce, ok := e.byClass[className]; ok {
		return ce, nil
	}
	class := e.schema.Class(className)
	if class == nil {
		return nil, status.ClassNotFound(className)
	}
	ce, err := newClassEnabler(e, class)
	if err != nil {
		return nil, err
	}
	e.byClass[className] = ce
	return ce, nil
}

// ClassEnabler is the Enabler of a schema class. It is immutable once built.
type ClassEnabler struct {
	class    *Class
	registry *Enablers

	props    []PropertyInfo // props[i-1].Index == i
	byAccess map[string]uint32
	first    map[uint32]uint32
	next     []uint32 // next[i-1] is the next sibling of i, 0 at end
}

func newClassEnabler(registry *Enablers, class *Class) (*ClassEnabler, error) {
	ce := &ClassEnabler{
		class:    class,
		registry: registry,
		byAccess: make(map[string]uint32),
		first:    make(map[uint32]uint32),
	}
	if err := ce.layout(class, "", 0, map[string]bool{class.Name: true}); err != nil {
		return nil, err
	}
	return ce, nil
}

// layout appends class's properties in declaration order, descending into
// embedded structs depth first.
func (ce *ClassEnabler) layout(class *Class, prefix string, parent uint32, embedding map[string]bool) error {
	var prev uint32
	for _, p := range class.Properties {
		info := PropertyInfo{
			Index:        uint32(len(ce.props) + 1),
			Parent:       parent,
			AccessString: prefix + p.Name,
			Property:     p,
		}
		if p.Kind == PropertyKindNavigation {
			info.Relationship = ce.registry.schema.Relationship(p.Relationship)
		}
		if _, dup := ce.byAccess[info.AccessString]; dup {
			return status.New(status.ErrCodeInvalidSchema, "class %q declares %q twice", ce.class.Name, info.AccessString)
		}

		ce.props = append(ce.props, info)
		ce.next = append(ce.next, 0)
		ce.byAccess[info.AccessString] = info.Index
		if prev == 0 {
			ce.first[parent] = info.Index
		} else {
			ce.next[prev-1] = info.Index
		}
		prev = info.Index

		if p.Kind != PropertyKindStruct {
			continue
		}
		member := ce.registry.schema.Class(p.StructClass)
		if member == nil {
			return status.ClassNotFound(p.StructClass)
		}
		if embedding[member.Name] {
			return status.New(status.ErrCodeInvalidSchema, "embedded struct %q contains itself via %q", member.Name, info.AccessString)
		}
		embedding[member.Name] = true
		if err := ce.layout(member, info.AccessString+".", info.Index, embedding); err != nil {
			return err
		}
		delete(embedding, member.Name)
	}
	return nil
}

// Class returns the class the enabler lays out.
func (ce *ClassEnabler) Class() *Class { return ce.class }

func (ce *ClassEnabler) ClassName() string { return ce.class.Name }

func (ce *ClassEnabler) PropertyCount() uint32 { return uint32(len(ce.props)) }

// PropertyIndex resolves a managed access string such as "Size.Width".
func (ce *ClassEnabler) PropertyIndex(accessString string) (uint32, error) {
	if idx, ok := ce.byAccess[normalizeName(accessString)]; ok {
		return idx, nil
	}
	return 0, status.PropertyNotFound(accessString).WithDetail("class", ce.class.Name)
}

func (ce *ClassEnabler) AccessString(index uint32) (string, error) {
	info := ce.LookupProperty(index)
	if info == nil {
		return "", status.New(status.ErrCodePropertyNotFound, "class %q has no property index %d", ce.class.Name, index)
	}
	return info.AccessString, nil
}

func (ce *ClassEnabler) FirstPropertyIndex(parentIndex uint32) uint32 {
	return ce.first[parentIndex]
}

func (ce *ClassEnabler) NextPropertyIndex(parentIndex, currentIndex uint32) uint32 {
	info := ce.LookupProperty(currentIndex)
	if info == nil || info.Parent != parentIndex {
		return 0
	}
	return ce.next[currentIndex-1]
}

// LookupProperty returns the layout slot for index, or nil.
func (ce *ClassEnabler) LookupProperty(index uint32) *PropertyInfo {
	if index == 0 || int(index) > len(ce.props) {
		return nil
	}
	return &ce.props[index-1]
}

func (ce *ClassEnabler) ParentPropertyIndex(index uint32) uint32 {
	if info := ce.LookupProperty(index); info != nil {
		return info.Parent
	}
	return 0
}

// EnablerForStructArrayMember returns the enabler of a struct class from the
// same schema.
func (ce *ClassEnabler) EnablerForStructArrayMember(structClass string) (Enabler, error) {
	member, err := ce.registry.Enabler(structClass)
	if err != nil {
		return nil, err
	}
	if !member.class.IsStruct {
		return nil, status.New(status.ErrCodeDataTypeMismatch, "class %q is not a struct class", member.class.Name)
	}
	return member, nil
}

// AdHocSpec implements AdHocContainer.
func (ce *ClassEnabler) AdHocSpec() *AdHocSpec { return ce.class.AdHoc }

// StripParent returns the access string of index relative to its parent,
// for example "Width" for "Size.Width".
func StripParent(e Enabler, index uint32) string {
	s, err := e.AccessString(index)
	if err != nil {
		return ""
	}
	if e.ParentPropertyIndex(index) == 0 {
		return s
	}
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}
