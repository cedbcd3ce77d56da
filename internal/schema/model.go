package schema

import (
	"github.com/roach88/ecvalue/internal/value"
)

// PropertyKind is the shape of a declared property.
type PropertyKind uint8

const (
	PropertyKindPrimitive PropertyKind = iota
	// PropertyKindStruct is an embedded struct; its members are laid out
	// inline in the owning class with dotted access strings.
	PropertyKindStruct
	PropertyKindPrimitiveArray
	// PropertyKindStructArray holds struct instances addressed by element index.
	PropertyKindStructArray
	PropertyKindNavigation
)

func (k PropertyKind) String() string {
	switch k {
	case PropertyKindPrimitive:
		return "primitive"
	case PropertyKindStruct:
		return "struct"
	case PropertyKindPrimitiveArray:
		return "primitiveArray"
	case PropertyKindStructArray:
		return "structArray"
	case PropertyKindNavigation:
		return "navigation"
	default:
		return "unknown"
	}
}

// Schema is a named set of classes and relationship classes.
type Schema struct {
	Name          string
	Classes       []*Class
	Relationships []*value.RelationshipClass
}

// Class returns the class with the given name, or nil.
func (s *Schema) Class(name string) *Class {
	name = normalizeName(name)
	for _, c := range s.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Relationship returns the relationship class with the given name, or nil.
func (s *Schema) Relationship(name string) *value.RelationshipClass {
	name = normalizeName(name)
	for _, r := range s.Relationships {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// Class is an entity or struct class. Properties keep declaration order,
// which is the iteration order of every enabler built from the class.
type Class struct {
	Name       string
	IsStruct   bool
	Properties []*Property

	// AdHoc marks a struct class whose instances, held in a struct array,
	// carry dynamically named properties.
	AdHoc *AdHocSpec
}

// Property returns the declared property with the given name, or nil.
func (c *Class) Property(name string) *Property {
	name = normalizeName(name)
	for _, p := range c.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Property is a declared property.
type Property struct {
	Name string
	Kind PropertyKind

	// TypeName is the primitive type as written in the schema file.
	// PrimitiveType is its parsed form, PrimitiveTypeNone when unknown.
	TypeName      string
	PrimitiveType value.PrimitiveType

	// StructClass names the class of struct and struct-array properties.
	StructClass string

	// Relationship names the relationship class of navigation properties.
	Relationship string

	ReadOnly bool

	// MinOccurs and MaxOccurs bound array properties. MaxOccurs 0 is unbounded.
	MinOccurs uint32
	MaxOccurs uint32

	ExtendedType string
}

// IsArray reports whether the property holds an array.
func (p *Property) IsArray() bool {
	return p.Kind == PropertyKindPrimitiveArray || p.Kind == PropertyKindStructArray
}

// IsFixedSize reports whether the array has exactly MaxOccurs elements.
func (p *Property) IsFixedSize() bool {
	return p.IsArray() && p.MaxOccurs > 0 && p.MinOccurs == p.MaxOccurs
}

// AdHocSpec names the members of an ad-hoc entry struct that play each role.
// Name and Value are required; the rest are optional.
type AdHocSpec struct {
	Name         string
	Value        string
	Type         string
	Unit         string
	DisplayLabel string
	ExtendedType string
	IsReadOnly   string
	IsHidden     string
}

// AdHocRole identifies one member role of an ad-hoc entry.
type AdHocRole string

const (
	AdHocRoleName         AdHocRole = "name"
	AdHocRoleValue        AdHocRole = "value"
	AdHocRoleType         AdHocRole = "type"
	AdHocRoleUnit         AdHocRole = "unit"
	AdHocRoleDisplayLabel AdHocRole = "displayLabel"
	AdHocRoleExtendedType AdHocRole = "extendedType"
	AdHocRoleIsReadOnly   AdHocRole = "isReadOnly"
	AdHocRoleIsHidden     AdHocRole = "isHidden"
)

// Member returns the member name for role, or "" when the role is unused.
func (s *AdHocSpec) Member(role AdHocRole) string {
	switch role {
	case AdHocRoleName:
		return s.Name
	case AdHocRoleValue:
		return s.Value
	case AdHocRoleType:
		return s.Type
	case AdHocRoleUnit:
		return s.Unit
	case AdHocRoleDisplayLabel:
		return s.DisplayLabel
	case AdHocRoleExtendedType:
		return s.ExtendedType
	case AdHocRoleIsReadOnly:
		return s.IsReadOnly
	case AdHocRoleIsHidden:
		return s.IsHidden
	default:
		return ""
	}
}

// AdHocRoles lists every role in a stable order.
var AdHocRoles = []AdHocRole{
	AdHocRoleName, AdHocRoleValue, AdHocRoleType, AdHocRoleUnit,
	AdHocRoleDisplayLabel, AdHocRoleExtendedType, AdHocRoleIsReadOnly, AdHocRoleIsHidden,
}
