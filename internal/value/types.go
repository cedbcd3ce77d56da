package value

import (
	"fmt"
	"strings"
)

// Kind is the top-level discriminant of a Value.
type Kind uint8

const (
	KindUninitialized Kind = iota
	KindPrimitive
	KindStruct
	KindArray
	KindNavigation
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUninitialized:
		return "uninitialized"
	case KindPrimitive:
		return "primitive"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	case KindNavigation:
		return "navigation"
	default:
		return "unknown"
	}
}

// PrimitiveType identifies the scalar type held by a primitive Value.
type PrimitiveType uint8

const (
	PrimitiveTypeNone PrimitiveType = iota
	PrimitiveTypeInteger
	PrimitiveTypeLong
	PrimitiveTypeDouble
	PrimitiveTypeBoolean
	PrimitiveTypePoint2d
	PrimitiveTypePoint3d
	PrimitiveTypeDateTime
	PrimitiveTypeString
	PrimitiveTypeBinary
	PrimitiveTypeIGeometry
)

var primitiveTypeNames = map[PrimitiveType]string{
	PrimitiveTypeInteger:   "int",
	PrimitiveTypeLong:      "long",
	PrimitiveTypeDouble:    "double",
	PrimitiveTypeBoolean:   "boolean",
	PrimitiveTypePoint2d:   "point2d",
	PrimitiveTypePoint3d:   "point3d",
	PrimitiveTypeDateTime:  "dateTime",
	PrimitiveTypeString:    "string",
	PrimitiveTypeBinary:    "binary",
	PrimitiveTypeIGeometry: "geometry",
}

// String returns the schema name of the type.
func (t PrimitiveType) String() string {
	if name, ok := primitiveTypeNames[t]; ok {
		return name
	}
	return "none"
}

// ParsePrimitiveType parses a schema type name, case-insensitively.
// Accepts the canonical names plus common aliases (integer, bool, datetime, igeometry).
func ParsePrimitiveType(name string) (PrimitiveType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "int", "integer":
		return PrimitiveTypeInteger, nil
	case "long", "int64":
		return PrimitiveTypeLong, nil
	case "double", "float64":
		return PrimitiveTypeDouble, nil
	case "boolean", "bool":
		return PrimitiveTypeBoolean, nil
	case "point2d":
		return PrimitiveTypePoint2d, nil
	case "point3d":
		return PrimitiveTypePoint3d, nil
	case "datetime":
		return PrimitiveTypeDateTime, nil
	case "string":
		return PrimitiveTypeString, nil
	case "binary":
		return PrimitiveTypeBinary, nil
	case "geometry", "igeometry":
		return PrimitiveTypeIGeometry, nil
	default:
		return PrimitiveTypeNone, fmt.Errorf("unknown primitive type %q", name)
	}
}

// Point2d is a 2d coordinate.
type Point2d struct {
	X, Y float64
}

// Point3d is a 3d coordinate.
type Point3d struct {
	X, Y, Z float64
}

// ArrayKind distinguishes primitive arrays from struct arrays.
type ArrayKind uint8

const (
	ArrayKindPrimitive ArrayKind = iota
	ArrayKindStruct
)

// ArrayInfo describes an array property. It holds no elements; elements are
// fetched from the owning instance by index.
type ArrayInfo struct {
	Kind ArrayKind
	// ElementType is meaningful only for primitive arrays.
	ElementType PrimitiveType
	Count       uint32
	IsFixedSize bool
}

// RelationshipClass describes the relationship a navigation value refers through.
type RelationshipClass struct {
	Name string
	ID   uint64
}

// NavigationInfo is a navigation payload: the related instance id plus either a
// relationship class descriptor or a stored relationship class id, never both.
type NavigationInfo struct {
	ID uint64

	relClass   *RelationshipClass
	relClassID uint64
}

// RelationshipClass returns the descriptor, or nil when an id is stored instead.
func (n NavigationInfo) RelationshipClass() *RelationshipClass {
	return n.relClass
}

// RelationshipClassID returns the stored relationship class id, or 0 when a
// descriptor is stored instead.
func (n NavigationInfo) RelationshipClassID() uint64 {
	return n.relClassID
}

// StructInstance is the opaque instance referenced by a struct value.
// Implementations are expected to be pointer types; equality is identity.
type StructInstance interface {
	InstanceID() string
}

// RefCounted is implemented by struct instances that track the number of
// values referring to them.
type RefCounted interface {
	AddRef() int32
	Release() int32
}
