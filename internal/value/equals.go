package value

import (
	"bytes"
	"math"
)

// DoubleTolerance is the relative tolerance used by Equals for doubles and
// point components. Differences up to DoubleTolerance*max(1,|a|,|b|) are equal.
const DoubleTolerance = 1e-14

// Equals compares two values. Null-ness must match, then kind. Two nulls of the
// same kind are equal. Arrays compare descriptors only, structs compare
// instance identity, doubles and points compare within DoubleTolerance.
//
// Equals may cache string conversions on either operand.
func (v *Value) Equals(o *Value) bool {
	if v == o {
		return true
	}
	if o == nil {
		return false
	}
	if v.IsNull() != o.IsNull() {
		return false
	}
	if v.kind != o.kind {
		return false
	}
	if v.IsNull() {
		return true
	}

	switch v.kind {
	case KindArray:
		return v.payload.(arrayPayload) == o.payload.(arrayPayload)
	case KindStruct:
		return v.Struct() == o.Struct()
	case KindNavigation:
		a, b := v.payload.(navigationPayload), o.payload.(navigationPayload)
		return a.ID == b.ID && a.relClass == b.relClass && a.relClassID == b.relClassID
	case KindPrimitive:
		return v.primitiveEquals(o)
	default:
		return false
	}
}

func (v *Value) primitiveEquals(o *Value) bool {
	if v.primitiveType != o.primitiveType {
		return false
	}
	switch v.primitiveType {
	case PrimitiveTypeString:
		return v.payload.(*stringPayload).cache.equal(&o.payload.(*stringPayload).cache)
	case PrimitiveTypeBinary, PrimitiveTypeIGeometry:
		a, b := v.payload.(*binaryPayload).data, o.payload.(*binaryPayload).data
		if len(a) != len(b) {
			return false
		}
		if len(a) == 0 || &a[0] == &b[0] {
			return true
		}
		return bytes.Equal(a, b)
	case PrimitiveTypeDouble:
		return almostEqual(float64(v.payload.(doublePayload)), float64(o.payload.(doublePayload)))
	case PrimitiveTypePoint2d:
		a, b := v.payload.(point2dPayload), o.payload.(point2dPayload)
		return almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y)
	case PrimitiveTypePoint3d:
		a, b := v.payload.(point3dPayload), o.payload.(point3dPayload)
		return almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y) && almostEqual(a.Z, b.Z)
	default:
		// Integer, Long, Boolean, DateTime: fixed-size payloads compare exactly.
		return v.payload == o.payload
	}
}

// almostEqual treats NaN as equal to NaN so Equals stays reflexive.
func almostEqual(a, b float64) bool {
	if a == b {
		return true
	}
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}
	scale := max(1, math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= DoubleTolerance*scale
}
