package value

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// Rendering markers for values String does not render by content.
const (
	NullString   = "<null>"
	StructString = "<struct>"
)

// String renders the value. Null values render as NullString, arrays as their
// descriptor, structs as StructString and navigation values as their id.
// Doubles use 17 significant digits so the text round-trips.
func (v *Value) String() string {
	if v.IsNull() {
		return NullString
	}
	switch v.kind {
	case KindArray:
		info := v.ArrayInfo()
		return "Count: " + strconv.FormatUint(uint64(info.Count), 10) +
			", IsFixedSize: " + strconv.FormatBool(info.IsFixedSize)
	case KindStruct:
		return StructString
	case KindNavigation:
		return strconv.FormatUint(v.NavigationInfo().ID, 10)
	case KindPrimitive:
		return v.primitiveString()
	default:
		return NullString
	}
}

func (v *Value) primitiveString() string {
	switch p := v.payload.(type) {
	case integerPayload:
		return strconv.FormatInt(int64(p), 10)
	case longPayload:
		return strconv.FormatInt(int64(p), 10)
	case doublePayload:
		return formatDouble(float64(p))
	case booleanPayload:
		if p {
			return "True"
		}
		return "False"
	case point2dPayload:
		return joinDoubles(p.X, p.Y)
	case point3dPayload:
		return joinDoubles(p.X, p.Y, p.Z)
	case dateTimePayload:
		return formatDateTime(p.ticks, p.info)
	case *stringPayload:
		return string(p.cache.getUTF8())
	case *binaryPayload:
		if v.primitiveType == PrimitiveTypeIGeometry {
			return geometryText(p.data)
		}
		return base64.StdEncoding.EncodeToString(p.data)
	default:
		return NullString
	}
}

func formatDouble(d float64) string {
	return strconv.FormatFloat(d, 'g', 17, 64)
}

func joinDoubles(ds ...float64) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = formatDouble(d)
	}
	return strings.Join(parts, ",")
}
