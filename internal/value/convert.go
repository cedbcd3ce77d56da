package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/roach88/ecvalue/internal/status"
)

// ConvertToPrimitiveType converts the value in place.
//
// A null value is only retyped. Conversions are computed into a scratch value
// and committed on success, so a failed conversion leaves v untouched.
//
// Supported conversions:
//   - any primitive except binary/geometry -> string (String rendering)
//   - string -> int, long, double, boolean, point2d, point3d, dateTime
//   - int <-> long <-> double <-> boolean (narrowing checks range;
//     double -> int/long rounds half away from zero)
//   - long <-> dateTime (ticks)
//   - point2d <-> point3d (z = 0 / z dropped)
func (v *Value) ConvertToPrimitiveType(target PrimitiveType) error {
	if target == PrimitiveTypeNone || target > PrimitiveTypeIGeometry {
		return status.New(status.ErrCodeUnsupportedConversion, "invalid target type %d", target)
	}
	if v.kind != KindPrimitive && v.kind != KindUninitialized {
		return status.New(status.ErrCodeUnsupportedConversion, "cannot convert %s to %s", v.kind, target)
	}
	if v.IsNull() {
		v.SetPrimitiveType(target)
		return nil
	}
	if v.primitiveType == target {
		return nil
	}

	var out Value
	if err := v.convertInto(&out, target); err != nil {
		return err
	}
	v.moveFrom(&out)
	return nil
}

func (v *Value) convertInto(out *Value, target PrimitiveType) error {
	unsupported := func() error {
		return status.New(status.ErrCodeUnsupportedConversion, "cannot convert %s to %s", v.primitiveType, target)
	}

	switch v.primitiveType {
	case PrimitiveTypeBinary, PrimitiveTypeIGeometry:
		return unsupported()
	case PrimitiveTypeString:
		return parseInto(out, v.UTF8(), target)
	}

	if target == PrimitiveTypeString {
		out.SetUTF8(v.String())
		return nil
	}

	switch p := v.payload.(type) {
	case integerPayload:
		return fromInt64(out, int64(p), target, unsupported)
	case longPayload:
		if target == PrimitiveTypeDateTime {
			return out.SetDateTimeTicks(int64(p), DateTimeInfo{})
		}
		return fromInt64(out, int64(p), target, unsupported)
	case booleanPayload:
		n := int64(0)
		if p {
			n = 1
		}
		return fromInt64(out, n, target, unsupported)
	case doublePayload:
		return fromDouble(out, float64(p), target, unsupported)
	case point2dPayload:
		if target == PrimitiveTypePoint3d {
			out.SetPoint3d(Point3d{X: p.X, Y: p.Y})
			return nil
		}
	case point3dPayload:
		if target == PrimitiveTypePoint2d {
			out.SetPoint2d(Point2d{X: p.X, Y: p.Y})
			return nil
		}
	case dateTimePayload:
		if target == PrimitiveTypeLong {
			out.SetLong(p.ticks)
			return nil
		}
	}
	return unsupported()
}

func fromInt64(out *Value, n int64, target PrimitiveType, unsupported func() error) error {
	switch target {
	case PrimitiveTypeInteger:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return status.New(status.ErrCodeOutOfRange, "%d does not fit in int", n)
		}
		out.SetInteger(int32(n))
	case PrimitiveTypeLong:
		out.SetLong(n)
	case PrimitiveTypeDouble:
		out.SetDouble(float64(n))
	case PrimitiveTypeBoolean:
		out.SetBoolean(n != 0)
	default:
		return unsupported()
	}
	return nil
}

func fromDouble(out *Value, d float64, target PrimitiveType, unsupported func() error) error {
	switch target {
	case PrimitiveTypeBoolean:
		out.SetBoolean(d != 0)
		return nil
	case PrimitiveTypeInteger, PrimitiveTypeLong:
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return status.New(status.ErrCodeOutOfRange, "%v is not a finite number", d)
		}
		// math.Round rounds half away from zero.
		r := math.Round(d)
		if r < -(1<<63) || r >= 1<<63 {
			return status.New(status.ErrCodeOutOfRange, "%v does not fit in long", d)
		}
		return fromInt64(out, int64(r), target, unsupported)
	default:
		return unsupported()
	}
}

// parseInto parses text as target.
func parseInto(out *Value, text string, target PrimitiveType) error {
	s := strings.TrimSpace(text)
	switch target {
	case PrimitiveTypeInteger:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return parseError(s, target, err)
		}
		out.SetInteger(int32(n))
	case PrimitiveTypeLong:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return parseError(s, target, err)
		}
		out.SetLong(n)
	case PrimitiveTypeDouble:
		d, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return parseError(s, target, err)
		}
		out.SetDouble(d)
	case PrimitiveTypeBoolean:
		switch {
		case strings.EqualFold(s, "true") || s == "1":
			out.SetBoolean(true)
		case strings.EqualFold(s, "false") || s == "0":
			out.SetBoolean(false)
		default:
			return status.New(status.ErrCodeParseFailed, "cannot parse %q as boolean", s)
		}
	case PrimitiveTypePoint2d:
		c, err := parseCoordinates(s, 2)
		if err != nil {
			return err
		}
		out.SetPoint2d(Point2d{X: c[0], Y: c[1]})
	case PrimitiveTypePoint3d:
		c, err := parseCoordinates(s, 3)
		if err != nil {
			return err
		}
		out.SetPoint3d(Point3d{X: c[0], Y: c[1], Z: c[2]})
	case PrimitiveTypeDateTime:
		ticks, info, err := parseDateTime(s)
		if err != nil {
			return err
		}
		return out.SetDateTimeTicks(ticks, info)
	default:
		return status.New(status.ErrCodeUnsupportedConversion, "cannot convert string to %s", target)
	}
	return nil
}

func parseCoordinates(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, status.New(status.ErrCodeParseFailed, "expected %d comma-separated coordinates, got %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		d, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, status.New(status.ErrCodeParseFailed, "coordinate %d of %q: %v", i, s, err)
		}
		out[i] = d
	}
	return out, nil
}

func parseError(s string, target PrimitiveType, err error) error {
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return status.New(status.ErrCodeOutOfRange, "%q does not fit in %s", s, target)
	}
	return status.New(status.ErrCodeParseFailed, "cannot parse %q as %s", s, target)
}

// ParseValue parses text as a non-null primitive of type t.
func ParseValue(text string, t PrimitiveType) (*Value, error) {
	if t == PrimitiveTypeString {
		return NewString(text), nil
	}
	v := &Value{}
	if err := parseInto(v, text, t); err != nil {
		return nil, err
	}
	return v, nil
}
