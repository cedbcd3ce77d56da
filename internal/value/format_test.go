package value

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ecvalue/internal/status"
)

// wkbPoint encodes a little-endian Well-Known Binary point.
func wkbPoint(x, y float64) []byte {
	b := []byte{0x01, 0x01, 0x00, 0x00, 0x00}
	b = binary.LittleEndian.AppendUint64(b, math.Float64bits(x))
	return binary.LittleEndian.AppendUint64(b, math.Float64bits(y))
}

func TestStringRendering(t *testing.T) {
	utc, err := NewDateTime(time.Date(2024, 3, 1, 10, 20, 30, 500_000_000, time.UTC), DateTimeInfo{Kind: DateTimeKindUTC})
	require.NoError(t, err)
	date, err := NewDateTime(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), DateTimeInfo{Component: DateTimeComponentDate})
	require.NoError(t, err)

	structVal := New()
	structVal.SetStruct(&refProbe{id: "s"})
	array := New()
	array.SetPrimitiveArrayInfo(PrimitiveTypeString, 4, true)
	nav := New()
	nav.SetNavigationInfoWithID(12, 3)
	nullNav := New()
	nullNav.SetNavigationInfoWithID(0, 3)

	cases := []struct {
		name string
		v    *Value
	}{
		{"null", New()},
		{"typed null", NewOfType(PrimitiveTypeInteger)},
		{"integer", NewInteger(-12)},
		{"long", NewLong(9_000_000_000)},
		{"double", NewDouble(0.1)},
		{"large double", NewDouble(1e21)},
		{"not a number", NewDouble(math.NaN())},
		{"boolean", NewBoolean(true)},
		{"point2d", NewPoint2d(Point2d{1.5, -2})},
		{"point3d", NewPoint3d(Point3d{0, 0.5, 3})},
		{"utc dateTime", utc},
		{"date", date},
		{"string", NewString("héllo")},
		{"binary", NewBinary([]byte{1, 2, 3}, true)},
		{"struct", structVal},
		{"array", array},
		{"navigation", nav},
		{"null navigation", nullNav},
	}

	var buf bytes.Buffer
	for _, c := range cases {
		fmt.Fprintf(&buf, "%s: %s\n", c.name, c.v.String())
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "render", buf.Bytes())
}

func TestGeometry(t *testing.T) {
	v := New()
	require.NoError(t, v.SetIGeometry(wkbPoint(1, 2), true))
	assert.True(t, v.IsIGeometry())
	assert.Contains(t, v.String(), "POINT")

	g, err := v.Geometry()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, g.FlatCoords())
}

func TestGeometryRejectsInvalidBytes(t *testing.T) {
	v := NewInteger(9)
	err := v.SetIGeometry([]byte{0xde, 0xad}, true)
	require.Error(t, err)
	assert.Equal(t, status.ErrCodeInvalidGeometry, status.CodeOf(err))
	assert.Equal(t, int32(9), v.Integer(), "rejected geometry leaves the value intact")

	require.NoError(t, v.SetIGeometry(nil, false))
	assert.True(t, v.IsIGeometry())
	assert.True(t, v.IsNull())
	_, err = v.Geometry()
	assert.Error(t, err)
}

func TestRoundTripThroughString(t *testing.T) {
	for _, v := range []*Value{
		NewInteger(-5),
		NewLong(1 << 50),
		NewDouble(math.Pi),
		NewDouble(1e-300),
		NewBoolean(false),
		NewPoint3d(Point3d{0.1, 0.2, 0.3}),
	} {
		parsed, err := ParseValue(v.String(), v.PrimitiveType())
		require.NoError(t, err, v.String())
		assert.True(t, v.Equals(parsed), v.String())
	}
}
