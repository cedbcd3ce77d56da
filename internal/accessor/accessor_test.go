package accessor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ecvalue/internal/accessor"
	"github.com/roach88/ecvalue/internal/schema"
	"github.com/roach88/ecvalue/internal/status"
	"github.com/roach88/ecvalue/internal/testutil"
)

func enablers(t *testing.T) (widget, item schema.Enabler) {
	t.Helper()
	all := testutil.WidgetEnablers(t)
	w, err := all.Enabler("Widget")
	require.NoError(t, err)
	i, err := all.Enabler("Item")
	require.NoError(t, err)
	return w, i
}

func TestPopulate_PlainProperty(t *testing.T) {
	widget, _ := enablers(t)
	a := accessor.New()

	require.NoError(t, a.PopulateValueAccessor(widget, "Width"))
	require.Equal(t, 1, a.Depth())
	assert.Equal(t, accessor.Location{Enabler: widget, PropertyIndex: 3, ArrayIndex: -1}, a.Location(0))
	assert.False(t, a.IsAdHoc())
}

func TestPopulate_ArrayElement(t *testing.T) {
	widget, _ := enablers(t)
	a := accessor.New()

	require.NoError(t, a.PopulateValueAccessor(widget, "Items[2]"))
	require.Equal(t, 1, a.Depth())
	assert.Equal(t, accessor.Location{Enabler: widget, PropertyIndex: 5, ArrayIndex: 2}, a.Location(0))
}

func TestPopulate_StructArrayMember(t *testing.T) {
	widget, item := enablers(t)
	a := accessor.New()

	require.NoError(t, a.PopulateValueAccessor(widget, "Items[2].Name"))
	require.Equal(t, 2, a.Depth())
	assert.Equal(t, accessor.Location{Enabler: widget, PropertyIndex: 5, ArrayIndex: 2}, a.Location(0))
	assert.Equal(t, accessor.Location{Enabler: item, PropertyIndex: 1, ArrayIndex: -1}, a.LastLocation())
	assert.Equal(t, "Items[2].Name", a.AccessString())
}

func TestPopulate_EmbeddedMember(t *testing.T) {
	widget, _ := enablers(t)
	a := accessor.New()

	require.NoError(t, a.PopulateValueAccessor(widget, "Size.Height"))
	require.Equal(t, 1, a.Depth())
	assert.Equal(t, uint32(7), a.Location(0).PropertyIndex)
}

func TestPopulate_NotFoundLeavesAccessorEmpty(t *testing.T) {
	widget, _ := enablers(t)
	a := accessor.New()
	a.PushLocation(widget, 1, -1)

	err := a.PopulateValueAccessor(widget, "Bogus")
	assert.True(t, status.IsPropertyNotFound(err))
	assert.Equal(t, 0, a.Depth())

	err = a.PopulateValueAccessor(widget, "Items[0].Bogus")
	assert.True(t, status.IsPropertyNotFound(err))
	assert.Equal(t, 0, a.Depth(), "partial paths are discarded")
}

func TestPopulate_Malformed(t *testing.T) {
	widget, _ := enablers(t)

	for _, path := range []string{
		"",
		"Items[2",
		"Items[x]",
		"Items[-1]",
		"Items[2]Name",
		"Items[2].",
		"[2]",
		"Items]",
	} {
		a := accessor.New()
		err := a.PopulateValueAccessor(widget, path)
		assert.True(t, status.Is(err, status.ErrCodeMalformedAccessString), "%q: %v", path, err)
		assert.Equal(t, 0, a.Depth(), path)
	}
}

func TestPopulate_BracketsNeedArrays(t *testing.T) {
	widget, _ := enablers(t)
	a := accessor.New()

	err := a.PopulateValueAccessor(widget, "Width[0]")
	assert.True(t, status.Is(err, status.ErrCodeDataTypeMismatch))

	err = a.PopulateValueAccessor(widget, "Tags[0].Length")
	assert.True(t, status.Is(err, status.ErrCodeDataTypeMismatch), "primitive array elements have no members")
}

func TestPushAndPop(t *testing.T) {
	widget, item := enablers(t)
	a := accessor.New()

	require.NoError(t, a.PushLocationByName(widget, "Items", 0))
	require.NoError(t, a.PushLocationByName(item, "Price", -1))
	assert.Equal(t, "Items[0].Price", a.AccessString())

	err := a.PushLocationByName(item, "Colour", -1)
	assert.True(t, status.IsPropertyNotFound(err))
	assert.Equal(t, 2, a.Depth(), "failed push leaves the accessor unchanged")

	a.PopLocation()
	assert.Equal(t, "Items[0]", a.AccessString())
	a.PopLocation()
	a.PopLocation()
	assert.Equal(t, 0, a.Depth())
}

func TestEqualsAndClone(t *testing.T) {
	widget, _ := enablers(t)
	a := accessor.New()
	require.NoError(t, a.PopulateValueAccessor(widget, "Items[1].Quantity"))

	b := a.Clone()
	assert.True(t, a.Equals(b))

	b.PopLocation()
	assert.False(t, a.Equals(b))
	assert.Equal(t, 2, a.Depth(), "clones are independent")

	c := accessor.New()
	require.NoError(t, c.PopulateValueAccessor(widget, "Items[2].Quantity"))
	assert.False(t, a.Equals(c), "array indices differ")
}

func TestString(t *testing.T) {
	widget, _ := enablers(t)
	a := accessor.New()
	assert.Equal(t, "<empty>", a.String())

	require.NoError(t, a.PopulateValueAccessor(widget, "Items[2].Name"))
	assert.Equal(t, "Widget:5[2] / Item:1[-1]", a.String())

	ad := accessor.NewAdHoc(widget, 12, 0)
	assert.True(t, ad.IsAdHoc())
	assert.Equal(t, "Widget:12[0] (ad-hoc)", ad.String())
}

func TestResolver_CachesSuccessfulLookups(t *testing.T) {
	widget, _ := enablers(t)
	r, err := accessor.NewResolver(0)
	require.NoError(t, err)

	a, err := r.Resolve(widget, "Items[1].Name")
	require.NoError(t, err)
	b, err := r.Resolve(widget, "Items[1].Name")
	require.NoError(t, err)

	assert.True(t, a.Equals(b))
	assert.NotSame(t, a, b, "callers get their own copy")
	assert.Equal(t, 1, r.Len())

	_, err = r.Resolve(widget, "Bogus")
	assert.True(t, status.IsPropertyNotFound(err))
	assert.Equal(t, 1, r.Len(), "failures are not cached")

	a.PopLocation()
	c, err := r.Resolve(widget, "Items[1].Name")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Depth())
}
