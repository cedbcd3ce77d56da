package accessor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ecvalue/internal/accessor"
	"github.com/roach88/ecvalue/internal/instance"
	"github.com/roach88/ecvalue/internal/schema"
	"github.com/roach88/ecvalue/internal/status"
	"github.com/roach88/ecvalue/internal/testutil"
	"github.com/roach88/ecvalue/internal/value"
)

func resolve(t *testing.T, w *instance.MemoryInstance, path string) *accessor.ValueAccessor {
	t.Helper()
	a := accessor.New()
	require.NoError(t, a.PopulateValueAccessorForInstance(w, path, true))
	return a
}

func TestGetSetUsingAccessor_NestedElement(t *testing.T) {
	w := newWidget(t)
	require.NoError(t, w.AddArrayElements(5, 3))

	a := resolve(t, w, "Items[2].Price")
	require.NoError(t, accessor.SetValueUsingAccessor(w, a, value.NewDouble(9.75)))

	v := value.New()
	require.NoError(t, accessor.GetValueUsingAccessor(w, v, a))
	assert.Equal(t, 9.75, v.Double())

	other := value.New()
	require.NoError(t, accessor.GetValueUsingAccessor(w, other, resolve(t, w, "Items[1].Price")))
	assert.True(t, other.IsNull())
}

func TestGetUsingAccessor_Errors(t *testing.T) {
	w := newWidget(t)
	require.NoError(t, w.AddArrayElements(5, 1))

	err := accessor.GetValueUsingAccessor(w, value.New(), accessor.New())
	assert.True(t, status.Is(err, status.ErrCodeInvalidAccessor), "empty accessors address nothing")

	err = accessor.GetValueUsingAccessor(w, value.New(), resolve(t, w, "Items[4].Name"))
	assert.True(t, status.Is(err, status.ErrCodeIndexOutOfRange))

	null := value.New()
	null.SetStruct(nil)
	require.NoError(t, w.SetValue(5, null, 0))
	err = accessor.GetValueUsingAccessor(w, value.New(), resolve(t, w, "Items[0].Name"))
	assert.True(t, status.Is(err, status.ErrCodeInvalidAccessor), "null elements have no members")
}

func TestGetUsingAccessor_RebindsAcrossEnablers(t *testing.T) {
	// Two registries built from the same schema produce distinct enablers.
	w := newWidget(t)
	set(t, w, "Size.Depth", value.NewDouble(3))

	foreign := testutil.WidgetEnabler(t, "Widget")
	a := accessor.New()
	require.NoError(t, a.PopulateValueAccessor(foreign, "Size.Depth"))
	require.NotSame(t, foreign, w.Enabler())

	v := value.New()
	require.NoError(t, accessor.GetValueUsingAccessor(w, v, a))
	assert.Equal(t, 3.0, v.Double())
}

func TestPopulateForInstance_AdHocFallback(t *testing.T) {
	w := newWidget(t)
	extras, err := instance.NewAdHocProperties(w, "Extras")
	require.NoError(t, err)
	require.NoError(t, extras.Add("Colour", value.NewString("red"), instance.AdHocOptions{}))
	require.NoError(t, extras.Add("Torque", value.NewDouble(12.5), instance.AdHocOptions{}))

	a := accessor.New()
	require.NoError(t, a.PopulateValueAccessorForInstance(w, "Torque", true))
	assert.True(t, a.IsAdHoc())
	require.Equal(t, 1, a.Depth())
	assert.Equal(t, accessor.Location{Enabler: w.Enabler(), PropertyIndex: 12, ArrayIndex: 1}, a.Location(0))

	v := value.New()
	require.NoError(t, accessor.GetValueUsingAccessor(w, v, a))
	assert.Equal(t, 12.5, v.Double())

	err = a.PopulateValueAccessorForInstance(w, "Torque", false)
	assert.True(t, status.IsPropertyNotFound(err), "ad-hoc search is opt-in")
	assert.Equal(t, 0, a.Depth())

	err = a.PopulateValueAccessorForInstance(w, "Weight", true)
	assert.True(t, status.IsPropertyNotFound(err))
	assert.False(t, a.IsAdHoc())
}

func TestPopulateForInstance_DeclaredPropertiesWin(t *testing.T) {
	w := newWidget(t)
	extras, err := instance.NewAdHocProperties(w, "Extras")
	require.NoError(t, err)
	require.NoError(t, extras.Add("Width", value.NewString("shadowed"), instance.AdHocOptions{}))

	a := accessor.New()
	require.NoError(t, a.PopulateValueAccessorForInstance(w, "Width", true))
	assert.False(t, a.IsAdHoc())
	assert.Equal(t, uint32(3), a.Location(0).PropertyIndex)
}

func TestPopulateForInstance_MalformedIsNotSearched(t *testing.T) {
	w := newWidget(t)
	a := accessor.New()
	err := a.PopulateValueAccessorForInstance(w, "Items[", true)
	assert.True(t, status.Is(err, status.ErrCodeMalformedAccessString))
}

func TestRemapValueAccessor(t *testing.T) {
	oldSchema, err := schema.ParseYAML(testutil.WidgetsYAML)
	require.NoError(t, err)
	oldWidget, err := schema.NewEnablers(oldSchema).Enabler("Widget")
	require.NoError(t, err)

	newSchema, err := schema.ParseYAML([]byte(`
schema: Widgets2
classes:
  - name: Gadget
    properties:
      - name: Caption
        type: string
      - name: Parts
        struct: Part
        array: true
      - name: Extent
        struct: Size
  - name: Part
    struct: true
    properties:
      - name: Cost
        type: double
      - name: Title
        type: string
  - name: Size
    struct: true
    properties:
      - name: Height
        type: double
      - name: Thickness
        type: double
`))
	require.NoError(t, err)
	require.Empty(t, schema.Validate(newSchema))
	gadget, err := schema.NewEnablers(newSchema).Enabler("Gadget")
	require.NoError(t, err)

	table, err := schema.ParseRemapTable([]byte(`
classes:
  Widget: Gadget
  Item: Part
properties:
  Gadget:
    Label: Caption
    Items: Parts
    Size: Extent
    Size.Depth: Extent.Thickness
  Part:
    Name: Title
`))
	require.NoError(t, err)

	remap := func(path string) (*accessor.ValueAccessor, error) {
		a := accessor.New()
		require.NoError(t, a.PopulateValueAccessor(oldWidget, path))
		return accessor.RemapValueAccessor(a, gadget, table)
	}

	for old, want := range map[string]string{
		"Label":         "Caption",
		"Items[3].Name": "Parts[3].Title",
		"Size.Height":   "Extent.Height",
		"Size.Depth":    "Extent.Thickness",
	} {
		got, err := remap(old)
		require.NoError(t, err, old)
		assert.Equal(t, want, got.AccessString(), old)
	}

	_, err = remap("Width")
	assert.True(t, status.IsPropertyNotFound(err))

	_, err = remap("Items[0].Quantity")
	assert.True(t, status.IsPropertyNotFound(err))

	item, err := oldWidget.EnablerForStructArrayMember("Item")
	require.NoError(t, err)
	a := accessor.New()
	a.PushLocation(item, 1, -1)
	_, err = accessor.RemapValueAccessor(a, gadget, table)
	assert.True(t, status.IsClassNotFound(err), "root class must map to the new root")
}
