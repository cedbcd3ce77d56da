package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ecvalue/internal/status"
)

func loadWidgets(t *testing.T) *Enablers {
	t.Helper()
	s, err := LoadYAML("testdata/widgets.yaml")
	require.NoError(t, err)
	require.Empty(t, Validate(s))
	return NewEnablers(s)
}

func widgetEnabler(t *testing.T) *ClassEnabler {
	t.Helper()
	e, err := loadWidgets(t).Enabler("Widget")
	require.NoError(t, err)
	return e
}

func TestClassEnabler_Layout(t *testing.T) {
	e := widgetEnabler(t)

	assert.Equal(t, "Widget", e.ClassName())
	assert.Equal(t, uint32(13), e.PropertyCount())

	for access, want := range map[string]uint32{
		"Label":       1,
		"Width":       3,
		"Items":       5,
		"Size":        6,
		"Size.Height": 7,
		"Size.Depth":  8,
		"Owner":       9,
		"Corners":     13,
	} {
		got, err := e.PropertyIndex(access)
		require.NoError(t, err, access)
		assert.Equal(t, want, got, access)

		back, err := e.AccessString(got)
		require.NoError(t, err)
		assert.Equal(t, access, back)
	}
}

func TestClassEnabler_PropertyNotFound(t *testing.T) {
	e := widgetEnabler(t)

	_, err := e.PropertyIndex("Bogus")
	require.Error(t, err)
	assert.True(t, status.IsPropertyNotFound(err))

	_, err = e.PropertyIndex("Height")
	assert.True(t, status.IsPropertyNotFound(err), "embedded members need their dotted access string")

	_, err = e.AccessString(0)
	assert.True(t, status.IsPropertyNotFound(err))
	_, err = e.AccessString(99)
	assert.True(t, status.IsPropertyNotFound(err))
	assert.Nil(t, e.LookupProperty(0))
}

func TestClassEnabler_SiblingIteration(t *testing.T) {
	e := widgetEnabler(t)

	var top []uint32
	for i := e.FirstPropertyIndex(0); i != 0; i = e.NextPropertyIndex(0, i) {
		top = append(top, i)
	}
	assert.Equal(t, []uint32{1, 2, 3, 4, 5, 6, 9, 10, 11, 12, 13}, top)

	var members []uint32
	for i := e.FirstPropertyIndex(6); i != 0; i = e.NextPropertyIndex(6, i) {
		members = append(members, i)
	}
	assert.Equal(t, []uint32{7, 8}, members)

	assert.Equal(t, uint32(0), e.FirstPropertyIndex(1), "primitive has no members")
	assert.Equal(t, uint32(0), e.NextPropertyIndex(0, 7), "wrong parent ends iteration")
}

func TestClassEnabler_ParentAndStrip(t *testing.T) {
	e := widgetEnabler(t)

	assert.Equal(t, uint32(6), e.ParentPropertyIndex(7))
	assert.Equal(t, uint32(0), e.ParentPropertyIndex(6))
	assert.Equal(t, "Height", StripParent(e, 7))
	assert.Equal(t, "Size", StripParent(e, 6))
	assert.Equal(t, "", StripParent(e, 0))
}

func TestClassEnabler_LookupProperty(t *testing.T) {
	e := widgetEnabler(t)

	owner := e.LookupProperty(9)
	require.NotNil(t, owner)
	assert.Equal(t, PropertyKindNavigation, owner.Property.Kind)
	require.NotNil(t, owner.Relationship)
	assert.Equal(t, uint64(7), owner.Relationship.ID)

	corners := e.LookupProperty(13)
	require.NotNil(t, corners)
	assert.True(t, corners.Property.IsFixedSize())
	assert.Equal(t, "Corners", corners.Name())

	items := e.LookupProperty(5)
	assert.Equal(t, PropertyKindStructArray, items.Property.Kind)
	assert.False(t, items.Property.IsFixedSize())
}

func TestClassEnabler_StructArrayMember(t *testing.T) {
	e := widgetEnabler(t)

	item, err := e.EnablerForStructArrayMember("Item")
	require.NoError(t, err)
	idx, err := item.PropertyIndex("Name")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), idx)

	again, err := e.EnablerForStructArrayMember("Item")
	require.NoError(t, err)
	assert.Same(t, item, again, "enablers are cached per class")

	_, err = e.EnablerForStructArrayMember("Widget")
	assert.True(t, status.Is(err, status.ErrCodeDataTypeMismatch))

	_, err = e.EnablerForStructArrayMember("Nope")
	assert.True(t, status.IsClassNotFound(err))
}

func TestClassEnabler_AdHocSpec(t *testing.T) {
	enablers := loadWidgets(t)

	entry, err := enablers.Enabler("Entry")
	require.NoError(t, err)
	spec := entry.AdHocSpec()
	require.NotNil(t, spec)
	assert.Equal(t, "Name", spec.Member(AdHocRoleName))
	assert.Equal(t, "Hidden", spec.Member(AdHocRoleIsHidden))
	assert.Equal(t, "", spec.Member(AdHocRoleDisplayLabel))

	widget, err := enablers.Enabler("Widget")
	require.NoError(t, err)
	assert.Nil(t, widget.AdHocSpec())
}

func TestEnablers_UnknownClass(t *testing.T) {
	_, err := loadWidgets(t).Enabler("Gadget")
	assert.True(t, status.IsClassNotFound(err))
}

func TestEnablers_SelfEmbeddingCannotBeLaidOut(t *testing.T) {
	s, err := ParseYAML([]byte(`
schema: Loops
classes:
  - name: Node
    struct: true
    properties:
      - name: Child
        struct: Node
`))
	require.NoError(t, err)

	_, err = NewEnablers(s).Enabler("Node")
	assert.True(t, status.Is(err, status.ErrCodeInvalidSchema))
}

func TestEnablers_NamesAreNormalized(t *testing.T) {
	// "Cafe" + combining acute accent in the file, precomposed in lookups.
	s, err := ParseYAML([]byte("schema: N\nclasses:\n  - name: Menu\n    properties:\n      - name: \"Cafe\\u0301\"\n        type: string\n"))
	require.NoError(t, err)

	e, err := NewEnablers(s).Enabler("Menu")
	require.NoError(t, err)
	idx, err := e.PropertyIndex("Café")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), idx)
}
