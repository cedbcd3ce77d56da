package instance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ecvalue/internal/instance"
	"github.com/roach88/ecvalue/internal/status"
	"github.com/roach88/ecvalue/internal/value"
)

func extras(t *testing.T, w *instance.MemoryInstance) *instance.AdHocProperties {
	t.Helper()
	p, err := instance.NewAdHocProperties(w, "Extras")
	require.NoError(t, err)
	return p
}

func TestNewAdHocProperties_RequiresMarkedContainer(t *testing.T) {
	w := newWidget(t)

	_, err := instance.NewAdHocProperties(w, "Items")
	assert.True(t, status.Is(err, status.ErrCodeDataTypeMismatch))

	_, err = instance.NewAdHocProperties(w, "Label")
	assert.True(t, status.Is(err, status.ErrCodeDataTypeMismatch))

	_, err = instance.NewAdHocProperties(w, "Nope")
	assert.True(t, status.IsPropertyNotFound(err))
}

func TestAdHoc_AddAndRead(t *testing.T) {
	w := newWidget(t)
	p := extras(t, w)

	require.NoError(t, p.Add("Torque", value.NewDouble(12.5), instance.AdHocOptions{Unit: "Nm"}))
	require.NoError(t, p.Add("Batch", value.NewInteger(7), instance.AdHocOptions{ReadOnly: true, Hidden: true}))
	assert.Equal(t, 2, p.Count())

	i, err := p.PropertyIndex("Batch")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	name, err := p.Name(0)
	require.NoError(t, err)
	assert.Equal(t, "Torque", name)

	v := value.New()
	require.NoError(t, p.GetValue(v, 0))
	assert.True(t, v.IsDouble(), "stored text is converted back to the recorded type")
	assert.Equal(t, 12.5, v.Double())

	require.NoError(t, p.GetValue(v, 1))
	assert.Equal(t, int32(7), v.Integer())

	ro, err := p.IsReadOnly(1)
	require.NoError(t, err)
	assert.True(t, ro)
	hidden, err := p.IsHidden(0)
	require.NoError(t, err)
	assert.False(t, hidden)

	_, err = p.PropertyIndex("Missing")
	assert.True(t, status.IsPropertyNotFound(err))
}

func TestAdHoc_DuplicateName(t *testing.T) {
	p := extras(t, newWidget(t))
	require.NoError(t, p.Add("Torque", value.NewDouble(1), instance.AdHocOptions{}))

	err := p.Add("Torque", value.NewDouble(2), instance.AdHocOptions{})
	assert.True(t, status.Is(err, status.ErrCodeDuplicateName))
	assert.Equal(t, 1, p.Count())
}

func TestAdHoc_FailedAddIsRolledBack(t *testing.T) {
	p := extras(t, newWidget(t))
	require.NoError(t, p.Add("Kept", value.NewInteger(1), instance.AdHocOptions{}))

	// Entry has no display label member.
	err := p.Add("Labelled", value.NewInteger(2), instance.AdHocOptions{DisplayLabel: "Nice"})
	require.Error(t, err)

	assert.Equal(t, 1, p.Count())
	_, err = p.PropertyIndex("Labelled")
	assert.True(t, status.IsPropertyNotFound(err))
}

func TestAdHoc_SetValueRespectsReadOnly(t *testing.T) {
	p := extras(t, newWidget(t))
	require.NoError(t, p.Add("Mutable", value.NewInteger(1), instance.AdHocOptions{}))
	require.NoError(t, p.Add("Frozen", value.NewInteger(1), instance.AdHocOptions{ReadOnly: true}))

	require.NoError(t, p.SetValue(0, value.NewInteger(5)))
	v := value.New()
	require.NoError(t, p.GetValue(v, 0))
	assert.Equal(t, int32(5), v.Integer())

	err := p.SetValue(1, value.NewInteger(5))
	assert.True(t, status.Is(err, status.ErrCodeReadOnly))
}

func TestAdHoc_ReachableByAccessString(t *testing.T) {
	w := newWidget(t)
	p := extras(t, w)
	require.NoError(t, p.Add("Torque", value.NewDouble(3), instance.AdHocOptions{}))

	v := value.New()
	require.NoError(t, w.GetValueByAccessString(v, "Torque"))
	assert.Equal(t, 3.0, v.Double())

	require.NoError(t, w.SetValueByAccessString("Torque", value.NewDouble(4)))
	require.NoError(t, p.GetValue(v, 0))
	assert.Equal(t, 4.0, v.Double())
}

func TestAdHoc_RemoveAndClear(t *testing.T) {
	p := extras(t, newWidget(t))
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, p.Add(name, value.NewString(name), instance.AdHocOptions{}))
	}

	require.NoError(t, p.Remove(1))
	name, err := p.Name(1)
	require.NoError(t, err)
	assert.Equal(t, "C", name)

	assert.True(t, status.Is(p.Remove(5), status.ErrCodeIndexOutOfRange))

	require.NoError(t, p.Clear())
	assert.Equal(t, 0, p.Count())
}

func TestAdHoc_CopyFrom(t *testing.T) {
	src := extras(t, newWidget(t))
	require.NoError(t, src.Add("Torque", value.NewDouble(12.5), instance.AdHocOptions{Unit: "Nm", Hidden: true}))
	require.NoError(t, src.Add("Batch", value.NewInteger(7), instance.AdHocOptions{ReadOnly: true}))

	dst := extras(t, newWidget(t))
	require.NoError(t, dst.Add("Stale", value.NewInteger(0), instance.AdHocOptions{}))

	require.NoError(t, dst.CopyFrom(src))
	require.Equal(t, 2, dst.Count())

	v := value.New()
	require.NoError(t, dst.GetValue(v, 0))
	assert.Equal(t, 12.5, v.Double())
	hidden, err := dst.IsHidden(0)
	require.NoError(t, err)
	assert.True(t, hidden)
	ro, err := dst.IsReadOnly(1)
	require.NoError(t, err)
	assert.True(t, ro)

	require.NoError(t, dst.CopyFrom(dst), "copying onto itself is a no-op")
	assert.Equal(t, 2, dst.Count())
}
