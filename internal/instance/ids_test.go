package instance_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ecvalue/internal/instance"
	"github.com/roach88/ecvalue/internal/testutil"
)

func TestSequenceGenerator(t *testing.T) {
	g := instance.NewSequenceGenerator("Widget")
	assert.Equal(t, "Widget-1", g.Generate())
	assert.Equal(t, "Widget-2", g.Generate())
}

func TestSequenceGenerator_Concurrent(t *testing.T) {
	g := instance.NewSequenceGenerator("x")
	var wg sync.WaitGroup
	ids := make([]string, 50)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i] = g.Generate()
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 50)
}

func TestUUIDv7Generator(t *testing.T) {
	id := instance.UUIDv7Generator{}.Generate()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestNew_DefaultsToUUIDv7(t *testing.T) {
	m := instance.New(testutil.WidgetEnabler(t, "Widget"), instance.WithLogger(testutil.QuietLogger()))
	defer m.Release()

	parsed, err := uuid.Parse(m.InstanceID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestNew_UsesInjectedGenerator(t *testing.T) {
	m := newWidget(t)
	defer m.Release()
	assert.Equal(t, "w-1", m.InstanceID())
}
