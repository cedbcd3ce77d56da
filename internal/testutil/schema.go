package testutil

import (
	_ "embed"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ecvalue/internal/schema"
)

// WidgetsYAML is the shared test schema. Widget layout indices:
//
//	1 Label  2 Count  3 Width  4 Tags[]  5 Items[] (Item)
//	6 Size (embedded): 7 Size.Height  8 Size.Depth
//	9 Owner (navigation)  10 Created  11 Serial (read-only)
//	12 Extras[] (Entry, ad-hoc)  13 Corners[4] (fixed size)
//
// Item: 1 Name  2 Quantity  3 Price.
//
//go:embed testdata/widgets.yaml
var WidgetsYAML []byte

// WidgetEnablers parses WidgetsYAML and fails the test if it does not
// validate.
func WidgetEnablers(t testing.TB) *schema.Enablers {
	t.Helper()
	s, err := schema.ParseYAML(WidgetsYAML)
	require.NoError(t, err)
	require.Empty(t, schema.Validate(s))
	return schema.NewEnablers(s)
}

// WidgetEnabler returns the enabler of one class of WidgetsYAML.
func WidgetEnabler(t testing.TB, className string) *schema.ClassEnabler {
	t.Helper()
	e, err := WidgetEnablers(t).Enabler(className)
	require.NoError(t, err)
	return e
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
