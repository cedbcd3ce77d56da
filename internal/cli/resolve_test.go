package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "resolve", schemaFile("widgets.yaml"), "Widget", "Width", "Items[2].Name")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "resolve_json", []byte(out))
}

func TestResolveText(t *testing.T) {
	out, err := execute(t, "resolve", schemaFile("widgets.cue"), "Widget", "Size.Height", "Items[0].Price")
	require.NoError(t, err)

	assert.Contains(t, out, "Size.Height\n")
	assert.Contains(t, out, "Items[0].Price\n")
	assert.Contains(t, out, "Array Index")
	assert.Contains(t, out, "Item")
	assert.Contains(t, out, "Price")
}

func TestResolveRepeatedAccessString(t *testing.T) {
	out, err := execute(t, "--format", "json", "resolve", schemaFile("widgets.yaml"), "Widget", "Items[1]", "Items[1]")
	require.NoError(t, err)

	var resp struct {
		Data []ResolveResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, resp.Data[0], resp.Data[1])
}

func TestResolveUnknownProperty(t *testing.T) {
	out, err := execute(t, "resolve", schemaFile("widgets.yaml"), "Widget", "Bogus")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [PROPERTY_NOT_FOUND]")
}

func TestResolveMalformed(t *testing.T) {
	out, err := execute(t, "--format", "json", "resolve", schemaFile("widgets.yaml"), "Widget", "Items[x]")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MALFORMED_ACCESS_STRING", resp.Error.Code)
}

func TestResolveUnknownClass(t *testing.T) {
	out, err := execute(t, "resolve", schemaFile("widgets.yaml"), "Gizmo", "Width")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [CLASS_NOT_FOUND]")
}

func TestResolveRejectsInvalidSchema(t *testing.T) {
	out, err := execute(t, "resolve", schemaFile("invalid.yaml"), "Shape", "Area")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeInvalidSchema+"]")
}
