package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpText(t *testing.T) {
	out, err := execute(t, "dump", schemaFile("widgets.yaml"), "Widget",
		"--array", "Items=2",
		"--array", "Tags=1",
		"--adhoc", "Extras:Torque:double=12.5",
		"--set", "Label=gear",
		"--set", "Items[1].Name=bolt",
		"--set", "Items[1].Quantity=40",
		"--set", "Tags[0]=steel",
		"--set", "Size.Height=1.5",
		"--set", "Torque=13",
		"--set", "Corners[0]=1,2",
		"--set", "Created=2024-01-02T03:04:05Z",
	)
	require.NoError(t, err)

	newGoldie(t).Assert(t, "dump_text", []byte(out))
}

func TestDumpJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "dump", schemaFile("widgets.yaml"), "Widget",
		"--set", "Serial=S-1",
		"--set", "Count=7",
	)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   DumpResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Widget", resp.Data.Class)
	assert.Equal(t, "Widget-1", resp.Data.ID)

	byPath := make(map[string]DumpNode)
	for _, n := range resp.Data.Values {
		byPath[n.AccessString] = n
	}

	serial := byPath["Serial"]
	require.NotNil(t, serial.Value)
	assert.Equal(t, "S-1", *serial.Value)
	assert.True(t, serial.ReadOnly)
	assert.Equal(t, "string", serial.Type)

	count := byPath["Count"]
	require.NotNil(t, count.Value)
	assert.Equal(t, "7", *count.Value)
	assert.Equal(t, "int", count.Type)
	assert.Equal(t, "primitive", count.Kind)

	width := byPath["Width"]
	assert.Nil(t, width.Value)
	assert.Equal(t, "double", width.Type)

	items := byPath["Items"]
	assert.Equal(t, "array", items.Kind)
	assert.Equal(t, 0, items.Depth)
}

func TestDumpNestedArrayEdit(t *testing.T) {
	// Items[0] has no arrays, but the path must reach the element before
	// the edit is rejected for the right reason.
	out, err := execute(t, "dump", schemaFile("widgets.yaml"), "Widget",
		"--array", "Items=1",
		"--array", "Items[0].Name=2",
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [DATA_TYPE_MISMATCH]")
}

func TestDumpNullLiteral(t *testing.T) {
	out, err := execute(t, "dump", schemaFile("widgets.yaml"), "Widget",
		"--set", "Width=2.5",
		"--set", "Width=<null>",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Width = <null>\n")
}

func TestDumpEditErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
		exit int
	}{
		{"unparsable literal", []string{"--set", "Count=many"}, "PARSE_FAILED", ExitFailure},
		{"out of range literal", []string{"--set", "Count=99999999999"}, "OUT_OF_RANGE", ExitFailure},
		{"element out of range", []string{"--set", "Tags[3]=x"}, "INDEX_OUT_OF_RANGE", ExitFailure},
		{"fixed size array", []string{"--array", "Corners=1"}, "FIXED_SIZE_ARRAY", ExitFailure},
		{"struct is not settable", []string{"--array", "Items=1", "--set", "Items[0]=x"}, "DATA_TYPE_MISMATCH", ExitFailure},
		{"duplicate ad-hoc", []string{"--adhoc", "Extras:A=1", "--adhoc", "Extras:A=2"}, "DUPLICATE_NAME", ExitFailure},
		{"ad-hoc container", []string{"--adhoc", "Items:A=1"}, "DATA_TYPE_MISMATCH", ExitFailure},
		{"unknown property", []string{"--set", "Weight=3"}, "PROPERTY_NOT_FOUND", ExitFailure},
		{"missing equals", []string{"--set", "Width"}, ErrCodeBadArgument, ExitCommandError},
		{"bad count", []string{"--array", "Items=two"}, ErrCodeBadArgument, ExitCommandError},
		{"bad ad-hoc key", []string{"--adhoc", "Torque=1"}, ErrCodeBadArgument, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "json", "dump", schemaFile("widgets.yaml"), "Widget"}, tt.args...)
			out, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.exit, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}
