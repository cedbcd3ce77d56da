package schema

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RemapTable renames classes and properties between two versions of a schema.
//
//	classes:
//	  OldWidget: Widget
//	properties:
//	  Widget:            # class name in the new schema
//	    Label: Caption   # old access string: new access string
//	    Size: Extent     # also renames "Size.Width" to "Extent.Width"
type RemapTable struct {
	Classes    map[string]string            `yaml:"classes"`
	Properties map[string]map[string]string `yaml:"properties"`
}

// LoadRemapTable reads a YAML remap table.
func LoadRemapTable(path string) (*RemapTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read remap table: %w", err)
	}
	return ParseRemapTable(data)
}

// ParseRemapTable decodes a YAML remap table, rejecting unknown fields.
func ParseRemapTable(data []byte) (*RemapTable, error) {
	var raw RemapTable
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse remap table: %w", err)
	}

	t := &RemapTable{
		Classes:    make(map[string]string, len(raw.Classes)),
		Properties: make(map[string]map[string]string, len(raw.Properties)),
	}
	for from, to := range raw.Classes {
		t.Classes[normalizeName(from)] = normalizeName(to)
	}
	for class, renames := range raw.Properties {
		m := make(map[string]string, len(renames))
		for from, to := range renames {
			m[normalizeName(from)] = normalizeName(to)
		}
		t.Properties[normalizeName(class)] = m
	}
	return t, nil
}

// ResolveClassName returns the new name of a class, or the name unchanged.
func (t *RemapTable) ResolveClassName(className string) string {
	className = normalizeName(className)
	if to, ok := t.Classes[className]; ok {
		return to
	}
	return className
}

// ResolvePropertyName returns the new access string of a property of
// className (a class of the new schema). The longest renamed prefix on a
// segment boundary wins; unmatched access strings are returned unchanged.
func (t *RemapTable) ResolvePropertyName(className, accessString string) string {
	accessString = normalizeName(accessString)
	renames := t.Properties[normalizeName(className)]
	if len(renames) == 0 {
		return accessString
	}

	prefix := accessString
	for {
		if to, ok := renames[prefix]; ok {
			return to + accessString[len(prefix):]
		}
		i := strings.LastIndexByte(prefix, '.')
		if i < 0 {
			return accessString
		}
		prefix = prefix[:i]
	}
}
