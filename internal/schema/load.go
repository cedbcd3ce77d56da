package schema

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/ecvalue/internal/value"
)

// Load reads a schema file, choosing the decoder by extension
// (.cue, .yaml or .yml). The result is not validated; call Validate.
func Load(path string) (*Schema, error) {
	var (
		s   *Schema
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		s, err = LoadCUE(path)
	case ".yaml", ".yml":
		s, err = LoadYAML(path)
	default:
		return nil, fmt.Errorf("unsupported schema file extension %q", ext)
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("schema loaded", "path", path, "schema", s.Name, "classes", len(s.Classes))
	return s, nil
}

// schemaDoc is the file shape shared by the YAML and CUE loaders.
type schemaDoc struct {
	Name          string            `yaml:"schema"`
	Relationships []relationshipDoc `yaml:"relationships"`
	Classes       []classDoc        `yaml:"classes"`
}

type relationshipDoc struct {
	Name string `yaml:"name"`
	ID   uint64 `yaml:"id"`
}

type classDoc struct {
	Name       string        `yaml:"name"`
	Struct     bool          `yaml:"struct"`
	AdHoc      *adHocDoc     `yaml:"adhoc"`
	Properties []propertyDoc `yaml:"properties"`
}

type propertyDoc struct {
	Name         string `yaml:"name"`
	Type         string `yaml:"type"`
	Struct       string `yaml:"struct"`
	Array        bool   `yaml:"array"`
	Navigation   string `yaml:"navigation"`
	ReadOnly     bool   `yaml:"readOnly"`
	MinOccurs    uint32 `yaml:"minOccurs"`
	MaxOccurs    uint32 `yaml:"maxOccurs"`
	ExtendedType string `yaml:"extendedType"`
}

type adHocDoc struct {
	Name         string `yaml:"name"`
	Value        string `yaml:"value"`
	Type         string `yaml:"type"`
	Unit         string `yaml:"unit"`
	DisplayLabel string `yaml:"displayLabel"`
	ExtendedType string `yaml:"extendedType"`
	IsReadOnly   string `yaml:"isReadOnly"`
	IsHidden     string `yaml:"isHidden"`
}

// build converts the file shape to the model. Names are NFC-normalised.
// Unknown primitive type names are kept in TypeName for Validate to report.
func (d *schemaDoc) build() *Schema {
	s := &Schema{Name: normalizeName(d.Name)}

	for _, r := range d.Relationships {
		s.Relationships = append(s.Relationships, &value.RelationshipClass{Name: normalizeName(r.Name), ID: r.ID})
	}

	for _, cd := range d.Classes {
		c := &Class{Name: normalizeName(cd.Name), IsStruct: cd.Struct}
		if cd.AdHoc != nil {
			c.AdHoc = &AdHocSpec{
				Name:         normalizeName(cd.AdHoc.Name),
				Value:        normalizeName(cd.AdHoc.Value),
				Type:         normalizeName(cd.AdHoc.Type),
				Unit:         normalizeName(cd.AdHoc.Unit),
				DisplayLabel: normalizeName(cd.AdHoc.DisplayLabel),
				ExtendedType: normalizeName(cd.AdHoc.ExtendedType),
				IsReadOnly:   normalizeName(cd.AdHoc.IsReadOnly),
				IsHidden:     normalizeName(cd.AdHoc.IsHidden),
			}
		}
		for _, pd := range cd.Properties {
			c.Properties = append(c.Properties, pd.build())
		}
		s.Classes = append(s.Classes, c)
	}
	return s
}

func (pd *propertyDoc) build() *Property {
	p := &Property{
		Name:         normalizeName(pd.Name),
		TypeName:     pd.Type,
		ReadOnly:     pd.ReadOnly,
		MinOccurs:    pd.MinOccurs,
		MaxOccurs:    pd.MaxOccurs,
		ExtendedType: pd.ExtendedType,
	}
	switch {
	case pd.Navigation != "":
		p.Kind = PropertyKindNavigation
		p.Relationship = normalizeName(pd.Navigation)
	case pd.Struct != "" && pd.Array:
		p.Kind = PropertyKindStructArray
		p.StructClass = normalizeName(pd.Struct)
	case pd.Struct != "":
		p.Kind = PropertyKindStruct
		p.StructClass = normalizeName(pd.Struct)
	case pd.Array:
		p.Kind = PropertyKindPrimitiveArray
	default:
		p.Kind = PropertyKindPrimitive
	}
	if p.Kind == PropertyKindPrimitive || p.Kind == PropertyKindPrimitiveArray {
		if t, err := value.ParsePrimitiveType(pd.Type); err == nil {
			p.PrimitiveType = t
		}
	}
	return p
}

func normalizeName(s string) string {
	return norm.NFC.String(s)
}
