package schema

import (
	"fmt"
	"regexp"

	"github.com/roach88/ecvalue/internal/value"
)

// Validation error codes (E200-E299)
const (
	ErrEmptyName            = "E201" // class, property or relationship without a name
	ErrDuplicateName        = "E202" // duplicate class/property/relationship name
	ErrInvalidName          = "E203" // name not usable as an access string segment
	ErrUnknownPrimitiveType = "E204" // primitive type name not recognised
	ErrUnknownStructClass   = "E205" // struct property names a missing class
	ErrNotStructClass       = "E206" // struct property names a non-struct class
	ErrInvalidOccurs        = "E207" // occurs bounds invalid or set on a non-array
	ErrInvalidAdHocSpec     = "E208" // ad-hoc marker names missing or mistyped members
	ErrEmbeddedStructCycle  = "E209" // embedded struct contains itself
	ErrUnknownRelationship  = "E210" // navigation property names a missing relationship
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string   `json:"field"`
	Message string   `json:"message"`
	Code    string   `json:"code"`
	Path    []string `json:"path,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// namePattern accepts identifiers made of letters, digits and underscores,
// not starting with a digit. Dots and brackets are reserved for access strings.
var namePattern = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)

// Validate checks a schema. Returns all errors found (does not fail-fast).
func Validate(s *Schema) []ValidationError {
	var errs []ValidationError

	relNames := make(map[string]bool)
	for i, r := range s.Relationships {
		field := fmt.Sprintf("relationships[%d]", i)
		errs = append(errs, validateName(field, "relationship", r.Name)...)
		if relNames[r.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate relationship name: %q", r.Name),
				Code:    ErrDuplicateName,
			})
		}
		relNames[r.Name] = true
	}

	classNames := make(map[string]bool)
	for i, c := range s.Classes {
		field := fmt.Sprintf("classes[%d]", i)
		errs = append(errs, validateName(field, "class", c.Name)...)
		if classNames[c.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate class name: %q", c.Name),
				Code:    ErrDuplicateName,
			})
		}
		classNames[c.Name] = true
	}

	for i, c := range s.Classes {
		errs = append(errs, validateClass(s, c, fmt.Sprintf("classes[%d]", i))...)
	}

	for _, cycle := range AnalyzeEmbeddingCycles(s) {
		errs = append(errs, ValidationError{
			Field:   "classes." + cycle.Path[0],
			Message: cycle.Message,
			Code:    ErrEmbeddedStructCycle,
			Path:    cycle.Path,
		})
	}

	return errs
}

func validateName(field, what, name string) []ValidationError {
	if name == "" {
		return []ValidationError{{
			Field:   field + ".name",
			Message: what + " name is required",
			Code:    ErrEmptyName,
		}}
	}
	if !namePattern.MatchString(name) {
		return []ValidationError{{
			Field:   field + ".name",
			Message: fmt.Sprintf("invalid %s name %q: use letters, digits and underscores", what, name),
			Code:    ErrInvalidName,
		}}
	}
	return nil
}

func validateClass(s *Schema, c *Class, field string) []ValidationError {
	var errs []ValidationError

	propNames := make(map[string]bool)
	for j, p := range c.Properties {
		pfield := fmt.Sprintf("%s.properties[%d]", field, j)
		errs = append(errs, validateName(pfield, "property", p.Name)...)
		if propNames[p.Name] {
			errs = append(errs, ValidationError{
				Field:   pfield,
				Message: fmt.Sprintf("duplicate property name %q in class %q", p.Name, c.Name),
				Code:    ErrDuplicateName,
			})
		}
		propNames[p.Name] = true
		errs = append(errs, validateProperty(s, p, pfield)...)
	}

	if c.AdHoc != nil {
		errs = append(errs, validateAdHoc(c, field+".adhoc")...)
	}
	return errs
}

func validateProperty(s *Schema, p *Property, field string) []ValidationError {
	var errs []ValidationError

	switch p.Kind {
	case PropertyKindPrimitive, PropertyKindPrimitiveArray:
		if p.PrimitiveType == value.PrimitiveTypeNone {
			errs = append(errs, ValidationError{
				Field:   field + ".type",
				Message: fmt.Sprintf("unknown primitive type %q for property %q", p.TypeName, p.Name),
				Code:    ErrUnknownPrimitiveType,
			})
		}
	case PropertyKindStruct, PropertyKindStructArray:
		target := s.Class(p.StructClass)
		switch {
		case target == nil:
			errs = append(errs, ValidationError{
				Field:   field + ".struct",
				Message: fmt.Sprintf("struct class %q not found", p.StructClass),
				Code:    ErrUnknownStructClass,
			})
		case !target.IsStruct:
			errs = append(errs, ValidationError{
				Field:   field + ".struct",
				Message: fmt.Sprintf("class %q is not a struct class", p.StructClass),
				Code:    ErrNotStructClass,
			})
		}
	case PropertyKindNavigation:
		if s.Relationship(p.Relationship) == nil {
			errs = append(errs, ValidationError{
				Field:   field + ".navigation",
				Message: fmt.Sprintf("relationship %q not found", p.Relationship),
				Code:    ErrUnknownRelationship,
			})
		}
	}

	if !p.IsArray() && (p.MinOccurs != 0 || p.MaxOccurs != 0) {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("occurs bounds set on non-array property %q", p.Name),
			Code:    ErrInvalidOccurs,
		})
	}
	if p.MaxOccurs != 0 && p.MinOccurs > p.MaxOccurs {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("minOccurs %d exceeds maxOccurs %d", p.MinOccurs, p.MaxOccurs),
			Code:    ErrInvalidOccurs,
		})
	}
	return errs
}

func validateAdHoc(c *Class, field string) []ValidationError {
	var errs []ValidationError
	if !c.IsStruct {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("ad-hoc marker on non-struct class %q", c.Name),
			Code:    ErrInvalidAdHocSpec,
		})
	}

	for _, role := range AdHocRoles {
		member := c.AdHoc.Member(role)
		if member == "" {
			if role == AdHocRoleName || role == AdHocRoleValue {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.%s", field, role),
					Message: fmt.Sprintf("ad-hoc %s member is required", role),
					Code:    ErrInvalidAdHocSpec,
				})
			}
			continue
		}
		p := c.Property(member)
		if p == nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.%s", field, role),
				Message: fmt.Sprintf("ad-hoc %s member %q not found in class %q", role, member, c.Name),
				Code:    ErrInvalidAdHocSpec,
			})
			continue
		}
		want := value.PrimitiveTypeString
		if role == AdHocRoleIsReadOnly || role == AdHocRoleIsHidden {
			want = value.PrimitiveTypeBoolean
		}
		if p.Kind != PropertyKindPrimitive || p.PrimitiveType != want {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.%s", field, role),
				Message: fmt.Sprintf("ad-hoc %s member %q must be a %s property", role, member, want),
				Code:    ErrInvalidAdHocSpec,
			})
		}
	}
	return errs
}
