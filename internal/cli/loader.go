package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/ecvalue/internal/schema"
)

// Error code constants - unified across all CLI commands. Failures raised by
// the value, accessor and instance packages are reported with their status
// code instead (PROPERTY_NOT_FOUND, PARSE_FAILED, ...).
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeUnsupported   = "E002" // Unsupported schema file extension
	ErrCodeBadArgument   = "E003" // Malformed flag or argument
	ErrCodeLoadFailed    = "E004" // Schema or remap file could not be decoded
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeInvalidSchema = "E006" // Schema loaded but failed validation
)

// LoadError represents an error that occurred while loading an input file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSchema reads a schema file without validating it.
func LoadSchema(path string) (*schema.Schema, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue", ".yaml", ".yml":
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unsupported schema file: %s (want .cue, .yaml or .yml)", path)}
	}

	s, err := schema.Load(path)
	if err != nil {
		return nil, convertLoadError(err)
	}
	return s, nil
}

// LoadEnablers reads and validates a schema file and returns its enablers.
func LoadEnablers(path string) (*schema.Enablers, error) {
	s, err := LoadSchema(path)
	if err != nil {
		return nil, err
	}
	if errs := schema.Validate(s); len(errs) > 0 {
		return nil, &LoadError{
			Code:    ErrCodeInvalidSchema,
			Message: fmt.Sprintf("schema %s has %d validation error(s), first: %s", path, len(errs), errs[0].Error()),
		}
	}
	return schema.NewEnablers(s), nil
}

// LoadRemap reads a YAML remap table.
func LoadRemap(path string) (*schema.RemapTable, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	t, err := schema.LoadRemapTable(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	}
	return t, nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
	}
	if err != nil {
		return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", path, err)}
	}
	if info.IsDir() {
		return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("is a directory: %s", path)}
	}
	return nil
}

// convertLoadError keeps the source position of CUE compile errors.
func convertLoadError(err error) *LoadError {
	var compileErr *schema.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeLoadFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}
