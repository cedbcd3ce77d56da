package status

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := New(ErrCodeParseFailed, "cannot parse %q as int", "abc")
	assert.Equal(t, `PARSE_FAILED: cannot parse "abc" as int`, err.Error())

	bare := &Error{Code: ErrCodeReadOnly}
	assert.Equal(t, "READ_ONLY", bare.Error())
}

func TestIsHandlesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("resolve path: %w", PropertyNotFound("Bogus"))

	assert.True(t, IsPropertyNotFound(err))
	assert.False(t, IsClassNotFound(err))
	assert.Equal(t, ErrCodePropertyNotFound, CodeOf(err))
}

func TestIsNonStatusError(t *testing.T) {
	assert.False(t, Is(errors.New("plain"), ErrCodePropertyNotFound))
	assert.False(t, Is(nil, ErrCodePropertyNotFound))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}

func TestDetails(t *testing.T) {
	err := IndexOutOfRange(5, 3)
	assert.Equal(t, "5", err.Details["index"])
	assert.Equal(t, "3", err.Details["count"])

	cls := ClassNotFound("Widget")
	assert.Equal(t, "Widget", cls.Details["class"])
}
