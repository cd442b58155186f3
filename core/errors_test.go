package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError(errors.New("invalid input"), FieldError{Field: "phone", Error: "required"})

	var vErr *ValidationError
	if assert.True(t, errors.As(err, &vErr)) {
		assert.Equal(t, "invalid input", vErr.Error())
		assert.Len(t, vErr.Fields, 1)
		assert.Equal(t, "phone", vErr.Fields[0].Field)
	}
	assert.Empty(t, (&ValidationError{}).Error())
}

func TestIsShutdown(t *testing.T) {
	err := NewShutdownError("integrity issue")
	assert.True(t, IsShutdown(err))
	assert.True(t, IsShutdown(errors.Wrap(err, "handling request")), "wrapped shutdown errors must still be detected")
	assert.False(t, IsShutdown(errors.New("boom")))
}
