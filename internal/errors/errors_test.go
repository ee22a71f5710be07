package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("quantity", -1.0, "must be a positive number")

	assert.Equal(t, "validation error: quantity (-1): must be a positive number", err.Error())
	assert.True(t, IsInvalidInput(err))
	assert.False(t, IsUnknownSymbol(err))

	wrapped := fmt.Errorf("add holding: %w", err)
	assert.True(t, IsInvalidInput(wrapped))

	var ve *ValidationError
	assert.True(t, As(wrapped, &ve))
	assert.Equal(t, "quantity", ve.Field)
}

func TestSymbolError(t *testing.T) {
	tests := []struct {
		op   string
		want string
	}{
		{"", `unknown symbol "DOGE"`},
		{"create alert", `create alert: unknown symbol "DOGE"`},
	}

	for _, tt := range tests {
		err := NewSymbolError(tt.op, "DOGE")
		assert.Equal(t, tt.want, err.Error())
		assert.True(t, IsUnknownSymbol(err))
		assert.True(t, Is(fmt.Errorf("wrap: %w", err), ErrUnknownSymbol))
		assert.False(t, IsInvalidInput(err))
	}
}
