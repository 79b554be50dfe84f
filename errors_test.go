package harmony_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jvdsande/harmony"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		assert.Equal(t, "harmony: Book not found", harmony.NewNotFoundError("Book", nil).Error())
		assert.Equal(t, "harmony: Book not found (_id=b1)", harmony.NewNotFoundError("Book", "b1").Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := harmony.NewNotFoundError("Post", 1)
		assert.True(t, errors.Is(err, harmony.ErrNotFound))
		assert.Equal(t, "Post", err.Model())
		assert.Equal(t, 1, err.ID())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := harmony.NewNotFoundError("Comment", nil)
		assert.True(t, harmony.IsNotFound(err))
		assert.True(t, harmony.IsNotFound(fmt.Errorf("wrapper: %w", err)))
		assert.True(t, harmony.IsNotFound(harmony.ErrNotFound))
		assert.False(t, harmony.IsNotFound(errors.New("other error")))
		assert.False(t, harmony.IsNotFound(nil))
	})
}

func TestConstraintError(t *testing.T) {
	inner := errors.New("duplicate")
	err := harmony.NewConstraintError("title must be unique", inner)
	assert.Equal(t, "harmony: constraint failed: title must be unique", err.Error())
	assert.True(t, harmony.IsConstraintError(err))
	assert.ErrorIs(t, err, inner)
	assert.False(t, harmony.IsConstraintError(nil))
}

func TestValidationError(t *testing.T) {
	err := harmony.NewValidationError("record", errors.New("missing _id"))
	assert.Equal(t, `harmony: invalid "record": missing _id`, err.Error())
	assert.True(t, harmony.IsValidationError(fmt.Errorf("wrap: %w", err)))
	assert.False(t, harmony.IsValidationError(errors.New("x")))
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", harmony.NewNotFoundError("Book", nil), http.StatusNotFound},
		{"constraint", harmony.NewConstraintError("dup", nil), http.StatusConflict},
		{"validation", harmony.NewValidationError("a", errors.New("b")), http.StatusBadRequest},
		{"wrapped", fmt.Errorf("x: %w", harmony.NewNotFoundError("Book", nil)), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, harmony.StatusOf(tt.err))
		})
	}
}

func TestAdapterError(t *testing.T) {
	inner := errors.New("connection refused")
	err := &harmony.AdapterError{Adapter: "sql", Op: "initialize", Err: inner}
	assert.Equal(t, `harmony: adapter "sql": initialize: connection refused`, err.Error())
	assert.ErrorIs(t, err, inner)
	assert.True(t, harmony.IsAdapterError(fmt.Errorf("w: %w", err)))
}

func TestAggregateError(t *testing.T) {
	assert.Nil(t, harmony.NewAggregateError(nil, nil))

	single := errors.New("one")
	assert.Equal(t, single, harmony.NewAggregateError(nil, single))

	a, b := errors.New("a"), errors.New("b")
	err := harmony.NewAggregateError(a, b)
	assert.Equal(t, "harmony: multiple errors:\n  [1] a\n  [2] b", err.Error())
	assert.ErrorIs(t, err, b)
}
