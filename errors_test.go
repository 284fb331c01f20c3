package nibard_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibard/nibard"
)

func TestUnsupportedError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := nibard.NewUnsupportedError("alter table rename column", "")
		assert.Equal(t, "nibard: alter table rename column is not supported", err.Error())

		err = nibard.NewUnsupportedError("value kind", "postgres")
		assert.Equal(t, "nibard: value kind is not supported (postgres)", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := nibard.NewUnsupportedError("x", "")
		assert.True(t, errors.Is(err, nibard.ErrUnsupported))
	})

	t.Run("IsUnsupported", func(t *testing.T) {
		err := nibard.NewUnsupportedError("x", "")
		assert.True(t, nibard.IsUnsupported(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, nibard.IsUnsupported(wrapped))

		// Sentinel error
		assert.True(t, nibard.IsUnsupported(nibard.ErrUnsupported))

		// Non-matching error
		assert.False(t, nibard.IsUnsupported(errors.New("other error")))
		assert.False(t, nibard.IsUnsupported(nil))
	})
}

func TestConversionError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := nibard.NewConversionError("Text", "int32", nil)
		assert.Equal(t, "nibard: cannot convert Text to int32", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		underlying := errors.New("overflow")
		err := nibard.NewConversionError("BigInt", "int16", underlying)
		assert.True(t, errors.Is(err, underlying))
		assert.True(t, errors.Is(err, nibard.ErrConversion))
		assert.Contains(t, err.Error(), "overflow")
	})

	t.Run("IsConversionError", func(t *testing.T) {
		err := nibard.NewConversionError("Bool", "float64", nil)
		assert.True(t, nibard.IsConversionError(fmt.Errorf("wrapper: %w", err)))
		assert.False(t, nibard.IsConversionError(errors.New("other error")))
		assert.False(t, nibard.IsConversionError(nil))
	})
}

func TestFormatError(t *testing.T) {
	underlying := errors.New("disk full")
	err := &nibard.FormatError{Err: underlying}
	assert.Equal(t, "nibard: writing sql: disk full", err.Error())
	assert.True(t, errors.Is(err, underlying))
	assert.True(t, nibard.IsFormatError(fmt.Errorf("wrapper: %w", err)))
	assert.False(t, nibard.IsFormatError(underlying))
	assert.False(t, nibard.IsFormatError(nil))
}

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		assert.Equal(t, "nibard: no rows in todos", nibard.NewNotFoundError("todos").Error())
		assert.Equal(t, "nibard: no rows", nibard.NewNotFoundError("").Error())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := nibard.NewNotFoundError("todos")
		assert.True(t, errors.Is(err, nibard.ErrNotFound))
		assert.True(t, nibard.IsNotFound(fmt.Errorf("wrapper: %w", err)))
		assert.True(t, nibard.IsNotFound(nibard.ErrNotFound))
		assert.False(t, nibard.IsNotFound(errors.New("other error")))
		assert.False(t, nibard.IsNotFound(nil))
		assert.Equal(t, "todos", err.Table())
	})
}

func TestConstraintError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := nibard.NewConstraintError("UNIQUE constraint failed", nil)
		assert.Equal(t, "nibard: constraint failed: UNIQUE constraint failed", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		underlying := errors.New("db error")
		err := nibard.NewConstraintError("constraint violated", underlying)
		assert.True(t, errors.Is(err, underlying))
	})

	t.Run("IsConstraintError", func(t *testing.T) {
		err := nibard.NewConstraintError("check failed", nil)
		assert.True(t, nibard.IsConstraintError(err))
		assert.True(t, nibard.IsConstraintError(fmt.Errorf("wrapper: %w", err)))
		assert.False(t, nibard.IsConstraintError(errors.New("other error")))
		assert.False(t, nibard.IsConstraintError(nil))
	})
}

func TestQueryError(t *testing.T) {
	underlying := errors.New("connection reset")
	err := nibard.NewQueryError("query", "SELECT 1", underlying)
	assert.Equal(t, `nibard: query "SELECT 1": connection reset`, err.Error())
	assert.True(t, errors.Is(err, underlying))
	assert.True(t, nibard.IsQueryError(fmt.Errorf("wrapper: %w", err)))
	assert.False(t, nibard.IsQueryError(underlying))
}

func TestAggregateError(t *testing.T) {
	t.Run("NoErrors", func(t *testing.T) {
		assert.Nil(t, nibard.NewAggregateError())
		assert.Nil(t, nibard.NewAggregateError(nil, nil))
	})

	t.Run("SingleError", func(t *testing.T) {
		single := errors.New("single error")
		assert.Equal(t, single, nibard.NewAggregateError(nil, single))
	})

	t.Run("MultipleErrors", func(t *testing.T) {
		err1 := errors.New("error 1")
		err2 := nibard.NewUnsupportedError("x", "")
		err := nibard.NewAggregateError(err1, err2)

		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "multiple errors")
		assert.Contains(t, err.Error(), "error 1")
		assert.True(t, errors.Is(err, err1))
		assert.True(t, nibard.IsUnsupported(err))
	})
}
