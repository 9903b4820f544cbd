package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWith(t *testing.T) {
	t.Parallel()

	base := errors.New("failed opening store")

	serr := With(base, "store_type", "scylla")
	assert.Equal(t, "failed opening store", serr.Error())
	assert.Equal(t, map[string]any{"store_type": "scylla"}, serr.Metadata())
	assert.ErrorIs(t, serr, base)

	merged := With(serr, "store_type", "sqlite", "path", "/tmp/db")
	assert.Equal(t, map[string]any{"store_type": "sqlite", "path": "/tmp/db"}, merged.Metadata())
	assert.Equal(t, map[string]any{"store_type": "scylla"}, serr.Metadata())

	assert.PanicsWithValue(t, "an even number of fields is required", func() {
		_ = With(base, "key")
	})
	assert.PanicsWithValue(t, "keys must be strings", func() {
		_ = With(base, 1, 2)
	})
}

func TestWithCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	serr := NewWithCause("failed opening store", cause, "store_type", "mysql")
	assert.Equal(t, "failed opening store", serr.Error())
	assert.Equal(t, cause, serr.Cause())
	assert.ErrorIs(t, serr, cause)

	hinted := WithHint(serr, "check the DSN")
	assert.Equal(t, cause, hinted.Cause())
	assert.Equal(t, map[string]any{"store_type": "mysql", "hint": "check the DSN"}, hinted.Metadata())

	wrapped := fmt.Errorf("command failed: %w", hinted)
	var target *StructuredError
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "check the DSN", target.Metadata()["hint"])

	other := errors.New("timeout")
	recaused := WithCause(hinted, other)
	assert.Equal(t, other, recaused.Cause())
	assert.NotErrorIs(t, recaused, cause)
}

func TestNewWith(t *testing.T) {
	t.Parallel()

	serr := NewWith("migrations directory already exists", "path", "./migrations")
	assert.EqualError(t, serr, "migrations directory already exists")
	assert.Nil(t, serr.Cause())
	assert.Nil(t, StructuredError{err: errors.New("x")}.Metadata())
}
