package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRegistered(t *testing.T) {
	err := New("E100")
	assert.Equal(t, CategoryConfig, err.Category)
	assert.Equal(t, "Invalid log level", err.Message)
	assert.Contains(t, err.Error(), "E100: Invalid log level")
}

func TestNewUnknownCode(t *testing.T) {
	err := New("E999")
	assert.Equal(t, "E999: Unknown error", err.Error())
}

func TestWrapUnwrap(t *testing.T) {
	err := New("E120").Wrap(fs.ErrNotExist)

	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, "E120: Config file could not be read: file does not exist", err.Error())
}

func TestDetailAndSuggestion(t *testing.T) {
	err := New("E101").
		WithDetail(`"nope" is not host:port`).
		WithSuggestion(`Use ":8080"`)

	assert.Equal(t, `E101: Invalid listen address: "nope" is not host:port`, err.Error())
	out := err.Format()
	assert.Contains(t, out, "ERROR E101")
	assert.Contains(t, out, "hint: Use \":8080\"")
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil, "E200"))

	coded := New("E203")
	assert.Same(t, coded, FromError(fmt.Errorf("ctx: %w", coded), "E200"))

	plain := stderrors.New("boom")
	wrapped := FromError(plain, "E200")
	assert.Equal(t, "E200", wrapped.Code)
	assert.ErrorIs(t, wrapped, plain)
}

func TestIs(t *testing.T) {
	inner := New("E121")
	outer := New("E200").Wrap(fmt.Errorf("loading: %w", inner))

	assert.True(t, Is(outer, "E200"))
	assert.True(t, Is(outer, "E121"))
	assert.False(t, Is(outer, "E100"))
	assert.False(t, Is(stderrors.New("plain"), "E100"))
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "bad value %d", 3)
	assert.Equal(t, "bad value 3", err.Error())
}
