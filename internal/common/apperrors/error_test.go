package apperrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorChaining(t *testing.T) {
	ErrBase := New("base error")
	assert.Equal(t, "base error", ErrBase.Error())
	assert.ErrorIs(t, ErrBase, ErrBase)

	ErrDerived := ErrBase.New("derived")
	assert.Equal(t, "derived", ErrDerived.Error())
	assert.ErrorIs(t, ErrDerived, ErrBase)

	cause := errors.New("connection reset")
	wrapped := ErrDerived.MsgErr("request failed", cause)
	assert.Equal(t, "request failed", wrapped.Error())
	assert.ErrorIs(t, wrapped, ErrBase)
	assert.ErrorIs(t, wrapped, ErrDerived)
	assert.ErrorIs(t, wrapped, cause)

	goErr := fmt.Errorf("plain error")
	attached := ErrDerived.Err(goErr)
	assert.Equal(t, "derived", attached.Error())
	assert.ErrorIs(t, attached, goErr)
}

func TestErrorAll(t *testing.T) {
	ErrBase := New("base error")
	cause := errors.New("cause")
	wrapped := ErrBase.MsgErr("outer", cause)
	assert.Equal(t, "outer: base error: cause", wrapped.ErrorAll())
	assert.Equal(t, "base error", ErrBase.ErrorAll())
}

func TestStatusCode(t *testing.T) {
	ErrBase := New("base error").SetStatusCode(http.StatusBadGateway)
	assert.Equal(t, http.StatusBadGateway, ErrBase.StatusCode())

	// derived errors inherit the code
	derived := ErrBase.New("derived")
	assert.Equal(t, http.StatusBadGateway, derived.StatusCode())

	// setting a code does not mutate the original
	changed := ErrBase.SetStatusCode(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, changed.StatusCode())
	assert.Equal(t, http.StatusBadGateway, ErrBase.StatusCode())
	assert.ErrorIs(t, changed, ErrBase)
}
