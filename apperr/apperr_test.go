package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("loading order: %w", NotFound("order"))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestBelowMinimumCarriesAmounts(t *testing.T) {
	err := BelowMinimum(15, 12)
	assert.Equal(t, "minimum order amount is $15.00, current subtotal is $12.00", err.Error())

	ext := err.Extensions()
	assert.Equal(t, "BELOW_MINIMUM", ext["code"])
	assert.Equal(t, 15.0, ext["minimum"])
	assert.Equal(t, 12.0, ext["subtotal"])
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Internal(cause)
	assert.Equal(t, "internal server error", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err.Kind))
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))
	orig := Forbidden("nope")
	assert.Same(t, orig, From(fmt.Errorf("ctx: %w", orig)))
	assert.Equal(t, KindInternal, From(errors.New("x")).Kind)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindUnauthenticated: http.StatusUnauthorized,
		KindForbidden:       http.StatusForbidden,
		KindNotFound:        http.StatusNotFound,
		KindInvalidInput:    http.StatusBadRequest,
		KindAlreadyAssigned: http.StatusConflict,
		KindConflict:        http.StatusConflict,
		KindInvalidState:    http.StatusUnprocessableEntity,
		KindBelowMinimum:    http.StatusUnprocessableEntity,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), kind)
	}
}
