package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Internal(sql.ErrConnDone), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Status())
	}
}

func TestFromHidesInternalDetails(t *testing.T) {
	e := From(fmt.Errorf("query users: %w", sql.ErrConnDone))

	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, "Server error", e.PublicMessage())
	assert.True(t, errors.Is(e, sql.ErrConnDone))
}

func TestFromKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("pay: %w", Forbidden("You do not own this bill"))

	e := From(wrapped)

	assert.Equal(t, http.StatusForbidden, e.Status())
	assert.Equal(t, "You do not own this bill", e.PublicMessage())
	assert.True(t, errors.Is(wrapped, ErrForbidden))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
}
