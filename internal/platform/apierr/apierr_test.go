package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Invalid("x"), http.StatusBadRequest},
		{NotFound("x"), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{Internal("x"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ToHTTPStatus(c.err))
	}
}

func TestToHTTPStatusUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("loading contract: %w", NotFound("contract not found"))
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(wrapped))
}

func TestBodyEnvelope(t *testing.T) {
	body := Body(Conflictf("duplicate %s", "email"))
	dto, ok := body.(errorDTO)
	assert.True(t, ok)
	assert.Equal(t, CodeConflict, dto.Error.Code)
	assert.Equal(t, "duplicate email", dto.Error.Message)
}
