package failure_test

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"medbot-backend/failure"
)

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "bad request", err: failure.BadRequest(errors.New("x")), code: http.StatusBadRequest},
		{name: "bad request from string", err: failure.BadRequestFromString("x"), code: http.StatusBadRequest},
		{name: "unauthorized", err: failure.Unauthorized("x"), code: http.StatusUnauthorized},
		{name: "not found", err: failure.NotFound("x"), code: http.StatusNotFound},
		{name: "internal", err: failure.InternalError(errors.New("x")), code: http.StatusInternalServerError},
		{name: "wrapped", err: errors.Wrap(failure.SessionNotFound, "ctx"), code: http.StatusNotFound},
		{name: "plain error", err: errors.New("plain"), code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
		})
	}
}

func TestNilPassThrough(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
	assert.NoError(t, failure.InternalError(nil))
}

func TestFailure_Error(t *testing.T) {
	assert.Equal(t, "session not found", failure.SessionNotFound.Error())
}
