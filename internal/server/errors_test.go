package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-path/internal/types"
)

func TestErrEmailAlreadyExists(t *testing.T) {
	err := &ErrEmailAlreadyExists{Email: "test@example.com"}
	assert.Equal(t, "email already registered: test@example.com", err.Error())
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
}

func TestErrInvalidCredentials(t *testing.T) {
	err := &ErrInvalidCredentials{}
	assert.Equal(t, "invalid email or password", err.Error())
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
}

func TestErrUserNotFound(t *testing.T) {
	err := &ErrUserNotFound{UserID: 17}
	assert.Equal(t, "user not found: 17", err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Message: "invalid request", Fields: map[string]string{"email": "is required"}}
	assert.Equal(t, "validation error: invalid request (email is required)", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))

	bare := &ErrValidation{Message: "bad body"}
	assert.Equal(t, "validation error: bad body", bare.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"ErrEmailAlreadyExists", &ErrEmailAlreadyExists{Email: "a@b.c"}, http.StatusConflict},
		{"ErrInvalidCredentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"ErrUserNotFound", &ErrUserNotFound{UserID: 1}, http.StatusNotFound},
		{"ErrNotFound", &ErrNotFound{Resource: "learning path"}, http.StatusNotFound},
		{"ErrValidation", &ErrValidation{Message: "x"}, http.StatusBadRequest},
		{"ErrUnsupportedMedia", &ErrUnsupportedMedia{Message: "x"}, http.StatusBadRequest},
		{"wrapped", fmt.Errorf("outer: %w", &ErrNotFound{Resource: "x"}), http.StatusNotFound},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "bad_request", errorCode(http.StatusBadRequest))
	assert.Equal(t, "unauthorized", errorCode(http.StatusUnauthorized))
	assert.Equal(t, "rate_limit_exceeded", errorCode(http.StatusTooManyRequests))
	assert.Equal(t, "payload_too_large", errorCode(http.StatusRequestEntityTooLarge))
	assert.Equal(t, "internal_error", errorCode(http.StatusBadGateway))
}

func TestNewValidationError(t *testing.T) {
	in := types.CareerInput{YearsExperience: -1}
	err := in.Validate()
	require.Error(t, err)

	ve := newValidationError(err)
	assert.Equal(t, "invalid request", ve.Message)
	assert.Equal(t, "is required", ve.Fields["education"])
	assert.Equal(t, "is required", ve.Fields["skills"])
	assert.Equal(t, "must be greater than or equal to 0", ve.Fields["years_experience"])
}

func TestNewValidationError_NonValidatorError(t *testing.T) {
	ve := newValidationError(errors.New("something else"))
	assert.Equal(t, "something else", ve.Message)
	assert.Empty(t, ve.Fields)
}

func TestJSONFieldName(t *testing.T) {
	assert.Equal(t, "years_experience", jsonFieldName("YearsExperience"))
	assert.Equal(t, "email", jsonFieldName("Email"))
	assert.Equal(t, "completed_phases", jsonFieldName("CompletedPhases"))
}
