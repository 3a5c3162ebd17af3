package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidationParsesFields(t *testing.T) {
	err := NewValidation([]string{
		"intensity: 12.00 outside [1, 10]",
		"player_id: required for PLAYER_CHARACTER scope",
		"no colon here",
	})

	assert.Equal(t, CodeValidationFailed, err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, []string{"intensity", "player_id", "no colon here"}, err.Fields)
	assert.Contains(t, err.Detail, "intensity")
	assert.Contains(t, err.Detail, "; ")
}

func TestNewNotFoundCodes(t *testing.T) {
	assert.Equal(t, CodeMotifNotFound, NewNotFound("motif", "m1").Code)
	assert.Equal(t, CodeConflictNotFound, NewNotFound("conflict", "c1").Code)
	assert.Equal(t, CodeNotFound, NewNotFound("widget", "w1").Code)
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidQuery, http.StatusBadRequest},
		{CodeMotifNotFound, http.StatusNotFound},
		{CodeVersionConflict, http.StatusConflict},
		{CodeValidationFailed, http.StatusUnprocessableEntity},
		{CodeServiceUnavailable, http.StatusServiceUnavailable},
		{CodeStorageError, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(tt.code, "x").HTTPStatus, string(tt.code))
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewStorage(cause, "motifs.insert")

	assert.Equal(t, CodeStorageError, err.Code)
	assert.Equal(t, "motifs.insert", err.Detail)
	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAsAppError(t *testing.T) {
	app := NewInvalidQuery("bad shape")
	assert.Same(t, app, AsAppError(app))

	wrapped := AsAppError(fmt.Errorf("plain"))
	require.NotNil(t, wrapped)
	assert.Equal(t, CodeUnknown, wrapped.Code)
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("motif", "m1")))
	assert.False(t, IsNotFound(NewInvalidQuery("x")))
	assert.False(t, IsNotFound(fmt.Errorf("plain")))

	assert.True(t, IsVersionConflict(NewVersionConflict("m1", 3)))
	assert.False(t, IsVersionConflict(NewNotFound("motif", "m1")))
}
