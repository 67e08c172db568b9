package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodeValidation, "aadhar number must be 12 digits")
	assert.True(t, HasCode(err, CodeValidation))
	assert.False(t, HasCode(err, CodeNetwork))
	assert.False(t, HasCode(nil, CodeValidation))
	assert.False(t, HasCode(errors.New("plain"), CodeValidation))
}

func TestHasCode_ThroughWrapping(t *testing.T) {
	cause := New(CodeTimeout, "deadline exceeded")
	err := fmt.Errorf("submit account: %w", cause)
	assert.True(t, HasCode(err, CodeTimeout))
	assert.Equal(t, CodeTimeout, CodeOf(err))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeNetwork, "account service unreachable")
	require.ErrorIs(t, err, cause)
	assert.Equal(t, "account service unreachable: connection refused", err.Error())
	assert.Equal(t, CodeNetwork, CodeOf(err))
}

func TestCodeOf_DefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("something else")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeBadRequest, http.StatusBadRequest},
		{CodeMissingPrecursor, http.StatusNotFound},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeRemoteRejected, http.StatusUnprocessableEntity},
		{CodeNetwork, http.StatusBadGateway},
		{CodeTimeout, http.StatusBadGateway},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ToHTTPStatus(New(tc.code, "x")), string(tc.code))
	}
}
