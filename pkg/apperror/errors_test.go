package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New("VAL_001", "bad input", http.StatusBadRequest)
	assert.Equal(t, "[VAL_001] bad input", e.Error())

	wrapped := Wrap("SYS_001", "internal", http.StatusInternalServerError, errors.New("pg down"))
	assert.Contains(t, wrapped.Error(), "pg down")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("row lock timeout")
	e := InternalError(fmt.Errorf("stake: %w", inner))
	assert.True(t, errors.Is(e, inner))
}

func TestAppError_ErrorsAs(t *testing.T) {
	var err error = ErrLockPeriodActive()
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "STK_003", appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{Validation("missing wallet_address"), http.StatusBadRequest},
		{ErrInvalidAmount(), http.StatusBadRequest},
		{ErrSignatureMismatch(), http.StatusUnauthorized},
		{ErrInvalidSignature(errors.New("recovery failed")), http.StatusUnauthorized},
		{ErrAdminRequired(), http.StatusForbidden},
		{ErrNotFound("account"), http.StatusNotFound},
		{ErrInsufficientBalance(), http.StatusBadRequest},
		{ErrInsufficientStaked(), http.StatusBadRequest},
		{ErrLockPeriodActive(), http.StatusBadRequest},
		{ErrAlreadySubscribed(), http.StatusBadRequest},
		{ErrNotSubscribed(), http.StatusNotFound},
		{ErrChainUnavailable(errors.New("rpc timeout")), http.StatusServiceUnavailable},
		{ErrRateLimitExceeded(), http.StatusTooManyRequests},
		{InternalError(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, c := range cases {
		assert.Equal(t, c.status, c.err.HTTPStatus, c.err.Code)
	}
}

func TestErrNotFound_Message(t *testing.T) {
	assert.Equal(t, "account not found", ErrNotFound("account").Message)
}
