package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendErrorRecorder(t *testing.T, err error) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, SendError(c, err))
	return rec, c
}

func TestSendError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", NewValidationError("quantity", "Quantity must be at least 1"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"confirmation", &ConfirmationRequiredError{Prompt: "Are you sure?"}, http.StatusPreconditionRequired, "CONFIRMATION_REQUIRED"},
		{"not actionable", &NotActionableError{Status: "APPROVED"}, http.StatusConflict, "CONFLICT"},
		{"in flight", fmt.Errorf("approve: %w", ErrInFlight), http.StatusConflict, "CONFLICT"},
		{"not found", fmt.Errorf("notification 9: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"upstream forbidden", &RequestFailure{Op: "decide", Status: http.StatusForbidden, Message: "Not your branch"}, http.StatusForbidden, "FORBIDDEN"},
		{"upstream bad request", &RequestFailure{Op: "create", Status: http.StatusBadRequest, Message: "Insufficient stock"}, http.StatusBadRequest, "CLIENT_ERROR"},
		{"upstream server error", &RequestFailure{Op: "dispatch", Status: http.StatusServiceUnavailable, Message: "Failed to dispatch"}, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"transport", &RequestFailure{Op: "dispatch", Message: "Failed to dispatch", Err: errors.New("connection refused")}, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, c := sendErrorRecorder(t, tt.err)
			assert.Equal(t, tt.status, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.err.Error(), c.Get(JournalErrorKey))
		})
	}
}

func TestSendError_UpstreamMessageSurfaced(t *testing.T) {
	rec, _ := sendErrorRecorder(t, &RequestFailure{Op: "create transfer", Status: http.StatusBadRequest, Message: "Insufficient stock at source branch"})

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Insufficient stock at source branch", resp.Error.Message)
}

func TestNotActionableError_Message(t *testing.T) {
	assert.Equal(t, "This request has already been rejected.", (&NotActionableError{Status: "REJECTED"}).Error())
}

func TestLogSideEffect(t *testing.T) {
	assert.Nil(t, LogSideEffect("mark read", nil))

	cause := errors.New("timeout")
	failure := LogSideEffect("mark read", cause)
	require.NotNil(t, failure)
	assert.ErrorIs(t, failure, cause)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("", "from")
	assert.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDate(" 2024-06-01 ", "from")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())

	_, err = ParseDate("06/01/2024", "from")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "from", validationErr.Field)
}

func TestValidatePaginationParams(t *testing.T) {
	limit, offset, err := ValidatePaginationParams(0, -5)
	require.NoError(t, err)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)

	limit, _, err = ValidatePaginationParams(10000, 0)
	require.NoError(t, err)
	assert.Equal(t, 500, limit)

	_, _, err = ValidatePaginationParams(10, 2000000)
	assert.Error(t, err)
}

func TestCallerContext(t *testing.T) {
	ctx := WithCaller(WithRequestID(context.Background(), "req-1"), 7, "token-abc")

	userID, ok := GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(7), userID)

	token, ok := GetTokenFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "token-abc", token)
	assert.Equal(t, "req-1", GetRequestIDFromContext(ctx))
}
