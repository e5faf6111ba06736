package common

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

var (
	// ErrInFlight is returned when the same command for the same target is still being processed
	ErrInFlight = errors.New("a request for this command is already in progress")

	// ErrNotFound is returned when a referenced item is absent from the current snapshot
	ErrNotFound = errors.New("not found")

	// ErrSessionClosed is returned by a store that has been unmounted
	ErrSessionClosed = errors.New("session closed")
)

// ValidationError is a missing or invalid required field caught before any network call
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// RequestFailure is a non-2xx upstream response or a transport failure (Status 0)
type RequestFailure struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RequestFailure) Error() string {
	return e.Message
}

func (e *RequestFailure) Unwrap() error {
	return e.Err
}

// Transport reports whether the request never produced an HTTP response
func (e *RequestFailure) Transport() bool {
	return e.Status == 0
}

// SideEffectFailure wraps the failure of a best-effort companion call.
// It is logged and never returned from a primary operation.
type SideEffectFailure struct {
	Op  string
	Err error
}

func (e *SideEffectFailure) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *SideEffectFailure) Unwrap() error {
	return e.Err
}

// LogSideEffect records a swallowed companion-call failure
func LogSideEffect(op string, err error) *SideEffectFailure {
	if err == nil {
		return nil
	}
	failure := &SideEffectFailure{Op: op, Err: err}
	log.Printf("WARN: %v", failure)
	return failure
}

// ConfirmationRequiredError is returned when a command was issued without explicit confirmation
type ConfirmationRequiredError struct {
	Prompt string
}

func (e *ConfirmationRequiredError) Error() string {
	return e.Prompt
}

// NotActionableError is returned when a decision is attempted on a request that is no longer pending
type NotActionableError struct {
	Status string
}

func (e *NotActionableError) Error() string {
	return fmt.Sprintf("This request has already been %s.", strings.ToLower(e.Status))
}

// SendError renders err with the status and envelope matching its kind
func SendError(c echo.Context, err error) error {
	var validationErr *ValidationError
	var confirmErr *ConfirmationRequiredError
	var notActionable *NotActionableError
	var failure *RequestFailure

	c.Set(JournalErrorKey, err.Error())

	switch {
	case errors.As(err, &validationErr):
		return SendValidationError(c, validationErr.Field, validationErr.Message)
	case errors.As(err, &confirmErr):
		return c.JSON(http.StatusPreconditionRequired, CreateErrorResponse("CONFIRMATION_REQUIRED", confirmErr.Prompt, nil))
	case errors.As(err, &notActionable):
		return SendConflictError(c, notActionable.Error())
	case errors.Is(err, ErrInFlight):
		return SendConflictError(c, ErrInFlight.Error())
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", err.Error(), nil))
	case errors.As(err, &failure):
		return sendRequestFailure(c, failure)
	default:
		log.Printf("WARN: unhandled error: %v", err)
		return SendServerError(c, "Internal server error")
	}
}

func sendRequestFailure(c echo.Context, failure *RequestFailure) error {
	if failure.Status >= 400 && failure.Status < 500 {
		code := "CLIENT_ERROR"
		switch failure.Status {
		case http.StatusUnauthorized:
			code = "UNAUTHORIZED"
		case http.StatusForbidden:
			code = "FORBIDDEN"
		case http.StatusNotFound:
			code = "NOT_FOUND"
		}
		return c.JSON(failure.Status, CreateErrorResponse(code, failure.Message, nil))
	}

	log.Printf("WARN: upstream %s failed with status %d: %v", failure.Op, failure.Status, failure.Err)
	return c.JSON(http.StatusBadGateway, CreateErrorResponse("UPSTREAM_ERROR", failure.Message, nil))
}
