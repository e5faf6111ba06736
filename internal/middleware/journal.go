package middleware

import (
	"errors"
	"net/http"

	"stockbridge/internal/common"
	"stockbridge/internal/models"
	"stockbridge/internal/services"

	"github.com/labstack/echo/v4"
)

// JournalMiddleware records every workflow command in the command journal
type JournalMiddleware struct {
	journal services.CommandLogService
}

// NewJournalMiddleware creates a new journal middleware instance
func NewJournalMiddleware(journal services.CommandLogService) *JournalMiddleware {
	return &JournalMiddleware{journal: journal}
}

// Record journals the wrapped route as command. A handler may override the command name
// by setting common.JournalCommandKey, e.g. when one route serves both approve and reject.
// Without a journal the route runs unrecorded.
func (m *JournalMiddleware) Record(command string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if m == nil || m.journal == nil {
			return next
		}
		return func(c echo.Context) error {
			err := next(c)

			ctx := c.Request().Context()
			userID, ok := common.GetUserIDFromContext(ctx)
			if !ok {
				return err
			}

			status := responseStatus(c, err)
			entry := &models.CommandLog{
				RequestID: requestID(c),
				UserID:    userID,
				Command:   command,
				TargetID:  c.Param("id"),
				Outcome:   models.OutcomeSucceeded,
				Payload: models.JSONB{
					"method": c.Request().Method,
					"path":   c.Path(),
					"status": status,
					"ip":     c.RealIP(),
				},
			}
			if override, ok := c.Get(common.JournalCommandKey).(string); ok && override != "" {
				entry.Command = override
			}

			if err != nil || status >= http.StatusBadRequest {
				entry.Outcome = models.OutcomeFailed
				message := http.StatusText(status)
				if detail, ok := c.Get(common.JournalErrorKey).(string); ok && detail != "" {
					message = detail
				} else if err != nil {
					message = err.Error()
				}
				entry.Error = &message
			}

			m.journal.Record(ctx, entry)
			return err
		}
	}
}

// RequestContext copies the echo request id onto the request context so it reaches the upstream API
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id := requestID(c); id != "" {
				c.SetRequest(c.Request().WithContext(common.WithRequestID(c.Request().Context(), id)))
			}
			return next(c)
		}
	}
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

func responseStatus(c echo.Context, err error) int {
	if err == nil {
		if c.Response().Status == 0 {
			return http.StatusOK
		}
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
