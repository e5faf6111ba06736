package middleware

import (
	"errors"
	"net/http"

	"stockbridge/internal/common"
	"stockbridge/internal/sessions"

	"github.com/labstack/echo/v4"
)

const sessionKey = "session"

type SessionMiddleware struct {
	registry *sessions.Registry
}

func NewSessionMiddleware(registry *sessions.Registry) *SessionMiddleware {
	return &SessionMiddleware{registry: registry}
}

// RequireSession mounts the caller's session and stores it on the echo context
func (m *SessionMiddleware) RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if _, ok := common.GetUserIDFromContext(ctx); !ok {
				return common.SendUnauthorizedError(c)
			}

			s, err := m.registry.Acquire(ctx)
			if err != nil {
				if errors.Is(err, common.ErrSessionClosed) {
					return c.JSON(http.StatusServiceUnavailable, common.CreateErrorResponse("SESSION_CLOSED", "Session is shutting down, retry", nil))
				}
				return common.SendUnauthorizedError(c)
			}

			c.Set(sessionKey, s)
			return next(c)
		}
	}
}

// GetSession returns the session mounted by RequireSession
func GetSession(c echo.Context) (*sessions.Session, bool) {
	s, ok := c.Get(sessionKey).(*sessions.Session)
	return s, ok
}
