package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// VersionMiddleware stamps and checks the API version of BFF routes
type VersionMiddleware struct {
	supported map[string]string
	current   string
}

// NewVersionMiddleware creates a new version middleware instance
func NewVersionMiddleware(service string) *VersionMiddleware {
	return &VersionMiddleware{
		supported: map[string]string{"v1": service + " workflow API"},
		current:   "v1",
	}
}

// VersionHeader adds version information to response headers
func (vm *VersionMiddleware) VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-API-Version", version)
			if message, ok := vm.supported[version]; ok {
				c.Response().Header().Set("X-API-Message", message)
			}
			return next(c)
		}
	}
}

// APIVersionResolver rejects requests addressed to an unknown version prefix
func (vm *VersionMiddleware) APIVersionResolver() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			version := extractVersion(c.Request().URL.Path)
			if version == "" {
				c.Set("api_version", vm.current)
				return next(c)
			}
			if _, ok := vm.supported[version]; !ok {
				return c.JSON(http.StatusNotFound, map[string]string{
					"error":              "Unsupported API version",
					"supported_versions": vm.current,
				})
			}
			c.Set("api_version", version)
			return next(c)
		}
	}
}

// extractVersion returns "vN" when path starts with /vN/ or is exactly /vN
func extractVersion(path string) string {
	segment := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)[0]
	if len(segment) < 2 || segment[0] != 'v' {
		return ""
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return segment
}
