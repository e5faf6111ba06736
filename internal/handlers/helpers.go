package handlers

import (
	"strconv"
	"strings"

	"stockbridge/internal/common"
	"stockbridge/internal/middleware"
	"stockbridge/internal/services"
	"stockbridge/internal/sessions"

	"github.com/labstack/echo/v4"
)

// parseID reads the :id path parameter as a positive integer
func parseID(c echo.Context, field string) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewValidationError(field, "Invalid ID format")
	}
	return id, nil
}

// parseOptionalInt reads an optional integer query parameter
func parseOptionalInt(c echo.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.NewValidationError(name, name+" must be an integer")
	}
	return n, nil
}

// parseScope maps ?scope= to the refresh scope; only "warehouse" and "branch" are accepted
func parseScope(c echo.Context) (services.Scope, error) {
	switch strings.ToLower(strings.TrimSpace(c.QueryParam("scope"))) {
	case "", "branch":
		return services.ScopeBranch, nil
	case "warehouse":
		return services.ScopeWarehouse, nil
	}
	return services.ScopeBranch, common.NewValidationError("scope", "scope must be branch or warehouse")
}

func currentSession(c echo.Context) (*sessions.Session, bool) {
	return middleware.GetSession(c)
}
