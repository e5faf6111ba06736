package handlers

import (
	"net/http"

	"stockbridge/internal/common"
	"stockbridge/internal/services"

	"github.com/labstack/echo/v4"
)

// DashboardHandlers serves the full data refresh
type DashboardHandlers struct {
	refresher *services.Refresher
}

// NewDashboardHandlers creates a new dashboard handlers instance
func NewDashboardHandlers(refresher *services.Refresher) *DashboardHandlers {
	return &DashboardHandlers{refresher: refresher}
}

// GetDashboard godoc
// @Summary Refresh inventory, movements, transfers and notifications
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param scope query string false "branch (default) or warehouse"
// @Success 200 {object} models.Dashboard
// @Failure 400 {object} common.ErrorResponse
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/dashboard [get]
func (h *DashboardHandlers) GetDashboard(c echo.Context) error {
	s, ok := currentSession(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	scope, err := parseScope(c)
	if err != nil {
		return common.SendError(c, err)
	}

	dashboard, err := h.refresher.Refresh(c.Request().Context(), s.Store, scope)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, dashboard)
}
