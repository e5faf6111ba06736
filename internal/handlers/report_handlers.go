package handlers

import (
	"fmt"
	"net/http"
	"time"

	"stockbridge/internal/common"
	"stockbridge/internal/reports"
	"stockbridge/internal/services"

	"github.com/labstack/echo/v4"
)

// ReportHandlers serves spreadsheet exports built from the last refreshed dashboard
type ReportHandlers struct {
	refresher *services.Refresher
	now       func() time.Time
}

// NewReportHandlers creates a new report handlers instance
func NewReportHandlers(refresher *services.Refresher) *ReportHandlers {
	return &ReportHandlers{refresher: refresher, now: time.Now}
}

// ExportMovements godoc
// @Summary Export movements and inventory as XLSX
// @Description Uses the cached dashboard when one exists, otherwise refreshes first.
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param scope query string false "branch (default) or warehouse"
// @Success 200 {file} file
// @Failure 400 {object} common.ErrorResponse
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/reports/movements.xlsx [get]
func (h *ReportHandlers) ExportMovements(c echo.Context) error {
	s, ok := currentSession(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	scope, err := parseScope(c)
	if err != nil {
		return common.SendError(c, err)
	}

	dashboard, err := h.refresher.Cached(c.Request().Context(), s.Store, scope)
	if err != nil {
		return common.SendError(c, err)
	}

	buf, err := reports.BuildMovementWorkbook(dashboard.Movements, dashboard.Inventory)
	if err != nil {
		return common.SendServerError(c, "Failed to generate report")
	}

	filename := reports.Filename(h.now().UTC().Format(common.DateLayout))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, reports.ContentType, buf.Bytes())
}
