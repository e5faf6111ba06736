package handlers

import (
	"net/http"
	"strings"

	"stockbridge/internal/common"
	"stockbridge/internal/models"
	"stockbridge/internal/services"

	"github.com/labstack/echo/v4"
)

// JournalHandlers serves the caller's command journal
type JournalHandlers struct {
	journal services.CommandLogService
}

// NewJournalHandlers creates a new journal handlers instance
func NewJournalHandlers(journal services.CommandLogService) *JournalHandlers {
	return &JournalHandlers{journal: journal}
}

// ListJournal godoc
// @Summary The caller's command journal
// @Tags journal
// @Produce json
// @Security BearerAuth
// @Param command query string false "Command name, e.g. APPROVE_TRANSFER"
// @Param outcome query string false "SUCCEEDED or FAILED"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param limit query int false "Page size (default 50, max 500)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} common.ErrorResponse
// @Router /v1/journal [get]
func (h *JournalHandlers) ListJournal(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	filters := &models.CommandLogFilters{}
	if command := strings.ToUpper(strings.TrimSpace(c.QueryParam("command"))); command != "" {
		filters.Command = &command
	}
	if outcome := strings.ToUpper(strings.TrimSpace(c.QueryParam("outcome"))); outcome != "" {
		filters.Outcome = &outcome
	}

	start, err := common.ParseDate(c.QueryParam("start_date"), "start_date")
	if err != nil {
		return common.SendError(c, err)
	}
	end, err := common.ParseDate(c.QueryParam("end_date"), "end_date")
	if err != nil {
		return common.SendError(c, err)
	}
	if end != nil {
		// inclusive calendar day
		endOfDay := end.AddDate(0, 0, 1).Add(-1)
		end = &endOfDay
	}
	filters.StartDate = start
	filters.EndDate = end

	if filters.Limit, err = parseOptionalInt(c, "limit", 0); err != nil {
		return common.SendError(c, err)
	}
	if filters.Offset, err = parseOptionalInt(c, "offset", 0); err != nil {
		return common.SendError(c, err)
	}
	if filters.Limit, filters.Offset, err = common.ValidatePaginationParams(filters.Limit, filters.Offset); err != nil {
		return common.SendError(c, err)
	}

	if err := h.journal.ValidateFilters(filters); err != nil {
		return common.SendClientError(c, err.Error())
	}

	entries, err := h.journal.List(ctx, userID, filters)
	if err != nil {
		return common.SendServerError(c, "Failed to list command journal")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
		"limit":   filters.Limit,
		"offset":  filters.Offset,
	})
}
