package handlers

import (
	"net/http"
	"strings"

	"stockbridge/internal/common"
	"stockbridge/internal/models"
	"stockbridge/internal/queue"
	"stockbridge/internal/services"

	"github.com/labstack/echo/v4"
)

// ReviewHandlers serves the warehouse review queue and its decisions
type ReviewHandlers struct {
	reviews   *services.ReviewService
	approvals *services.ApprovalService
}

// NewReviewHandlers creates a new review handlers instance
func NewReviewHandlers(reviews *services.ReviewService, approvals *services.ApprovalService) *ReviewHandlers {
	return &ReviewHandlers{reviews: reviews, approvals: approvals}
}

// DecisionRequest is the body of a review decision
type DecisionRequest struct {
	Action          string `json:"action"`
	RejectionReason string `json:"rejection_reason"`
	Dispatch        bool   `json:"dispatch"`
	DestinationID   int64  `json:"destination_id"`
	Notes           string `json:"notes"`
	Confirmed       bool   `json:"confirmed"`
}

var reviewQueryParams = []string{"tab", "requester", "branch", "from", "to", "status", "page"}

// ListReviews godoc
// @Summary Review queue page
// @Description Without query parameters the session's current view is re-rendered. Any query parameter
// @Description replaces the whole view; changing the tab or a filter resets the page to 1.
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param tab query string false "pending or processed"
// @Param requester query string false "Requester name substring"
// @Param branch query string false "Branch name or ALL"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param status query string false "Processed status filter"
// @Param page query int false "Page number"
// @Success 200 {object} queue.ReviewPage
// @Failure 400 {object} common.ErrorResponse
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/reviews [get]
func (h *ReviewHandlers) ListReviews(c echo.Context) error {
	s, ok := currentSession(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	current := s.View()
	tab, filters, page := current.Tab, current.Filters, current.Page

	if hasAnyQuery(c, reviewQueryParams) {
		var err error
		tab, filters, page, err = parseReviewQuery(c)
		if err != nil {
			return common.SendError(c, err)
		}
	}

	rendered, view, err := h.reviews.Page(c.Request().Context(), current, tab, filters, page)
	if err != nil {
		return common.SendError(c, err)
	}
	s.SetView(view)

	return c.JSON(http.StatusOK, rendered)
}

func hasAnyQuery(c echo.Context, names []string) bool {
	params := c.QueryParams()
	for _, name := range names {
		if _, ok := params[name]; ok {
			return true
		}
	}
	return false
}

func parseReviewQuery(c echo.Context) (queue.Tab, queue.Filters, int, error) {
	tab := queue.Tab(strings.ToLower(strings.TrimSpace(c.QueryParam("tab"))))
	if tab == "" {
		tab = queue.TabPending
	}
	if !tab.Valid() {
		return "", queue.Filters{}, 0, common.NewValidationError("tab", "tab must be pending or processed")
	}

	from, err := common.ParseDate(c.QueryParam("from"), "from")
	if err != nil {
		return "", queue.Filters{}, 0, err
	}
	to, err := common.ParseDate(c.QueryParam("to"), "to")
	if err != nil {
		return "", queue.Filters{}, 0, err
	}

	page, err := parseOptionalInt(c, "page", 1)
	if err != nil {
		return "", queue.Filters{}, 0, err
	}

	filters := queue.Filters{
		Requester: c.QueryParam("requester"),
		Branch:    c.QueryParam("branch"),
		From:      from,
		To:        to,
		Status:    c.QueryParam("status"),
	}
	return tab, filters, page, nil
}

// Decide godoc
// @Summary Approve or reject a transfer request
// @Description Requires "confirmed": true. Approval with "dispatch": true dispatches the stock right after
// @Description the approval lands; a dispatch failure does not undo the approval.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Param request body DecisionRequest true "Decision"
// @Success 200 {object} services.DecisionResult
// @Failure 400 {object} common.ErrorResponse
// @Failure 404 {object} common.ErrorResponse
// @Failure 409 {object} common.ErrorResponse
// @Failure 428 {object} common.ErrorResponse
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/reviews/{id}/decision [post]
func (h *ReviewHandlers) Decide(c echo.Context) error {
	s, ok := currentSession(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req DecisionRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	action := models.DecisionAction(strings.ToLower(strings.TrimSpace(req.Action)))
	if action == models.DecisionReject {
		c.Set(common.JournalCommandKey, models.CommandRejectTransfer)
	}

	result, err := h.approvals.Decide(c.Request().Context(), s.Store, services.ConfirmFlag(req.Confirmed), services.DecisionInput{
		NotificationID:  id,
		Action:          action,
		RejectionReason: req.RejectionReason,
		Dispatch:        req.Dispatch,
		DestinationID:   req.DestinationID,
		Notes:           req.Notes,
	})
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}
