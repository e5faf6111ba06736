package handlers

import (
	"log"
	"net/http"

	"stockbridge/internal/common"
	"stockbridge/internal/models"
	"stockbridge/internal/services"

	"github.com/labstack/echo/v4"
)

// TransferHandlers serves the branch side of the transfer workflow
type TransferHandlers struct {
	transfers *services.TransferService
}

// NewTransferHandlers creates a new transfer handlers instance
func NewTransferHandlers(transfers *services.TransferService) *TransferHandlers {
	return &TransferHandlers{transfers: transfers}
}

// ConfirmRequest carries the answer to a blocking confirmation prompt
type ConfirmRequest struct {
	Confirmed bool `json:"confirmed"`
}

// SubmitTransfer godoc
// @Summary Submit a stock transfer request
// @Description Creates a PENDING transfer request for the caller's branch and refreshes the dashboard
// @Tags transfers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateTransferInput true "Transfer request"
// @Success 201 {object} services.SubmitResult
// @Failure 400 {object} common.ErrorResponse
// @Failure 409 {object} common.ErrorResponse
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/transfers [post]
func (h *TransferHandlers) SubmitTransfer(c echo.Context) error {
	s, ok := currentSession(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req models.CreateTransferInput
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	result, err := h.transfers.Submit(c.Request().Context(), s.Store, req)
	if err != nil {
		return common.SendError(c, err)
	}

	log.Printf("DEBUG: transfer %d submitted by user %d", result.Transfer.ID, s.UserID)
	return c.JSON(http.StatusCreated, result)
}

// ListInTransit godoc
// @Summary List incoming transfers
// @Tags transfers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/transfers/in-transit [get]
func (h *TransferHandlers) ListInTransit(c echo.Context) error {
	transfers, err := h.transfers.ListInTransit(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"transfers": transfers,
		"total":     len(transfers),
	})
}

// ConfirmReceipt godoc
// @Summary Mark an in-transit transfer as received
// @Description Requires "confirmed": true. Receipt is all-or-nothing per transfer.
// @Tags transfers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transfer ID"
// @Param request body ConfirmRequest true "Confirmation"
// @Success 200 {object} map[string]interface{}
// @Failure 428 {object} common.ErrorResponse
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/transfers/{id}/receive [post]
func (h *TransferHandlers) ConfirmReceipt(c echo.Context) error {
	s, ok := currentSession(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	dashboard, err := h.transfers.ConfirmReceipt(c.Request().Context(), s.Store, services.ConfirmFlag(req.Confirmed), id)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "Transfer marked as received",
		"dashboard": dashboard,
	})
}
