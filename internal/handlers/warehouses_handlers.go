package handlers

import (
	"log"
	"net/http"

	"stockbridge/internal/common"
	"stockbridge/internal/models"
	"stockbridge/internal/queue"
	"stockbridge/internal/services"

	"github.com/labstack/echo/v4"
)

// WarehouseHandlers handles warehouse stock movements and views
type WarehouseHandlers struct {
	warehouseService *services.WarehouseService
}

// NewWarehouseHandlers creates a new warehouse handlers instance
func NewWarehouseHandlers(warehouseService *services.WarehouseService) *WarehouseHandlers {
	return &WarehouseHandlers{warehouseService: warehouseService}
}

// Dispatch godoc
// @Summary Dispatch stock to a branch
// @Description The waybill is archived when the upstream returns a transfer id; archive failures are reported but do not fail the dispatch.
// @Tags warehouse
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DispatchInput true "Dispatch"
// @Success 200 {object} models.DispatchResult
// @Failure 400 {object} common.ErrorResponse
// @Failure 409 {object} common.ErrorResponse
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/warehouse/dispatch [post]
func (h *WarehouseHandlers) Dispatch(c echo.Context) error {
	var req models.DispatchInput
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	result, err := h.warehouseService.Dispatch(c.Request().Context(), req)
	if err != nil {
		return common.SendError(c, err)
	}

	log.Printf("DEBUG: dispatched %d of product %d to site %d", req.Quantity, req.ProductID, req.DestinationID)
	return c.JSON(http.StatusOK, result)
}

// Receive godoc
// @Summary Receive inbound stock into the warehouse
// @Tags warehouse
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ReceiveInput true "Receive"
// @Success 200 {object} models.ReceiveResult
// @Failure 400 {object} common.ErrorResponse
// @Failure 409 {object} common.ErrorResponse
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/warehouse/receive [post]
func (h *WarehouseHandlers) Receive(c echo.Context) error {
	var req models.ReceiveInput
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	result, err := h.warehouseService.Receive(c.Request().Context(), req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// ListInventory godoc
// @Summary Warehouse inventory
// @Tags warehouse
// @Produce json
// @Security BearerAuth
// @Param search query string false "Product name substring"
// @Param level query string false "ALL, LOW, OUT or HIGH"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} common.ErrorResponse
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/warehouse/inventory [get]
func (h *WarehouseHandlers) ListInventory(c echo.Context) error {
	level, err := queue.ParseStockLevel(c.QueryParam("level"))
	if err != nil {
		return common.SendError(c, err)
	}

	items, err := h.warehouseService.Inventory(c.Request().Context(), queue.InventoryFilter{
		Search: c.QueryParam("search"),
		Level:  level,
	})
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"inventory": items,
		"total":     len(items),
	})
}

// ListMovements godoc
// @Summary Stock movement log
// @Tags warehouse
// @Produce json
// @Security BearerAuth
// @Param type query string false "ALL, ADD, REMOVE or TRANSFER"
// @Param branch query string false "Branch name"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} common.ErrorResponse
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/warehouse/movements [get]
func (h *WarehouseHandlers) ListMovements(c echo.Context) error {
	movementType, err := queue.ParseMovementType(c.QueryParam("type"))
	if err != nil {
		return common.SendError(c, err)
	}
	from, err := common.ParseDate(c.QueryParam("from"), "from")
	if err != nil {
		return common.SendError(c, err)
	}
	to, err := common.ParseDate(c.QueryParam("to"), "to")
	if err != nil {
		return common.SendError(c, err)
	}

	movements, err := h.warehouseService.Movements(c.Request().Context(), queue.MovementFilter{
		Type:   movementType,
		Branch: c.QueryParam("branch"),
		From:   from,
		To:     to,
	})
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"movements": movements,
		"total":     len(movements),
	})
}
