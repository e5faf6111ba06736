package handlers

import (
	"context"
	"net/http"

	"stockbridge/internal/common"
	"stockbridge/internal/models"

	"github.com/labstack/echo/v4"
)

// ReferenceSource is the read-only lookup data the transfer forms are built from
type ReferenceSource interface {
	ListSites(ctx context.Context) ([]models.Site, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
}

// ReferenceHandlers passes lookup lists through from the backend
type ReferenceHandlers struct {
	source ReferenceSource
}

// NewReferenceHandlers creates a new reference handlers instance
func NewReferenceHandlers(source ReferenceSource) *ReferenceHandlers {
	return &ReferenceHandlers{source: source}
}

// ListSites godoc
// @Summary List branches and the warehouse
// @Tags reference
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Site
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/sites [get]
func (h *ReferenceHandlers) ListSites(c echo.Context) error {
	sites, err := h.source.ListSites(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(sites))
}

// ListProducts godoc
// @Summary List the product catalog
// @Tags reference
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Product
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/products [get]
func (h *ReferenceHandlers) ListProducts(c echo.Context) error {
	products, err := h.source.ListProducts(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(products))
}

// ListCustomers godoc
// @Summary List registered customers
// @Tags reference
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Customer
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/customers [get]
func (h *ReferenceHandlers) ListCustomers(c echo.Context) error {
	customers, err := h.source.ListCustomers(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(customers))
}

// nonNil keeps empty lists encoding as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
