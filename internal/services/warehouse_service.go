package services

import (
	"context"
	"fmt"
	"time"

	"stockbridge/internal/common"
	"stockbridge/internal/models"
	"stockbridge/internal/queue"
)

// WarehouseService issues dispatch and receive commands and serves the stock views
type WarehouseService struct {
	backend   Backend
	documents DocumentArchiver
	guard     CommandGuard
}

// NewWarehouseService creates the service. documents may be nil, in which case no document is archived.
func NewWarehouseService(backend Backend, documents DocumentArchiver, guard CommandGuard) *WarehouseService {
	return &WarehouseService{backend: backend, documents: documents, guard: guard}
}

// ValidateDispatchInput rejects a dispatch before it reaches the network
func ValidateDispatchInput(in models.DispatchInput) error {
	if in.ProductID <= 0 {
		return common.NewValidationError("product_id", "Please select a product")
	}
	if in.Quantity < 1 {
		return common.NewValidationError("quantity", "Quantity must be at least 1")
	}
	if in.DestinationID <= 0 {
		return common.NewValidationError("destination_id", "Please select a destination")
	}
	return nil
}

// ValidateReceiveInput rejects an inbound receipt before it reaches the network
func ValidateReceiveInput(in models.ReceiveInput) error {
	if in.ProductID <= 0 {
		return common.NewValidationError("product_id", "Please select a product")
	}
	if in.Quantity <= 0 {
		return common.NewValidationError("quantity", "Quantity must be greater than 0")
	}
	if in.ExpirationDate != nil && *in.ExpirationDate != "" {
		if _, err := time.Parse(common.DateLayout, *in.ExpirationDate); err != nil {
			return common.NewValidationError("expiration_date", "Invalid expiration_date format. Use YYYY-MM-DD")
		}
	}
	return nil
}

// Dispatch sends stock out of the warehouse and archives the waybill when one is issued
func (s *WarehouseService) Dispatch(ctx context.Context, in models.DispatchInput) (*models.DispatchResult, error) {
	if err := ValidateDispatchInput(in); err != nil {
		return nil, err
	}

	var resp *models.DispatchResponse
	target := fmt.Sprintf("%d-%d", in.ProductID, in.DestinationID)
	err := withGuard(ctx, s.guard, models.CommandDispatch, target, func() error {
		var err error
		resp, err = s.backend.Dispatch(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &models.DispatchResult{TransferID: resp.TransferID, Message: resp.Message}
	if resp.TransferID > 0 {
		result.Document, result.DocumentError = s.archive(ctx, WaybillObjectName(resp.TransferID), func() (*models.Document, error) {
			bin, err := s.backend.DispatchDocument(ctx, resp.TransferID)
			if err != nil {
				return nil, err
			}
			return s.documents.Archive(ctx, WaybillObjectName(resp.TransferID), bin)
		})
	}
	return result, nil
}

// Receive books inbound stock and archives the receiving note when one is issued
func (s *WarehouseService) Receive(ctx context.Context, in models.ReceiveInput) (*models.ReceiveResult, error) {
	if err := ValidateReceiveInput(in); err != nil {
		return nil, err
	}

	var resp *models.ReceiveResponse
	err := withGuard(ctx, s.guard, models.CommandReceive, in.ProductID, func() error {
		var err error
		resp, err = s.backend.Receive(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &models.ReceiveResult{ID: resp.ID, Message: resp.Message}
	if resp.ID > 0 {
		result.Document, result.DocumentError = s.archive(ctx, ReceivingObjectName(resp.ID), func() (*models.Document, error) {
			bin, err := s.backend.ReceivingDocument(ctx, resp.ID)
			if err != nil {
				return nil, err
			}
			return s.documents.Archive(ctx, ReceivingObjectName(resp.ID), bin)
		})
	}
	return result, nil
}

// archive runs the document side channel; its failure never fails the command
func (s *WarehouseService) archive(ctx context.Context, objectName string, fetch func() (*models.Document, error)) (*models.Document, string) {
	if s.documents == nil {
		return nil, ""
	}
	doc, err := fetch()
	if err != nil {
		failure := common.LogSideEffect("archive "+objectName, err)
		return nil, failure.Error()
	}
	return doc, ""
}

// Inventory returns the warehouse stock, newest first, filtered by name and level
func (s *WarehouseService) Inventory(ctx context.Context, filter queue.InventoryFilter) ([]models.InventoryItem, error) {
	items, err := s.backend.ListInventory(ctx, true)
	if err != nil {
		return nil, err
	}
	queue.SortInventory(items)
	return queue.FilterInventory(items, filter), nil
}

// Movements returns stock movements, newest first, filtered by type, branch and date
func (s *WarehouseService) Movements(ctx context.Context, filter queue.MovementFilter) ([]models.StockMovement, error) {
	movements, err := s.backend.ListMovements(ctx)
	if err != nil {
		return nil, err
	}
	queue.SortMovements(movements)
	return queue.FilterMovements(movements, filter), nil
}
