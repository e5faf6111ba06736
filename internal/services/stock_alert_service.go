package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"stockbridge/internal/common"
	"stockbridge/internal/models"
)

const (
	StockAlertTitle      = "Low Stock Alert"
	defaultStockAlertTTL = 6 * time.Hour
)

// AlertDeduper remembers which inventory rows were already alerted to which user
type AlertDeduper interface {
	MarkStockAlerted(ctx context.Context, userID, itemID int64, ttl time.Duration) (bool, error)
	ClearStockAlert(ctx context.Context, userID, itemID int64) error
}

// NotificationCreator is the part of a Provider that emits notifications
type NotificationCreator interface {
	Create(ctx context.Context, in models.NotificationCreate) (*models.Notification, error)
}

// StockAlertService emits STOCK_ALERT notifications for rows at or below their threshold
type StockAlertService struct {
	dedupe AlertDeduper
	ttl    time.Duration
}

func NewStockAlertService(dedupe AlertDeduper, ttl time.Duration) *StockAlertService {
	if ttl <= 0 {
		ttl = defaultStockAlertTTL
	}
	return &StockAlertService{dedupe: dedupe, ttl: ttl}
}

// StockAlertMessage is the body of a low stock notification
func StockAlertMessage(item models.InventoryItem) string {
	return fmt.Sprintf("%s is running low (%d remaining)", item.Product.Name, item.Quantity)
}

// Check alerts the caller about every low row once per ttl and returns how many alerts were emitted
func (s *StockAlertService) Check(ctx context.Context, creator NotificationCreator, items []models.InventoryItem) int {
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return 0
	}

	emitted := 0
	for _, item := range items {
		if !item.IsLowStock() {
			continue
		}

		if s.dedupe != nil {
			first, err := s.dedupe.MarkStockAlerted(ctx, userID, item.ID, s.ttl)
			if err != nil {
				log.Printf("WARN: stock alert de-duplication unavailable for item %d: %v", item.ID, err)
				continue
			}
			if !first {
				continue
			}
		}

		itemID := item.ID
		alert := models.NotificationCreate{
			Recipient:        userID,
			NotificationType: models.NotificationTypeStockAlert,
			Title:            StockAlertTitle,
			Message:          StockAlertMessage(item),
			RelatedObjectID:  &itemID,
		}
		if item.Branch.ID != 0 {
			branchID := item.Branch.ID
			alert.RelatedBranch = &branchID
		}
		_, err := creator.Create(ctx, alert)
		if err != nil {
			common.LogSideEffect(fmt.Sprintf("stock alert for item %d", item.ID), err)
			if s.dedupe != nil {
				if err := s.dedupe.ClearStockAlert(context.WithoutCancel(ctx), userID, item.ID); err != nil {
					log.Printf("WARN: failed to clear stock alert key for item %d: %v", item.ID, err)
				}
			}
			continue
		}
		emitted++
	}

	if emitted > 0 {
		log.Printf("DEBUG: emitted %d low stock alerts for user %d", emitted, userID)
	}
	return emitted
}
