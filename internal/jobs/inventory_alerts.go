package jobs

import (
	"context"
	"log"
	"time"

	"stockbridge/internal/models"
	"stockbridge/internal/services"
	"stockbridge/internal/sessions"
)

const lowStockSweepTimeout = 2 * time.Minute

// SessionSource lists the mounted user sessions
type SessionSource interface {
	Active() []*sessions.Session
}

// InventoryLister is the part of the upstream API the sweep reads
type InventoryLister interface {
	ListInventory(ctx context.Context, warehouse bool) ([]models.InventoryItem, error)
}

// InventoryAlertService raises low stock alerts for every mounted session between refreshes
type InventoryAlertService struct {
	sessions  SessionSource
	inventory InventoryLister
	alerts    *services.StockAlertService
}

func NewInventoryAlertService(sessions SessionSource, inventory InventoryLister, alerts *services.StockAlertService) *InventoryAlertService {
	return &InventoryAlertService{
		sessions:  sessions,
		inventory: inventory,
		alerts:    alerts,
	}
}

// CheckLowStock loads the session user's inventory with their credentials and emits alerts through their provider
func (a *InventoryAlertService) CheckLowStock(ctx context.Context, s *sessions.Session) (int, error) {
	ctx = s.Context(ctx)

	items, err := a.inventory.ListInventory(ctx, false)
	if err != nil {
		return 0, err
	}
	return a.alerts.Check(ctx, s.Store, items), nil
}

// ScheduledLowStockCheck sweeps every mounted session. A failing session does not stop the sweep.
func (a *InventoryAlertService) ScheduledLowStockCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), lowStockSweepTimeout)
	defer cancel()

	active := a.sessions.Active()
	if len(active) == 0 {
		return
	}

	total := 0
	for _, s := range active {
		if s.Store.Closed() {
			continue
		}
		emitted, err := a.CheckLowStock(ctx, s)
		if err != nil {
			log.Printf("WARN: low stock check for user %d failed: %v", s.UserID, err)
			continue
		}
		total += emitted
	}

	log.Printf("DEBUG: low stock sweep over %d sessions emitted %d alerts", len(active), total)
}
