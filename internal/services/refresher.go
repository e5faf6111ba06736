package services

import (
	"context"
	"log"
	"time"

	"stockbridge/internal/common"
	"stockbridge/internal/models"
	"stockbridge/internal/queue"

	"golang.org/x/sync/errgroup"
)

const dashboardTTL = 5 * time.Minute

// Scope selects which inventory a refresh loads
type Scope int

const (
	ScopeBranch Scope = iota
	ScopeWarehouse
)

// DashboardCache keeps the last refreshed dashboard per user
type DashboardCache interface {
	GetDashboard(ctx context.Context, userID int64) (*models.Dashboard, error)
	SetDashboard(ctx context.Context, userID int64, dashboard *models.Dashboard, ttl time.Duration) error
}

// Refresher reloads everything a command may have changed
type Refresher struct {
	backend Backend
	cache   DashboardCache
	alerts  *StockAlertService
	now     func() time.Time
}

// NewRefresher creates a refresher. cache and alerts may be nil.
func NewRefresher(backend Backend, cache DashboardCache, alerts *StockAlertService) *Refresher {
	return &Refresher{backend: backend, cache: cache, alerts: alerts, now: time.Now}
}

// Refresh fetches inventory, movements, transfers and notifications concurrently.
// When provider is set its notifications are refreshed in place and the dashboard reads from it.
func (r *Refresher) Refresh(ctx context.Context, provider Provider, scope Scope) (*models.Dashboard, error) {
	var (
		dashboard models.Dashboard
		g         errgroup.Group
	)

	g.Go(func() error {
		items, err := r.backend.ListInventory(ctx, scope == ScopeWarehouse)
		if err != nil {
			return err
		}
		queue.SortInventory(items)
		dashboard.Inventory = items
		return nil
	})
	g.Go(func() error {
		movements, err := r.backend.ListMovements(ctx)
		if err != nil {
			return err
		}
		queue.SortMovements(movements)
		dashboard.Movements = movements
		return nil
	})
	g.Go(func() error {
		transfers, err := r.backend.ListTransfers(ctx)
		if err != nil {
			return err
		}
		dashboard.Transfers = transfers
		return nil
	})
	if scope == ScopeWarehouse {
		g.Go(func() error {
			sites, err := r.backend.ListSites(ctx)
			if err != nil {
				return err
			}
			dashboard.Sites = sites
			return nil
		})
	}

	var notificationErr error
	g.Go(func() error {
		if provider != nil {
			notificationErr = provider.Refresh(ctx)
			return nil
		}
		list, err := r.backend.ListNotifications(ctx, "")
		if err != nil {
			notificationErr = err
			return nil
		}
		dashboard.Notifications = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if notificationErr != nil {
		log.Printf("WARN: notification refresh failed: %v", notificationErr)
	}
	if provider != nil {
		dashboard.Notifications = provider.Snapshot().Notifications
	}
	dashboard.RefreshedAt = r.now().UTC()

	if userID, ok := common.GetUserIDFromContext(ctx); ok && r.cache != nil {
		if err := r.cache.SetDashboard(ctx, userID, &dashboard, dashboardTTL); err != nil {
			common.LogSideEffect("cache dashboard", err)
		}
	}

	if r.alerts != nil && provider != nil {
		r.alerts.Check(ctx, provider, dashboard.Inventory)
	}

	return &dashboard, nil
}

// Cached returns the caller's last dashboard, refreshing when nothing is cached
func (r *Refresher) Cached(ctx context.Context, provider Provider, scope Scope) (*models.Dashboard, error) {
	if userID, ok := common.GetUserIDFromContext(ctx); ok && r.cache != nil {
		cached, err := r.cache.GetDashboard(ctx, userID)
		if err != nil {
			log.Printf("WARN: failed to read cached dashboard for user %d: %v", userID, err)
		} else if cached != nil {
			return cached, nil
		}
	}
	return r.Refresh(ctx, provider, scope)
}
