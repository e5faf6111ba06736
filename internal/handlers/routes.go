package handlers

import (
	"stockbridge/internal/middleware"
	"stockbridge/internal/models"

	"github.com/labstack/echo/v4"
)

// Handlers groups every authenticated handler set. Journal may be nil when no journal database is configured.
type Handlers struct {
	Transfers     *TransferHandlers
	Reviews       *ReviewHandlers
	Warehouse     *WarehouseHandlers
	Dashboard     *DashboardHandlers
	Notifications *NotificationHandlers
	Journal       *JournalHandlers
	Reports       *ReportHandlers
	Reference     *ReferenceHandlers
}

// Register mounts the authenticated routes on g. Commands are wrapped by the journal.
func (h *Handlers) Register(g *echo.Group, journal *middleware.JournalMiddleware) {
	transfers := g.Group("/transfers")
	transfers.POST("", h.Transfers.SubmitTransfer, journal.Record(models.CommandSubmitTransfer))
	transfers.GET("/in-transit", h.Transfers.ListInTransit)
	transfers.POST("/:id/receive", h.Transfers.ConfirmReceipt, journal.Record(models.CommandReceiveTransfer))

	reviews := g.Group("/reviews")
	reviews.GET("", h.Reviews.ListReviews)
	reviews.POST("/:id/decision", h.Reviews.Decide, journal.Record(models.CommandApproveTransfer))

	warehouse := g.Group("/warehouse")
	warehouse.POST("/dispatch", h.Warehouse.Dispatch, journal.Record(models.CommandDispatch))
	warehouse.POST("/receive", h.Warehouse.Receive, journal.Record(models.CommandReceive))
	warehouse.GET("/inventory", h.Warehouse.ListInventory)
	warehouse.GET("/movements", h.Warehouse.ListMovements)

	g.GET("/dashboard", h.Dashboard.GetDashboard)

	notifications := g.Group("/notifications")
	notifications.GET("", h.Notifications.ListNotifications)
	notifications.GET("/unread-count", h.Notifications.UnreadCount)
	notifications.PATCH("/:id/read", h.Notifications.MarkRead)
	notifications.POST("/read-all", h.Notifications.MarkAllRead)
	notifications.PATCH("/:id/archive", h.Notifications.Archive)

	if h.Journal != nil {
		g.GET("/journal", h.Journal.ListJournal)
	}

	g.GET("/reports/movements.xlsx", h.Reports.ExportMovements)

	g.GET("/sites", h.Reference.ListSites)
	g.GET("/products", h.Reference.ListProducts)
	g.GET("/customers", h.Reference.ListCustomers)
}

// RegisterHealth mounts the unauthenticated health routes
func (h *HealthHandlers) RegisterHealth(e *echo.Echo) {
	e.GET("/health", h.HealthCheck)
	e.GET("/health/live", h.LivenessCheck)
	e.GET("/health/detailed", h.DetailedHealthCheck)
}
