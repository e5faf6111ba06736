package handlers

import (
	"net/http"

	"stockbridge/internal/common"

	"github.com/labstack/echo/v4"
)

// NotificationHandlers exposes the session's notification provider.
// Every mutation goes through the provider so all of the user's views see it.
type NotificationHandlers struct{}

// NewNotificationHandlers creates a new notification handlers instance
func NewNotificationHandlers() *NotificationHandlers {
	return &NotificationHandlers{}
}

// ListNotifications godoc
// @Summary Current notification snapshot
// @Description The list and the unread count are polled independently and may briefly disagree.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.NotificationSnapshot
// @Router /v1/notifications [get]
func (h *NotificationHandlers) ListNotifications(c echo.Context) error {
	s, ok := currentSession(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	return c.JSON(http.StatusOK, s.Store.Snapshot())
}

// UnreadCount godoc
// @Summary Unread notification count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UnreadCount
// @Router /v1/notifications/unread-count [get]
func (h *NotificationHandlers) UnreadCount(c echo.Context) error {
	s, ok := currentSession(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	return c.JSON(http.StatusOK, map[string]int{
		"unread_count": s.Store.Snapshot().UnreadCount,
	})
}

// MarkRead godoc
// @Summary Mark one notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} models.NotificationSnapshot
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/notifications/{id}/read [patch]
func (h *NotificationHandlers) MarkRead(c echo.Context) error {
	s, ok := currentSession(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	if err := s.Store.MarkRead(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, s.Store.Snapshot())
}

// MarkAllRead godoc
// @Summary Mark every notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.NotificationSnapshot
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/notifications/read-all [post]
func (h *NotificationHandlers) MarkAllRead(c echo.Context) error {
	s, ok := currentSession(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := s.Store.MarkAllRead(c.Request().Context()); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, s.Store.Snapshot())
}

// Archive godoc
// @Summary Archive a notification
// @Description Archiving an already archived notification succeeds.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} models.NotificationSnapshot
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/notifications/{id}/archive [patch]
func (h *NotificationHandlers) Archive(c echo.Context) error {
	s, ok := currentSession(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	if err := s.Store.Archive(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, s.Store.Snapshot())
}
