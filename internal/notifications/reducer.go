package notifications

import (
	"stockbridge/internal/models"
)

// Reducers apply a tentative local change to a snapshot. They never touch the
// embedded transfer snapshot of a notification; only a fresh fetch replaces it.

func markRead(s *models.NotificationSnapshot, id int64) {
	for i := range s.Notifications {
		if s.Notifications[i].ID == id {
			if !s.Notifications[i].IsRead {
				s.Notifications[i].IsRead = true
				decrementUnread(s)
			}
			return
		}
	}
}

func markAllRead(s *models.NotificationSnapshot) {
	for i := range s.Notifications {
		s.Notifications[i].IsRead = true
	}
	s.UnreadCount = 0
}

func archive(s *models.NotificationSnapshot, id int64) {
	kept := s.Notifications[:0]
	for _, n := range s.Notifications {
		if n.ID == id {
			if !n.IsRead {
				decrementUnread(s)
			}
			continue
		}
		kept = append(kept, n)
	}
	s.Notifications = kept
}

func prepend(s *models.NotificationSnapshot, n models.Notification) {
	for _, existing := range s.Notifications {
		if existing.ID == n.ID {
			return
		}
	}
	s.Notifications = append([]models.Notification{n}, s.Notifications...)
	if !n.IsRead {
		s.UnreadCount++
	}
}

func decrementUnread(s *models.NotificationSnapshot) {
	if s.UnreadCount > 0 {
		s.UnreadCount--
	}
}

func cloneSnapshot(s models.NotificationSnapshot) models.NotificationSnapshot {
	out := s
	out.Notifications = append([]models.Notification(nil), s.Notifications...)
	if out.Notifications == nil {
		out.Notifications = []models.Notification{}
	}
	return out
}
