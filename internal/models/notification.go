package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeTransferRequest   NotificationType = "TRANSFER_REQUEST"
	NotificationTypeTransferApproval  NotificationType = "TRANSFER_APPROVAL"
	NotificationTypeTransferRejection NotificationType = "TRANSFER_REJECTION"
	NotificationTypeStockAlert        NotificationType = "STOCK_ALERT"
	NotificationTypeSystem            NotificationType = "SYSTEM"
)

// UserRef is a user as embedded by the backend. It accepts both a bare id and an object.
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (u *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		return json.Unmarshal(data, &u.ID)
	}

	type plain UserRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*u = UserRef(p)
	return nil
}

// Notification represents an in-app alert owned by the backend
type Notification struct {
	ID               int64            `json:"id"`
	Recipient        *UserRef         `json:"recipient,omitempty"`
	Sender           *UserRef         `json:"sender,omitempty"`
	RelatedBranch    *SiteRef         `json:"related_branch,omitempty"`
	NotificationType NotificationType `json:"notification_type"`
	Title            string           `json:"title"`
	Message          string           `json:"message"`
	RelatedObjectID  *int64           `json:"related_object_id,omitempty"`
	RelatedTransfer  *RelatedTransfer `json:"related_transfer,omitempty"`
	IsRead           bool             `json:"is_read"`
	TimeSince        string           `json:"time_since,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// NotificationCreate is the body sent to v1/notifications/
type NotificationCreate struct {
	Recipient        int64            `json:"recipient"`
	NotificationType NotificationType `json:"notification_type"`
	Title            string           `json:"title"`
	Message          string           `json:"message"`
	RelatedObjectID  *int64           `json:"related_object_id,omitempty"`
	RelatedBranch    *int64           `json:"related_branch,omitempty"`
}

// UnreadCount mirrors v1/notifications/unread-count/
type UnreadCount struct {
	UnreadCount int `json:"unread_count"`
}

// MarkAllResult mirrors v1/notifications/mark-all-as-read/
type MarkAllResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ReviewItem is a TRANSFER_REQUEST notification flattened for the warehouse review queue
type ReviewItem struct {
	NotificationID int64            `json:"id"`
	TransferID     int64            `json:"related_object_id"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	IsRead         bool             `json:"is_read"`
	Status         TransferStatus   `json:"status"`
	Metadata       TransferMetadata `json:"metadata"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ReviewBoard is the pending/processed split of the review queue
type ReviewBoard struct {
	Pending   []ReviewItem `json:"pending"`
	Processed []ReviewItem `json:"processed"`
}

// Find returns the item with the given notification id from either tab
func (b ReviewBoard) Find(notificationID int64) (ReviewItem, bool) {
	for _, item := range b.Pending {
		if item.NotificationID == notificationID {
			return item, true
		}
	}
	for _, item := range b.Processed {
		if item.NotificationID == notificationID {
			return item, true
		}
	}
	return ReviewItem{}, false
}

// NotificationSnapshot is the provider state every subscriber reads
type NotificationSnapshot struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
