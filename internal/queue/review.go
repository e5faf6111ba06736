package queue

import (
	"strings"
	"time"

	"stockbridge/internal/common"
	"stockbridge/internal/models"
)

// AllSentinel disables the branch and status filters
const AllSentinel = "ALL"

// Predicate selects review items. Predicates are pure, so any set of them can be applied in any order.
type Predicate func(models.ReviewItem) bool

// FromNotifications keeps TRANSFER_REQUEST notifications and flattens them into review items
func FromNotifications(notifications []models.Notification) []models.ReviewItem {
	items := make([]models.ReviewItem, 0, len(notifications))
	for _, n := range notifications {
		if n.NotificationType != models.NotificationTypeTransferRequest {
			continue
		}
		items = append(items, toReviewItem(n))
	}
	return items
}

func toReviewItem(n models.Notification) models.ReviewItem {
	item := models.ReviewItem{
		NotificationID: n.ID,
		Title:          n.Title,
		Message:        n.Message,
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt,
		Status:         models.TransferStatusUnknown,
	}
	if n.RelatedObjectID != nil {
		item.TransferID = *n.RelatedObjectID
	}

	if rt := n.RelatedTransfer; rt != nil {
		if item.TransferID == 0 {
			item.TransferID = rt.ID
		}
		item.Metadata = rt.Metadata
		if item.Metadata.ProductID == 0 {
			item.Metadata.ProductID = rt.Product
		}
		if item.Metadata.Quantity == 0 {
			item.Metadata.Quantity = rt.Quantity
		}
		item.Status = models.ResolveTransferStatus(rt.Status, rt.TransferStatus, rt.Metadata.Status)
	}
	// read state is the queue's state signal; an unread request without a snapshot is still awaiting a decision
	if !item.IsRead && item.Status == models.TransferStatusUnknown {
		item.Status = models.TransferStatusPending
	}
	return item
}

// Partition splits items by read state alone: unread items are pending, read items are processed
func Partition(items []models.ReviewItem) models.ReviewBoard {
	board := models.ReviewBoard{
		Pending:   []models.ReviewItem{},
		Processed: []models.ReviewItem{},
	}
	for _, item := range items {
		if item.IsRead {
			board.Processed = append(board.Processed, item)
		} else {
			board.Pending = append(board.Pending, item)
		}
	}
	return board
}

// ByRequester matches a case-insensitive substring of the requester name
func ByRequester(query string) Predicate {
	query = strings.ToLower(strings.TrimSpace(query))
	return func(item models.ReviewItem) bool {
		if query == "" {
			return true
		}
		return strings.Contains(strings.ToLower(item.Metadata.RequestedBy), query)
	}
}

// ByBranch matches the branch name exactly; empty or ALL matches everything
func ByBranch(branch string) Predicate {
	return func(item models.ReviewItem) bool {
		if branch == "" || branch == AllSentinel {
			return true
		}
		return item.Metadata.BranchName == branch
	}
}

// ByDateRange matches created_at inside [start of from, end of to]. Either bound may be nil.
func ByDateRange(from, to *time.Time) Predicate {
	return func(item models.ReviewItem) bool {
		return InDateRange(item.CreatedAt, from, to)
	}
}

// ByStatus matches the resolved transfer status; empty or ALL matches everything
func ByStatus(status string) Predicate {
	status = strings.ToUpper(strings.TrimSpace(status))
	return func(item models.ReviewItem) bool {
		if status == "" || status == AllSentinel {
			return true
		}
		return string(item.Status) == status
	}
}

// Filter returns the items every predicate accepts, preserving input order
func Filter(items []models.ReviewItem, predicates ...Predicate) []models.ReviewItem {
	out := make([]models.ReviewItem, 0, len(items))
	for _, item := range items {
		if matchesAll(item, predicates) {
			out = append(out, item)
		}
	}
	return out
}

func matchesAll(item models.ReviewItem, predicates []Predicate) bool {
	for _, p := range predicates {
		if !p(item) {
			return false
		}
	}
	return true
}

// InDateRange reports whether t falls on or after the start of from's day and on or before the end of to's day
func InDateRange(t time.Time, from, to *time.Time) bool {
	t = t.UTC()
	if from != nil && t.Before(startOfDay(*from)) {
		return false
	}
	if to != nil && t.After(endOfDay(*to)) {
		return false
	}
	return true
}

func startOfDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func endOfDay(d time.Time) time.Time {
	return startOfDay(d).Add(24*time.Hour - time.Nanosecond)
}

// BranchRoster returns the names of non-warehouse sites
func BranchRoster(sites []models.Site) []string {
	names := make([]string, 0, len(sites))
	for _, s := range sites {
		if !s.IsWarehouse {
			names = append(names, s.Name)
		}
	}
	return names
}

// ValidateBranch checks a branch filter against the roster
func ValidateBranch(branch string, roster []string) error {
	if branch == "" || branch == AllSentinel {
		return nil
	}
	for _, name := range roster {
		if name == branch {
			return nil
		}
	}
	return common.NewValidationError("branch", "branch is not in the branch roster")
}

// ValidateProcessedStatus checks the processed-tab status filter
func ValidateProcessedStatus(status string) error {
	switch strings.ToUpper(status) {
	case "", AllSentinel, string(models.TransferStatusApproved), string(models.TransferStatusRejected), string(models.TransferStatusInTransit):
		return nil
	}
	return common.NewValidationError("status", "status must be one of: ALL, APPROVED, REJECTED, IN_TRANSIT")
}
