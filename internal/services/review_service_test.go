package services

import (
	"context"
	"testing"
	"time"

	"stockbridge/internal/common"
	"stockbridge/internal/models"
	"stockbridge/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func reviewFeed(n int, read bool, branch string) []models.Notification {
	out := make([]models.Notification, 0, n)
	for i := 0; i < n; i++ {
		id := int64(i + 1)
		if read {
			id += 100
		}
		out = append(out, models.Notification{
			ID:               id,
			NotificationType: models.NotificationTypeTransferRequest,
			IsRead:           read,
			CreatedAt:        time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
			RelatedTransfer: &models.RelatedTransfer{
				ID:       id,
				Status:   "PENDING",
				Metadata: models.TransferMetadata{BranchName: branch, RequestedBy: "alice"},
			},
		})
	}
	return out
}

func TestReviewPage_ResetsPageOnFilterChange(t *testing.T) {
	backend := new(MockBackend)
	service := NewReviewService(backend)
	feed := append(reviewFeed(12, false, "Downtown"), models.Notification{ID: 500, NotificationType: models.NotificationTypeStockAlert})
	backend.On("ListNotifications", mock.Anything, "warehouse").Return(feed, nil)
	backend.On("ListSites", mock.Anything).Return([]models.Site{{Name: "Downtown"}, {Name: "Central", IsWarehouse: true}}, nil)

	ctx := context.Background()
	page, view, err := service.Page(ctx, queue.NewViewState(), queue.TabPending, queue.Filters{}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page.Page)
	assert.Len(t, page.Page.Items, 2)
	assert.Equal(t, 12, page.PendingCount)

	page, view, err = service.Page(ctx, view, queue.TabPending, queue.Filters{Branch: "Downtown"}, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Page)
	assert.Len(t, page.Page.Items, queue.PageSize)
}

func TestReviewPage_ClampsToLastPage(t *testing.T) {
	backend := new(MockBackend)
	service := NewReviewService(backend)
	backend.On("ListNotifications", mock.Anything, "warehouse").Return(reviewFeed(6, true, "Downtown"), nil)

	page, view, err := service.Page(context.Background(), queue.NewViewState(), queue.TabProcessed, queue.Filters{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Page)

	page, view, err = service.Page(context.Background(), view, queue.TabProcessed, queue.Filters{}, 9)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page.Page)
	assert.Equal(t, 2, view.Page)
}

func TestReviewPage_RejectsUnknownBranch(t *testing.T) {
	backend := new(MockBackend)
	service := NewReviewService(backend)
	backend.On("ListSites", mock.Anything).Return([]models.Site{{Name: "Downtown"}}, nil)

	current := queue.NewViewState()
	_, view, err := service.Page(context.Background(), current, queue.TabPending, queue.Filters{Branch: "Uptown"}, 1)
	var validationErr *common.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "branch", validationErr.Field)
	assert.Equal(t, current, view)
	backend.AssertNotCalled(t, "ListNotifications", mock.Anything, mock.Anything)
}

func TestReviewPage_RejectsUnknownStatus(t *testing.T) {
	service := NewReviewService(new(MockBackend))
	_, _, err := service.Page(context.Background(), queue.NewViewState(), queue.TabProcessed, queue.Filters{Status: "COMPLETED"}, 1)
	assert.Error(t, err)
}
