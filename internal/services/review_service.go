package services

import (
	"context"
	"strings"

	"stockbridge/internal/models"
	"stockbridge/internal/queue"
)

// ReviewFeedFilter scopes the notification feed to the warehouse review queue
const ReviewFeedFilter = "warehouse"

// ReviewService builds the warehouse review board from the notification feed
type ReviewService struct {
	backend Backend
}

func NewReviewService(backend Backend) *ReviewService {
	return &ReviewService{backend: backend}
}

// Board fetches the feed and splits its transfer requests by read state
func (s *ReviewService) Board(ctx context.Context) (models.ReviewBoard, error) {
	feed, err := s.backend.ListNotifications(ctx, ReviewFeedFilter)
	if err != nil {
		return models.ReviewBoard{}, err
	}
	return queue.Partition(queue.FromNotifications(feed)), nil
}

// Roster returns the branch names accepted by the branch filter
func (s *ReviewService) Roster(ctx context.Context) ([]string, error) {
	sites, err := s.backend.ListSites(ctx)
	if err != nil {
		return nil, err
	}
	return queue.BranchRoster(sites), nil
}

// Page validates the requested selection, folds it into current and renders the board.
// The returned view state replaces the session's.
func (s *ReviewService) Page(ctx context.Context, current queue.ViewState, tab queue.Tab, filters queue.Filters, page int) (*queue.ReviewPage, queue.ViewState, error) {
	filters = normalizeFilters(filters)

	if err := queue.ValidateProcessedStatus(filters.Status); err != nil {
		return nil, current, err
	}
	if filters.Branch != queue.AllSentinel {
		roster, err := s.Roster(ctx)
		if err != nil {
			return nil, current, err
		}
		if err := queue.ValidateBranch(filters.Branch, roster); err != nil {
			return nil, current, err
		}
	}

	view := current.Update(tab, filters, page)

	board, err := s.Board(ctx)
	if err != nil {
		return nil, current, err
	}

	rendered := queue.Render(board, view)
	view.Page = rendered.Page.Page
	rendered.View = view
	return &rendered, view, nil
}

func normalizeFilters(f queue.Filters) queue.Filters {
	f.Requester = strings.TrimSpace(f.Requester)
	f.Branch = strings.TrimSpace(f.Branch)
	if f.Branch == "" {
		f.Branch = queue.AllSentinel
	}
	f.Status = strings.ToUpper(strings.TrimSpace(f.Status))
	if f.Status == "" {
		f.Status = queue.AllSentinel
	}
	return f
}
