package queue

import (
	"time"

	"stockbridge/internal/models"
)

// PageSize is the fixed number of rows per review tab page
const PageSize = 5

// Tab selects one side of the review board
type Tab string

const (
	TabPending   Tab = "pending"
	TabProcessed Tab = "processed"
)

// Valid reports whether t names a known tab
func (t Tab) Valid() bool {
	return t == TabPending || t == TabProcessed
}

// Filters is the full filter state of the review queue
type Filters struct {
	Requester string     `json:"requester"`
	Branch    string     `json:"branch"`
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
	Status    string     `json:"status"`
}

// Equal compares filter values, including the date bounds by calendar instant
func (f Filters) Equal(other Filters) bool {
	return f.Requester == other.Requester &&
		f.Branch == other.Branch &&
		f.Status == other.Status &&
		sameTime(f.From, other.From) &&
		sameTime(f.To, other.To)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Predicates returns the shared predicates; the status filter only applies to the processed tab
func (f Filters) Predicates(tab Tab) []Predicate {
	preds := []Predicate{
		ByRequester(f.Requester),
		ByBranch(f.Branch),
		ByDateRange(f.From, f.To),
	}
	if tab == TabProcessed {
		preds = append(preds, ByStatus(f.Status))
	}
	return preds
}

// ViewState is the per-session tab, filter and page selection
type ViewState struct {
	Tab     Tab     `json:"tab"`
	Filters Filters `json:"filters"`
	Page    int     `json:"page"`
}

// NewViewState returns the initial view: pending tab, no filters, page 1
func NewViewState() ViewState {
	return ViewState{
		Tab:     TabPending,
		Filters: Filters{Branch: AllSentinel, Status: AllSentinel},
		Page:    1,
	}
}

// Update applies a new selection. Changing the tab or any filter resets the page to 1.
func (v ViewState) Update(tab Tab, filters Filters, page int) ViewState {
	if !tab.Valid() {
		tab = v.Tab
	}
	if page < 1 {
		page = 1
	}

	next := ViewState{Tab: tab, Filters: filters, Page: page}
	if tab != v.Tab || !filters.Equal(v.Filters) {
		next.Page = 1
	}
	return next
}

// Page is one page of a listing
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Paginate slices items into the requested page, clamping to the last page
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = PageSize
	}
	total := len(items)
	totalPages := (total + size - 1) / size

	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      append([]T{}, items[start:end]...),
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// ReviewPage is what a session sees for its current view
type ReviewPage struct {
	View           ViewState               `json:"view"`
	Page           Page[models.ReviewItem] `json:"page"`
	PendingCount   int                     `json:"pending_count"`
	ProcessedCount int                     `json:"processed_count"`
}

// Render applies the view's filters to the selected tab and paginates the result
func Render(board models.ReviewBoard, view ViewState) ReviewPage {
	items := board.Pending
	if view.Tab == TabProcessed {
		items = board.Processed
	}

	filtered := Filter(items, view.Filters.Predicates(view.Tab)...)
	return ReviewPage{
		View:           view,
		Page:           Paginate(filtered, view.Page, PageSize),
		PendingCount:   len(board.Pending),
		ProcessedCount: len(board.Processed),
	}
}
