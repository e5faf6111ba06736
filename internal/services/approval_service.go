package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"stockbridge/internal/common"
	"stockbridge/internal/models"
	"stockbridge/internal/queue"
)

// DecisionInput is one approve or reject command from the review queue
type DecisionInput struct {
	NotificationID  int64
	Action          models.DecisionAction
	RejectionReason string
	Dispatch        bool
	DestinationID   int64
	Notes           string
}

// DecisionResult carries the optimistic board and the board re-read after the command
type DecisionResult struct {
	TransferID      int64                  `json:"transfer_id"`
	Status          models.TransferStatus  `json:"status"`
	Message         string                 `json:"message"`
	Tentative       models.ReviewBoard     `json:"tentative"`
	Reconciled      *models.ReviewBoard    `json:"reconciled,omitempty"`
	Dispatch        *models.DispatchResult `json:"dispatch,omitempty"`
	DispatchError   string                 `json:"dispatch_error,omitempty"`
	DispatchPending bool                   `json:"dispatch_pending,omitempty"`
}

// ApprovalService coordinates warehouse decisions on pending transfer requests
type ApprovalService struct {
	backend   Backend
	reviews   *ReviewService
	warehouse *WarehouseService
	guard     CommandGuard
}

func NewApprovalService(backend Backend, reviews *ReviewService, warehouse *WarehouseService, guard CommandGuard) *ApprovalService {
	return &ApprovalService{backend: backend, reviews: reviews, warehouse: warehouse, guard: guard}
}

func promptFor(action models.DecisionAction) string {
	if action == models.DecisionApprove {
		return PromptApprove
	}
	return PromptReject
}

func commandFor(action models.DecisionAction) string {
	if action == models.DecisionApprove {
		return models.CommandApproveTransfer
	}
	return models.CommandRejectTransfer
}

// Decide approves or rejects the request behind a review item. The confirmation gate runs
// before any network call and only unread PENDING items are actionable. The notification is marked read through provider once the decision lands.
func (s *ApprovalService) Decide(ctx context.Context, provider Provider, confirmer Confirmer, in DecisionInput) (*DecisionResult, error) {
	in.Action = models.DecisionAction(strings.ToLower(string(in.Action)))
	if in.Action != models.DecisionApprove && in.Action != models.DecisionReject {
		return nil, common.NewValidationError("action", "action must be approve or reject")
	}
	if err := confirm(ctx, confirmer, promptFor(in.Action)); err != nil {
		return nil, err
	}

	board, err := s.reviews.Board(ctx)
	if err != nil {
		return nil, err
	}
	item, ok := board.Find(in.NotificationID)
	if !ok {
		return nil, fmt.Errorf("review item %d: %w", in.NotificationID, common.ErrNotFound)
	}
	if item.IsRead || !item.Status.Actionable() {
		return nil, &common.NotActionableError{Status: string(item.Status)}
	}
	next, err := item.Status.Decide(in.Action)
	if err != nil {
		return nil, &common.NotActionableError{Status: string(item.Status)}
	}

	payload := models.DecisionPayload{Action: in.Action}
	if in.Action == models.DecisionReject && strings.TrimSpace(in.RejectionReason) != "" {
		reason := strings.TrimSpace(in.RejectionReason)
		payload.RejectionReason = &reason
	}

	var resp *models.DecisionResponse
	err = withGuard(ctx, s.guard, commandFor(in.Action), item.TransferID, func() error {
		var err error
		resp, err = s.backend.DecideTransfer(ctx, item.TransferID, payload)
		return err
	})
	if err != nil {
		return nil, err
	}

	if provider != nil {
		if err := provider.MarkRead(ctx, item.NotificationID); err != nil {
			common.LogSideEffect(fmt.Sprintf("mark review item %d read", item.NotificationID), err)
		}
	}

	// without a fresh server snapshot the tentative one is the old snapshot plus the decision
	metadata := item.Metadata
	if payload.RejectionReason != nil {
		metadata.RejectionReason = *payload.RejectionReason
	}
	if resp.Transfer != nil {
		metadata = resp.Transfer.Metadata
	}
	if metadata.Status == "" || resp.Transfer == nil {
		metadata.Status = string(next)
	}
	tentative, _ := queue.ApplyDecision(board, item.NotificationID, next, &metadata)

	result := &DecisionResult{
		TransferID: item.TransferID,
		Status:     next,
		Message:    resp.Message,
		Tentative:  tentative,
	}

	if in.Action == models.DecisionApprove && in.Dispatch {
		s.dispatchApproved(ctx, item, in, result)
	}

	reconciled, err := s.reviews.Board(ctx)
	if err != nil {
		log.Printf("WARN: reconciling review board after transfer %d failed: %v", item.TransferID, err)
	} else {
		result.Reconciled = &reconciled
	}

	return result, nil
}

// dispatchApproved ships the approved quantity to the requesting branch. Its failure is
// reported on the result and never undoes the approval.
func (s *ApprovalService) dispatchApproved(ctx context.Context, item models.ReviewItem, in DecisionInput, result *DecisionResult) {
	destination := in.DestinationID
	if destination == 0 {
		destination = item.Metadata.BranchID
	}
	if s.warehouse == nil || item.Metadata.ProductID == 0 || item.Metadata.Quantity < 1 || destination == 0 {
		result.DispatchPending = true
		return
	}

	notes := in.Notes
	if notes == "" {
		notes = fmt.Sprintf("Dispatch for transfer #%d", item.TransferID)
	}

	dispatched, err := s.warehouse.Dispatch(ctx, models.DispatchInput{
		ProductID:     item.Metadata.ProductID,
		Quantity:      item.Metadata.Quantity,
		DestinationID: destination,
		Notes:         notes,
	})
	if err != nil {
		log.Printf("WARN: dispatch after approving transfer %d failed: %v", item.TransferID, err)
		result.DispatchError = err.Error()
		return
	}
	result.Dispatch = dispatched
}
