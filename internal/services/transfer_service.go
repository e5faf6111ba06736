package services

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"stockbridge/internal/common"
	"stockbridge/internal/models"
)

const TransferRequestSentTitle = "Transfer Request Sent"

// SubmitResult is a created transfer and the state refreshed after it
type SubmitResult struct {
	Transfer  *models.TransferRequest `json:"transfer"`
	Dashboard *models.Dashboard       `json:"dashboard,omitempty"`
}

// TransferService runs the branch side of the transfer workflow
type TransferService struct {
	backend   Backend
	refresher *Refresher
	guard     CommandGuard
}

func NewTransferService(backend Backend, refresher *Refresher, guard CommandGuard) *TransferService {
	return &TransferService{backend: backend, refresher: refresher, guard: guard}
}

// ValidateTransferInput rejects a submission before it reaches the network
func ValidateTransferInput(in models.CreateTransferInput) error {
	if in.Product <= 0 {
		return common.NewValidationError("product", "Please select a product")
	}
	if in.Quantity < 1 {
		return common.NewValidationError("quantity", "Quantity must be at least 1")
	}
	return nil
}

// Submit creates a PENDING transfer request for the caller's branch. The origin branch is
// assigned upstream from the caller's identity.
func (s *TransferService) Submit(ctx context.Context, provider Provider, in models.CreateTransferInput) (*SubmitResult, error) {
	if err := ValidateTransferInput(in); err != nil {
		return nil, err
	}

	var created *models.TransferRequest
	err := withGuard(ctx, s.guard, models.CommandSubmitTransfer, in.Product, func() error {
		var err error
		created, err = s.backend.CreateTransfer(ctx, models.CreateTransferPayload{
			Product:        in.Product,
			Quantity:       in.Quantity,
			TransferStatus: models.TransferStatusPending,
			Details:        in.Details,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if provider != nil {
		s.announce(ctx, provider, created, in)
	}

	result := &SubmitResult{Transfer: created}
	if s.refresher != nil {
		dashboard, err := s.refresher.Refresh(ctx, provider, ScopeBranch)
		if err != nil {
			log.Printf("WARN: refresh after transfer %d failed: %v", created.ID, err)
		}
		result.Dashboard = dashboard
	}
	return result, nil
}

// announce emits the requester's own "request sent" notification
func (s *TransferService) announce(ctx context.Context, provider Provider, created *models.TransferRequest, in models.CreateTransferInput) {
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return
	}

	transferID := created.ID
	_, err := provider.Create(ctx, models.NotificationCreate{
		Recipient:        userID,
		NotificationType: models.NotificationTypeTransferRequest,
		Title:            TransferRequestSentTitle,
		Message:          fmt.Sprintf("You requested %dx %s", in.Quantity, s.productName(ctx, in.Product)),
		RelatedObjectID:  &transferID,
	})
	if err != nil {
		common.LogSideEffect(fmt.Sprintf("companion notification for transfer %d", created.ID), err)
	}
}

func (s *TransferService) productName(ctx context.Context, productID int64) string {
	products, err := s.backend.ListProducts(ctx)
	if err != nil {
		log.Printf("WARN: failed to resolve name of product %d: %v", productID, err)
	}
	for _, p := range products {
		if p.ID == productID {
			return p.Name
		}
	}
	return "product #" + strconv.FormatInt(productID, 10)
}

// ListInTransit returns transfers on their way to the caller's branch
func (s *TransferService) ListInTransit(ctx context.Context) ([]models.TransferRequest, error) {
	return s.backend.ListInTransitTransfers(ctx)
}

// ConfirmReceipt marks an in-transit transfer as received in full, then refreshes
func (s *TransferService) ConfirmReceipt(ctx context.Context, provider Provider, confirmer Confirmer, transferID int64) (*models.Dashboard, error) {
	if transferID <= 0 {
		return nil, common.NewValidationError("id", "Invalid transfer ID")
	}
	if err := confirm(ctx, confirmer, PromptReceive); err != nil {
		return nil, err
	}

	err := withGuard(ctx, s.guard, models.CommandReceiveTransfer, transferID, func() error {
		return s.backend.ReceiveTransfer(ctx, transferID)
	})
	if err != nil {
		return nil, err
	}

	if s.refresher == nil {
		return nil, nil
	}
	dashboard, err := s.refresher.Refresh(ctx, provider, ScopeBranch)
	if err != nil {
		log.Printf("WARN: refresh after receiving transfer %d failed: %v", transferID, err)
	}
	return dashboard, nil
}
