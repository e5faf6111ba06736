package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"stockbridge/internal/backend"
	"stockbridge/internal/common"
	"stockbridge/internal/models"
)

// Backend is the upstream API surface the workflow services use. *backend.Client satisfies it.
type Backend interface {
	CreateTransfer(ctx context.Context, payload models.CreateTransferPayload) (*models.TransferRequest, error)
	ListTransfers(ctx context.Context) ([]models.TransferRequest, error)
	ListInTransitTransfers(ctx context.Context) ([]models.TransferRequest, error)
	DecideTransfer(ctx context.Context, transferID int64, payload models.DecisionPayload) (*models.DecisionResponse, error)
	ReceiveTransfer(ctx context.Context, transferID int64) error
	Dispatch(ctx context.Context, in models.DispatchInput) (*models.DispatchResponse, error)
	Receive(ctx context.Context, in models.ReceiveInput) (*models.ReceiveResponse, error)
	DispatchDocument(ctx context.Context, transferID int64) (*backend.Binary, error)
	ReceivingDocument(ctx context.Context, docID int64) (*backend.Binary, error)
	ListNotifications(ctx context.Context, filter string) ([]models.Notification, error)
	ListInventory(ctx context.Context, warehouse bool) ([]models.InventoryItem, error)
	ListMovements(ctx context.Context) ([]models.StockMovement, error)
	ListSites(ctx context.Context) ([]models.Site, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Provider is the session's notification provider. Every notification mutation goes
// through it so all subscribers observe the change. *notifications.Store satisfies it.
type Provider interface {
	Refresh(ctx context.Context) error
	Snapshot() models.NotificationSnapshot
	MarkRead(ctx context.Context, id int64) error
	Create(ctx context.Context, in models.NotificationCreate) (*models.Notification, error)
}

// Confirmer is the blocking yes/no gate in front of destructive commands
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFlag is a Confirmer whose answer was given up front, e.g. a "confirmed" request field
type ConfirmFlag bool

func (f ConfirmFlag) Confirm(ctx context.Context, prompt string) bool {
	return bool(f)
}

// Confirmation prompts
const (
	PromptApprove = "Are you sure you want to approve this transfer?"
	PromptReject  = "Are you sure you want to reject this request?"
	PromptReceive = "Are you sure you want to mark this transfer as received?"
)

func confirm(ctx context.Context, c Confirmer, prompt string) error {
	if c == nil || !c.Confirm(ctx, prompt) {
		return &common.ConfirmationRequiredError{Prompt: prompt}
	}
	return nil
}

// CommandGuard prevents the same command from being submitted twice while the first is in flight
type CommandGuard interface {
	AcquireCommandGuard(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseCommandGuard(ctx context.Context, key string) error
}

const guardTTL = time.Minute

// withGuard runs fn while holding the in-flight guard for the caller's command on target.
// If the guard store is unreachable the command proceeds unguarded.
func withGuard(ctx context.Context, guard CommandGuard, command string, target interface{}, fn func() error) error {
	if guard == nil {
		return fn()
	}

	userID, _ := common.GetUserIDFromContext(ctx)
	key := fmt.Sprintf("%d:%s:%v", userID, command, target)

	acquired, err := guard.AcquireCommandGuard(ctx, key, guardTTL)
	if err != nil {
		log.Printf("WARN: in-flight guard unavailable for %s: %v", key, err)
		return fn()
	}
	if !acquired {
		return common.ErrInFlight
	}
	defer func() {
		if err := guard.ReleaseCommandGuard(context.WithoutCancel(ctx), key); err != nil {
			log.Printf("WARN: failed to release in-flight guard %s: %v", key, err)
		}
	}()

	return fn()
}
