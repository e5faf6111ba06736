package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TransferStatus is the lifecycle state of a stock transfer request as reported by the backend
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusInTransit TransferStatus = "IN_TRANSIT"
	TransferStatusApproved  TransferStatus = "APPROVED"
	TransferStatusRejected  TransferStatus = "REJECTED"
	TransferStatusCompleted TransferStatus = "COMPLETED"

	// TransferStatusUnknown is rendered for any status the backend reports that we do not recognise
	TransferStatusUnknown TransferStatus = "UNKNOWN"
)

// AllTransferStatuses lists every status the workflow knows about
var AllTransferStatuses = []TransferStatus{
	TransferStatusPending,
	TransferStatusInTransit,
	TransferStatusApproved,
	TransferStatusRejected,
	TransferStatusCompleted,
}

// transferTransitions holds the forward-only status flow
var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferStatusPending:   {TransferStatusApproved, TransferStatusRejected, TransferStatusInTransit},
	TransferStatusApproved:  {TransferStatusInTransit},
	TransferStatusInTransit: {TransferStatusCompleted},
}

// DecisionAction is the discriminator sent to the approval endpoint
type DecisionAction string

const (
	DecisionApprove DecisionAction = "approve"
	DecisionReject  DecisionAction = "reject"
)

var (
	ErrInvalidDecision   = errors.New("unsupported decision action")
	ErrInvalidTransition = errors.New("transfer status cannot move backward or skip states")
)

// IsKnown reports whether the status is part of the workflow
func (s TransferStatus) IsKnown() bool {
	for _, known := range AllTransferStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist
func (s TransferStatus) IsTerminal() bool {
	return len(transferTransitions[s]) == 0
}

// CanTransition reports whether moving from s to next is a forward step
func (s TransferStatus) CanTransition(next TransferStatus) bool {
	for _, allowed := range transferTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Actionable reports whether warehouse staff may approve or reject a request in this status
func (s TransferStatus) Actionable() bool {
	return s == TransferStatusPending
}

// Decide returns the status that results from applying action to s.
// Approval moves a pending request straight to IN_TRANSIT, which is what the branch observes.
func (s TransferStatus) Decide(action DecisionAction) (TransferStatus, error) {
	var next TransferStatus
	switch action {
	case DecisionApprove:
		next = TransferStatusInTransit
	case DecisionReject:
		next = TransferStatusRejected
	default:
		return s, fmt.Errorf("%w: %q", ErrInvalidDecision, action)
	}

	if !s.Actionable() || !s.CanTransition(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return next, nil
}

// Notice is the read-only message shown for requests that can no longer be decided
func (s TransferStatus) Notice() string {
	return fmt.Sprintf("This request has already been %s.", strings.ToLower(string(s)))
}

// ResolveTransferStatus picks the first non-empty candidate, falling back to UNKNOWN
func ResolveTransferStatus(candidates ...string) TransferStatus {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c != "" {
			return TransferStatus(strings.ToUpper(c))
		}
	}
	return TransferStatusUnknown
}

// TransferRequest represents a branch's request for stock from the central warehouse
type TransferRequest struct {
	ID             int64          `json:"id"`
	ProductID      int64          `json:"product"`
	Quantity       int            `json:"quantity"`
	FromBranch     int64          `json:"from_branch,omitempty"`
	ToBranch       int64          `json:"to_branch,omitempty"`
	Details        string         `json:"details"`
	TransferStatus TransferStatus `json:"transfer_status"`
	CreatedAt      time.Time      `json:"created_at"`
	TransferDate   *time.Time     `json:"transfer_date,omitempty"`

	// Joined fields returned by the in-transit listing
	ProductName    string `json:"product_name,omitempty"`
	FromBranchName string `json:"from_branch_name,omitempty"`
}

// TransferMetadata is the denormalized transfer snapshot embedded in notifications.
// It is a read-only projection and is only ever replaced wholesale.
type TransferMetadata struct {
	ProductID       int64  `json:"product_id,omitempty"`
	ProductName     string `json:"product_name,omitempty"`
	Quantity        int    `json:"quantity,omitempty"`
	BranchID        int64  `json:"branch_id,omitempty"`
	BranchName      string `json:"branch_name,omitempty"`
	RequestedBy     string `json:"requested_by,omitempty"`
	Status          string `json:"status,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// RelatedTransfer is the transfer snapshot attached to a TRANSFER_REQUEST notification
type RelatedTransfer struct {
	ID             int64            `json:"id"`
	Product        int64            `json:"product,omitempty"`
	Quantity       int              `json:"quantity,omitempty"`
	Status         string           `json:"status,omitempty"`
	TransferStatus string           `json:"transfer_status,omitempty"`
	Metadata       TransferMetadata `json:"metadata"`
}

// CreateTransferInput is what a branch user submits
type CreateTransferInput struct {
	Product  int64  `json:"product"`
	Quantity int    `json:"quantity"`
	Details  string `json:"details"`
}

// CreateTransferPayload is the body sent to v1/stock-transfer/
type CreateTransferPayload struct {
	Product        int64          `json:"product"`
	Quantity       int            `json:"quantity"`
	TransferStatus TransferStatus `json:"transfer_status"`
	Details        string         `json:"details"`
}

// DecisionPayload is the body sent to v1/stock-transfer/approve/{id}/
type DecisionPayload struct {
	Action          DecisionAction `json:"action"`
	RejectionReason *string        `json:"rejection_reason,omitempty"`
}

// DecisionResponse is returned by the approval endpoint
type DecisionResponse struct {
	Message  string           `json:"message"`
	Transfer *RelatedTransfer `json:"transfer,omitempty"`
}
