package models

import (
	"time"

	"github.com/google/uuid"
)

// JSONB is a free-form object persisted in a jsonb column
type JSONB map[string]interface{}

// CommandLog is one row of the command journal: a workflow command issued on behalf of a user
type CommandLog struct {
	ID        uuid.UUID `json:"id" db:"id"`
	RequestID string    `json:"request_id" db:"request_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Command   string    `json:"command" db:"command"`
	TargetID  string    `json:"target_id" db:"target_id"`
	Payload   JSONB     `json:"payload" db:"payload"`
	Outcome   string    `json:"outcome" db:"outcome"`
	Error     *string   `json:"error,omitempty" db:"error"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Command names recorded in the journal
const (
	CommandSubmitTransfer  = "SUBMIT_TRANSFER"
	CommandApproveTransfer = "APPROVE_TRANSFER"
	CommandRejectTransfer  = "REJECT_TRANSFER"
	CommandDispatch        = "DISPATCH"
	CommandReceive         = "RECEIVE"
	CommandReceiveTransfer = "RECEIVE_TRANSFER"
)

// Outcome constants for command logs
const (
	OutcomeSucceeded = "SUCCEEDED"
	OutcomeFailed    = "FAILED"
)

// CommandLogFilters represents filters for querying the journal
type CommandLogFilters struct {
	Command   *string    `json:"command"`
	Outcome   *string    `json:"outcome"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}
