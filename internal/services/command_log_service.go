package services

import (
	"context"
	"errors"
	"log"
	"time"

	"stockbridge/internal/models"
	"stockbridge/internal/repositories"

	"github.com/google/uuid"
)

type CommandLogService interface {
	// Record appends a journal entry. Failures are logged, never returned to the command.
	Record(ctx context.Context, entry *models.CommandLog)

	// List returns the caller's journal
	List(ctx context.Context, userID int64, filters *models.CommandLogFilters) ([]*models.CommandLog, error)

	ValidateFilters(filters *models.CommandLogFilters) error
}

type commandLogService struct {
	repo repositories.CommandLogRepository
}

func NewCommandLogService(repo repositories.CommandLogRepository) CommandLogService {
	return &commandLogService{repo: repo}
}

func (s *commandLogService) Record(ctx context.Context, entry *models.CommandLog) {
	if entry.Command == "" || entry.UserID == 0 {
		log.Printf("WARN: dropping journal entry without command or user: %+v", entry)
		return
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Outcome == "" {
		entry.Outcome = models.OutcomeSucceeded
	}

	if err := s.repo.Create(context.WithoutCancel(ctx), entry); err != nil {
		log.Printf("WARN: failed to record %s for user %d: %v", entry.Command, entry.UserID, err)
	}
}

func (s *commandLogService) List(ctx context.Context, userID int64, filters *models.CommandLogFilters) ([]*models.CommandLog, error) {
	if filters == nil {
		filters = &models.CommandLogFilters{Limit: 50}
	}
	if filters.Limit <= 0 || filters.Limit > 500 {
		filters.Limit = 50
	}
	if err := s.ValidateFilters(filters); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, userID, filters)
}

func (s *commandLogService) ValidateFilters(filters *models.CommandLogFilters) error {
	if filters.Offset < 0 {
		return errors.New("offset cannot be negative")
	}
	if filters.StartDate != nil && filters.EndDate != nil && filters.StartDate.After(*filters.EndDate) {
		return errors.New("start_date cannot be after end_date")
	}
	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Sub(*filters.StartDate) > 366*24*time.Hour {
		return errors.New("date range cannot exceed 1 year")
	}
	if filters.Outcome != nil && *filters.Outcome != models.OutcomeSucceeded && *filters.Outcome != models.OutcomeFailed {
		return errors.New("outcome must be SUCCEEDED or FAILED")
	}
	return nil
}
