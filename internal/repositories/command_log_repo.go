package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockbridge/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface shared by *pgxpool.Pool, pgx.Tx and pgxmock
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type CommandLogRepository interface {
	// Create appends a journal entry
	Create(ctx context.Context, entry *models.CommandLog) error

	// List returns a user's journal entries, newest first
	List(ctx context.Context, userID int64, filters *models.CommandLogFilters) ([]*models.CommandLog, error)
}

type commandLogRepo struct {
	db DBTX
}

func NewCommandLogRepo(db DBTX) CommandLogRepository {
	return &commandLogRepo{db: db}
}

func (r *commandLogRepo) Create(ctx context.Context, entry *models.CommandLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var payload []byte
	if entry.Payload != nil {
		var err error
		payload, err = json.Marshal(entry.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
	}

	query := `
		INSERT INTO command_logs (id, request_id, user_id, command, target_id, payload, outcome, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.RequestID,
		entry.UserID,
		entry.Command,
		entry.TargetID,
		payload,
		entry.Outcome,
		entry.Error,
		entry.CreatedAt,
	)
	return err
}

func (r *commandLogRepo) List(ctx context.Context, userID int64, filters *models.CommandLogFilters) ([]*models.CommandLog, error) {
	if filters == nil {
		filters = &models.CommandLogFilters{}
	}

	query := `
		SELECT id, request_id, user_id, command, target_id, payload, outcome, error, created_at
		FROM command_logs
		WHERE user_id = $1`

	args := []interface{}{userID}
	argIdx := 1

	if filters.Command != nil {
		argIdx++
		query += fmt.Sprintf(" AND command = $%d", argIdx)
		args = append(args, *filters.Command)
	}

	if filters.Outcome != nil {
		argIdx++
		query += fmt.Sprintf(" AND outcome = $%d", argIdx)
		args = append(args, *filters.Outcome)
	}

	if filters.StartDate != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *filters.StartDate)
	}

	if filters.EndDate != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *filters.EndDate)
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		argIdx++
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
		if filters.Offset > 0 {
			argIdx++
			query += fmt.Sprintf(" OFFSET $%d", argIdx)
			args = append(args, filters.Offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.CommandLog
	for rows.Next() {
		entry := &models.CommandLog{}
		var payload []byte

		if err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.UserID,
			&entry.Command,
			&entry.TargetID,
			&payload,
			&entry.Outcome,
			&entry.Error,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}

		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &entry.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
