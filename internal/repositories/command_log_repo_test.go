package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockbridge/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type CommandLogRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    CommandLogRepository
	context context.Context
}

func (suite *CommandLogRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewCommandLogRepo(mock)
	suite.context = context.Background()
}

func (suite *CommandLogRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestCommandLogRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CommandLogRepoTestSuite))
}

var commandLogColumns = []string{"id", "request_id", "user_id", "command", "target_id", "payload", "outcome", "error", "created_at"}

func (suite *CommandLogRepoTestSuite) TestCreate_Success() {
	entry := &models.CommandLog{
		RequestID: "req-1",
		UserID:    7,
		Command:   models.CommandApproveTransfer,
		TargetID:  "12",
		Payload:   models.JSONB{"status": 200},
		Outcome:   models.OutcomeSucceeded,
	}

	suite.mock.ExpectExec(`INSERT INTO command_logs \(id, request_id, user_id, command, target_id, payload, outcome, error, created_at\)`).
		WithArgs(pgxmock.AnyArg(), "req-1", int64(7), models.CommandApproveTransfer, "12", []byte(`{"status":200}`), models.OutcomeSucceeded, (*string)(nil), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, entry)
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, entry.ID)
	assert.False(suite.T(), entry.CreatedAt.IsZero())
}

func (suite *CommandLogRepoTestSuite) TestCreate_DatabaseError() {
	suite.mock.ExpectExec(`INSERT INTO command_logs`).
		WillReturnError(errors.New("connection refused"))

	err := suite.repo.Create(suite.context, &models.CommandLog{UserID: 1, Command: models.CommandDispatch, Outcome: models.OutcomeFailed})
	assert.EqualError(suite.T(), err, "connection refused")
}

func (suite *CommandLogRepoTestSuite) TestList_FiltersAndPaging() {
	command := models.CommandRejectTransfer
	id := uuid.New()
	created := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	failure := "Action failed"

	rows := pgxmock.NewRows(commandLogColumns).
		AddRow(id, "req-9", int64(3), command, "44", []byte(`{"path":"/api/v1/reviews/44/decision"}`), models.OutcomeFailed, &failure, created)

	suite.mock.ExpectQuery(`FROM command_logs WHERE user_id = \$1 AND command = \$2 ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(int64(3), command, 10, 20).
		WillReturnRows(rows)

	entries, err := suite.repo.List(suite.context, 3, &models.CommandLogFilters{Command: &command, Limit: 10, Offset: 20})
	assert.NoError(suite.T(), err)
	if assert.Len(suite.T(), entries, 1) {
		assert.Equal(suite.T(), id, entries[0].ID)
		assert.Equal(suite.T(), "/api/v1/reviews/44/decision", entries[0].Payload["path"])
		assert.Equal(suite.T(), "Action failed", *entries[0].Error)
	}
}

func (suite *CommandLogRepoTestSuite) TestList_NoFilters() {
	suite.mock.ExpectQuery(`FROM command_logs WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(commandLogColumns))

	entries, err := suite.repo.List(suite.context, 5, nil)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), entries)
}
