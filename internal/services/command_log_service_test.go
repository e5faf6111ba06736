package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockbridge/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CommandLogServiceTestSuite struct {
	suite.Suite
	mockRepo *MockCommandLogRepository
	service  CommandLogService
	ctx      context.Context
}

func (suite *CommandLogServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCommandLogRepository)
	suite.service = NewCommandLogService(suite.mockRepo)
	suite.ctx = context.Background()
}

func TestCommandLogServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CommandLogServiceTestSuite))
}

func (suite *CommandLogServiceTestSuite) TestRecord_AssignsIDAndOutcome() {
	suite.mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.CommandLog) bool {
		return e.ID != uuid.Nil && e.Outcome == models.OutcomeSucceeded && e.Command == models.CommandDispatch
	})).Return(nil).Once()

	suite.service.Record(suite.ctx, &models.CommandLog{UserID: 7, Command: models.CommandDispatch})
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CommandLogServiceTestSuite) TestRecord_RepositoryErrorIsSwallowed() {
	suite.mockRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	assert.NotPanics(suite.T(), func() {
		suite.service.Record(suite.ctx, &models.CommandLog{UserID: 7, Command: models.CommandReceive})
	})
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CommandLogServiceTestSuite) TestRecord_DropsAnonymousEntries() {
	suite.service.Record(suite.ctx, &models.CommandLog{Command: models.CommandReceive})
	suite.mockRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *CommandLogServiceTestSuite) TestList_DefaultLimit() {
	expected := []*models.CommandLog{{ID: uuid.New(), UserID: 7}}
	suite.mockRepo.On("List", suite.ctx, int64(7), &models.CommandLogFilters{Limit: 50}).Return(expected, nil).Once()

	entries, err := suite.service.List(suite.ctx, 7, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), expected, entries)
}

func (suite *CommandLogServiceTestSuite) TestList_InvalidRange() {
	start := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	_, err := suite.service.List(suite.ctx, 7, &models.CommandLogFilters{StartDate: &start, EndDate: &end})
	assert.EqualError(suite.T(), err, "start_date cannot be after end_date")
	suite.mockRepo.AssertNotCalled(suite.T(), "List", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CommandLogServiceTestSuite) TestList_InvalidOutcome() {
	outcome := "MAYBE"
	_, err := suite.service.List(suite.ctx, 7, &models.CommandLogFilters{Outcome: &outcome})
	assert.Error(suite.T(), err)
}
