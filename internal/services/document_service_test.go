package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockbridge/internal/backend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type DocumentServiceTestSuite struct {
	suite.Suite
	storage *MockObjectStore
	service DocumentArchiver
	ctx     context.Context
}

var archivedAt = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func (suite *DocumentServiceTestSuite) SetupTest() {
	suite.storage = new(MockObjectStore)
	svc := NewDocumentService(suite.storage, 24*time.Hour).(*documentService)
	svc.now = func() time.Time { return archivedAt }
	suite.service = svc
	suite.ctx = context.Background()
}

func (suite *DocumentServiceTestSuite) TearDownTest() {
	suite.storage.AssertExpectations(suite.T())
}

func TestDocumentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceTestSuite))
}

func pdfOptions(kind string) PutOptions {
	return PutOptions{
		ContentType: "application/pdf",
		Metadata:    map[string]string{"kind": kind, "archived-at": "2024-06-01T09:30:00Z"},
	}
}

func (suite *DocumentServiceTestSuite) TestArchive_Success() {
	doc := &backend.Binary{Data: []byte("%PDF-1.4"), ContentType: "application/pdf"}
	name := WaybillObjectName(100)

	suite.storage.On("Put", suite.ctx, "waybills/waybill_100.pdf", mock.Anything, int64(8), pdfOptions("waybills")).Return(nil).Once()
	suite.storage.On("SignedURL", suite.ctx, "waybills/waybill_100.pdf", "waybill_100.pdf", 24*time.Hour).Return("http://minio/signed", nil).Once()

	archived, err := suite.service.Archive(suite.ctx, name, doc)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "http://minio/signed", archived.URL)
	assert.Equal(suite.T(), int64(8), archived.Size)
}

func (suite *DocumentServiceTestSuite) TestArchive_DefaultsContentType() {
	doc := &backend.Binary{Data: []byte("%PDF")}
	suite.storage.On("Put", suite.ctx, "receiving/receiving_doc_31.pdf", mock.Anything, int64(4), pdfOptions("receiving")).Return(nil).Once()
	suite.storage.On("SignedURL", suite.ctx, "receiving/receiving_doc_31.pdf", "receiving_doc_31.pdf", 24*time.Hour).Return("http://minio/r", nil).Once()

	archived, err := suite.service.Archive(suite.ctx, ReceivingObjectName(31), doc)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "application/pdf", archived.ContentType)
}

func (suite *DocumentServiceTestSuite) TestArchive_UploadFails() {
	doc := &backend.Binary{Data: []byte("%PDF")}
	suite.storage.On("Put", suite.ctx, mock.Anything, mock.Anything, int64(4), mock.Anything).Return(errors.New("bucket missing")).Once()

	_, err := suite.service.Archive(suite.ctx, WaybillObjectName(1), doc)
	assert.ErrorContains(suite.T(), err, "bucket missing")
}

func (suite *DocumentServiceTestSuite) TestArchive_SignFails() {
	doc := &backend.Binary{Data: []byte("%PDF")}
	suite.storage.On("Put", suite.ctx, mock.Anything, mock.Anything, int64(4), mock.Anything).Return(nil).Once()
	suite.storage.On("SignedURL", suite.ctx, mock.Anything, mock.Anything, 24*time.Hour).Return("", errors.New("no credentials")).Once()

	_, err := suite.service.Archive(suite.ctx, WaybillObjectName(1), doc)
	assert.ErrorContains(suite.T(), err, "failed to sign")
}

func (suite *DocumentServiceTestSuite) TestArchive_EmptyDocument() {
	_, err := suite.service.Archive(suite.ctx, WaybillObjectName(1), &backend.Binary{})
	assert.Error(suite.T(), err)
}
