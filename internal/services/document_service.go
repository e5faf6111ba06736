package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"stockbridge/internal/backend"
	"stockbridge/internal/models"
)

// DocumentArchiver stores a downloaded document and returns where it can be fetched
type DocumentArchiver interface {
	Archive(ctx context.Context, objectName string, doc *backend.Binary) (*models.Document, error)
}

// WaybillObjectName is the object key of a dispatch waybill
func WaybillObjectName(transferID int64) string {
	return fmt.Sprintf("waybills/waybill_%d.pdf", transferID)
}

// ReceivingObjectName is the object key of a receiving note
func ReceivingObjectName(docID int64) string {
	return fmt.Sprintf("receiving/receiving_doc_%d.pdf", docID)
}

type documentService struct {
	storage ObjectStore
	expiry  time.Duration
	now     func() time.Time
}

// NewDocumentService archives documents into storage and hands out presigned links valid for expiry
func NewDocumentService(storage ObjectStore, expiry time.Duration) DocumentArchiver {
	return &documentService{storage: storage, expiry: expiry, now: time.Now}
}

func (s *documentService) Archive(ctx context.Context, objectName string, doc *backend.Binary) (*models.Document, error) {
	if doc == nil || len(doc.Data) == 0 {
		return nil, fmt.Errorf("document %s is empty", objectName)
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}

	size := int64(len(doc.Data))
	opts := PutOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			"kind":        path.Dir(objectName),
			"archived-at": s.now().UTC().Format(time.RFC3339),
		},
	}
	if err := s.storage.Put(ctx, objectName, bytes.NewReader(doc.Data), size, opts); err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", objectName, err)
	}

	url, err := s.storage.SignedURL(ctx, objectName, path.Base(objectName), s.expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s: %w", objectName, err)
	}

	return &models.Document{
		ObjectName:  objectName,
		ContentType: contentType,
		Size:        size,
		URL:         url,
	}, nil
}
