package services

import (
	"context"
	"io"
	"sync"
	"time"

	"stockbridge/internal/backend"
	"stockbridge/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) CreateTransfer(ctx context.Context, payload models.CreateTransferPayload) (*models.TransferRequest, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransferRequest), args.Error(1)
}

func (m *MockBackend) ListTransfers(ctx context.Context) ([]models.TransferRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TransferRequest), args.Error(1)
}

func (m *MockBackend) ListInTransitTransfers(ctx context.Context) ([]models.TransferRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TransferRequest), args.Error(1)
}

func (m *MockBackend) DecideTransfer(ctx context.Context, transferID int64, payload models.DecisionPayload) (*models.DecisionResponse, error) {
	args := m.Called(ctx, transferID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DecisionResponse), args.Error(1)
}

func (m *MockBackend) ReceiveTransfer(ctx context.Context, transferID int64) error {
	return m.Called(ctx, transferID).Error(0)
}

func (m *MockBackend) Dispatch(ctx context.Context, in models.DispatchInput) (*models.DispatchResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DispatchResponse), args.Error(1)
}

func (m *MockBackend) Receive(ctx context.Context, in models.ReceiveInput) (*models.ReceiveResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReceiveResponse), args.Error(1)
}

func (m *MockBackend) DispatchDocument(ctx context.Context, transferID int64) (*backend.Binary, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Binary), args.Error(1)
}

func (m *MockBackend) ReceivingDocument(ctx context.Context, docID int64) (*backend.Binary, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Binary), args.Error(1)
}

func (m *MockBackend) ListNotifications(ctx context.Context, filter string) ([]models.Notification, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockBackend) ListInventory(ctx context.Context, warehouse bool) ([]models.InventoryItem, error) {
	args := m.Called(ctx, warehouse)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InventoryItem), args.Error(1)
}

func (m *MockBackend) ListMovements(ctx context.Context) ([]models.StockMovement, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StockMovement), args.Error(1)
}

func (m *MockBackend) ListSites(ctx context.Context) ([]models.Site, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Site), args.Error(1)
}

func (m *MockBackend) ListProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockProvider) Snapshot() models.NotificationSnapshot {
	return m.Called().Get(0).(models.NotificationSnapshot)
}

func (m *MockProvider) MarkRead(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProvider) Create(ctx context.Context, in models.NotificationCreate) (*models.Notification, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

type MockDocumentArchiver struct {
	mock.Mock
}

func (m *MockDocumentArchiver) Archive(ctx context.Context, objectName string, doc *backend.Binary) (*models.Document, error) {
	args := m.Called(ctx, objectName, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, objectName string, reader io.Reader, size int64, opts PutOptions) error {
	return m.Called(ctx, objectName, reader, size, opts).Error(0)
}

func (m *MockObjectStore) SignedURL(ctx context.Context, objectName, downloadName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, downloadName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) EnsureBucket(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockObjectStore) BucketExists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectStore) Bucket() string {
	return m.Called().String(0)
}

type MockDashboardCache struct {
	mock.Mock
}

func (m *MockDashboardCache) GetDashboard(ctx context.Context, userID int64) (*models.Dashboard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dashboard), args.Error(1)
}

func (m *MockDashboardCache) SetDashboard(ctx context.Context, userID int64, dashboard *models.Dashboard, ttl time.Duration) error {
	return m.Called(ctx, userID, dashboard, ttl).Error(0)
}

type MockAlertDeduper struct {
	mock.Mock
}

func (m *MockAlertDeduper) MarkStockAlerted(ctx context.Context, userID, itemID int64, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, userID, itemID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertDeduper) ClearStockAlert(ctx context.Context, userID, itemID int64) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

// memoryGuard is an in-process CommandGuard
type memoryGuard struct {
	mu   sync.Mutex
	held map[string]bool
	keys []string
}

func newMemoryGuard() *memoryGuard {
	return &memoryGuard{held: make(map[string]bool)}
}

func (g *memoryGuard) AcquireCommandGuard(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	g.keys = append(g.keys, key)
	return true, nil
}

func (g *memoryGuard) ReleaseCommandGuard(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
	return nil
}

func (g *memoryGuard) hold(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held[key] = true
}

type MockCommandLogRepository struct {
	mock.Mock
}

func (m *MockCommandLogRepository) Create(ctx context.Context, entry *models.CommandLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockCommandLogRepository) List(ctx context.Context, userID int64, filters *models.CommandLogFilters) ([]*models.CommandLog, error) {
	args := m.Called(ctx, userID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CommandLog), args.Error(1)
}
