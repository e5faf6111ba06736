package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockbridge/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type fakeStorage struct {
	exists bool
	err    error
}

func (f *fakeStorage) Put(ctx context.Context, objectName string, reader io.Reader, size int64, opts services.PutOptions) error {
	return nil
}

func (f *fakeStorage) SignedURL(ctx context.Context, objectName, downloadName string, expiry time.Duration) (string, error) {
	return "", nil
}

func (f *fakeStorage) EnsureBucket(ctx context.Context) error { return nil }

func (f *fakeStorage) BucketExists(ctx context.Context) (bool, error) {
	return f.exists, f.err
}

func (f *fakeStorage) Bucket() string { return "docs" }

type fakeJobs map[string]interface{}

func (f fakeJobs) GetJobStatus() map[string]interface{} { return f }

type fakeSessions int

func (f fakeSessions) ActiveCount() int { return int(f) }

func healthy(ctx context.Context) error { return nil }

func serveHealth(h *HealthHandlers, path string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterHealth(e)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthCheck_AllHealthy(t *testing.T) {
	h := NewHealthHandlers(pingFunc(healthy), pingFunc(healthy), &fakeStorage{exists: true}, nil, nil, "1.0.0")

	rec := serveHealth(h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, map[string]string{"database": "healthy", "redis": "healthy", "storage": "healthy"}, status.Services)
}

func TestHealthCheck_DegradedWhenDependencyFails(t *testing.T) {
	redisDown := pingFunc(func(ctx context.Context) error { return errors.New("connection refused") })
	h := NewHealthHandlers(nil, redisDown, &fakeStorage{exists: false}, nil, nil, "1.0.0")

	rec := serveHealth(h, "/health")
	require.Equal(t, http.StatusPartialContent, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "unhealthy", status.Services["redis"])
	assert.Equal(t, "unhealthy", status.Services["storage"])
	_, hasDB := status.Services["database"]
	assert.False(t, hasDB)
}

func TestDetailedHealthCheck(t *testing.T) {
	jobs := fakeJobs{"total_jobs": 2}
	h := NewHealthHandlers(pingFunc(healthy), nil, &fakeStorage{err: errors.New("timeout")}, jobs, fakeSessions(3), "1.0.0")

	rec := serveHealth(h, "/health/detailed")
	require.Equal(t, http.StatusPartialContent, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["overall_status"])
	assert.Equal(t, float64(3), body["active_sessions"])

	checks := body["checks"].(map[string]interface{})
	storage := checks["storage"].(map[string]interface{})
	assert.Equal(t, "timeout", storage["message"])
}

func TestLivenessCheck(t *testing.T) {
	rec := serveHealth(NewHealthHandlers(nil, nil, nil, nil, nil, "1.0.0"), "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}
