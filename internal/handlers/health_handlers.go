package handlers

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"stockbridge/internal/services"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 3 * time.Second

var errBucketMissing = errors.New("document bucket does not exist")

// Pinger is anything that can report its own connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// JobStatusReporter reports scheduled background jobs
type JobStatusReporter interface {
	GetJobStatus() map[string]interface{}
}

// SessionCounter reports the number of mounted sessions
type SessionCounter interface {
	ActiveCount() int
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db       Pinger
	redisSvc Pinger
	storage  services.ObjectStore
	jobs     JobStatusReporter
	sessions SessionCounter
	version  string
	started  time.Time
}

// NewHealthHandlers creates a new health handlers instance. Any dependency may be nil, in which case it is reported as disabled.
func NewHealthHandlers(db Pinger, redisSvc Pinger, storage services.ObjectStore, jobs JobStatusReporter, sessions SessionCounter, version string) *HealthHandlers {
	return &HealthHandlers{
		db:       db,
		redisSvc: redisSvc,
		storage:  storage,
		jobs:     jobs,
		sessions: sessions,
		version:  version,
		started:  time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

type dependencyCheck struct {
	name  string
	check func(ctx context.Context) error
}

func (h *HealthHandlers) dependencies() []dependencyCheck {
	var checks []dependencyCheck
	if h.db != nil {
		checks = append(checks, dependencyCheck{"database", h.db.Ping})
	}
	if h.redisSvc != nil {
		checks = append(checks, dependencyCheck{"redis", h.redisSvc.Ping})
	}
	if h.storage != nil {
		checks = append(checks, dependencyCheck{"storage", h.checkStorage})
	}
	return checks
}

// checkStorage verifies the document bucket is reachable
func (h *HealthHandlers) checkStorage(ctx context.Context) error {
	found, err := h.storage.BucketExists(ctx)
	if err != nil {
		return err
	}
	if !found {
		return errBucketMissing
	}
	return nil
}

// HealthCheck godoc
// @Summary Service health
// @Description Returns 206 when a dependency is unhealthy.
// @Tags health
// @Produce json
// @Success 200 {object} HealthStatus
// @Success 206 {object} HealthStatus
// @Router /health [get]
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	}

	for _, dep := range h.dependencies() {
		if err := dep.check(ctx); err != nil {
			health.Services[dep.name] = "unhealthy"
			health.Status = "degraded"
		} else {
			health.Services[dep.name] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}

	return c.JSON(statusCode, health)
}

// LivenessCheck determines if the application is running (basic liveness probe)
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DetailedHealthCheck godoc
// @Summary Detailed service health
// @Description Per-dependency latency, scheduled jobs and mounted sessions.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Success 206 {object} map[string]interface{}
// @Router /health/detailed [get]
func (h *HealthHandlers) DetailedHealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	checks := make(map[string]interface{})
	overall := "healthy"

	for _, dep := range h.dependencies() {
		start := time.Now()
		err := dep.check(ctx)
		result := map[string]interface{}{
			"status":     "healthy",
			"message":    "",
			"latency_ms": time.Since(start).Milliseconds(),
		}
		if err != nil {
			result["status"] = "unhealthy"
			result["message"] = err.Error()
			overall = "degraded"
		}
		checks[dep.name] = result
	}

	detailedHealth := map[string]interface{}{
		"overall_status": overall,
		"checks":         checks,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"version":        h.version,
		"goroutines":     runtime.NumGoroutine(),
	}
	if h.jobs != nil {
		detailedHealth["jobs"] = h.jobs.GetJobStatus()
	}
	if h.sessions != nil {
		detailedHealth["active_sessions"] = h.sessions.ActiveCount()
	}

	statusCode := http.StatusOK
	if overall == "degraded" {
		statusCode = http.StatusPartialContent
	}

	return c.JSON(statusCode, detailedHealth)
}
