package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"stockbridge/internal/models"
)

const keyPrefix = "stockbridge:"

type CacheService interface {
	// Notification provider mirror
	GetNotificationSnapshot(ctx context.Context, userID int64) (*models.NotificationSnapshot, error)
	SetNotificationSnapshot(ctx context.Context, userID int64, snapshot *models.NotificationSnapshot, ttl time.Duration) error

	// Dashboard caching
	GetDashboard(ctx context.Context, userID int64) (*models.Dashboard, error)
	SetDashboard(ctx context.Context, userID int64, dashboard *models.Dashboard, ttl time.Duration) error

	// In-flight command guard
	AcquireCommandGuard(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseCommandGuard(ctx context.Context, key string) error

	// Low-stock alert de-duplication
	MarkStockAlerted(ctx context.Context, userID, itemID int64, ttl time.Duration) (bool, error)
	ClearStockAlert(ctx context.Context, userID, itemID int64) error

	Ping(ctx context.Context) error
	Close() error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	log.Printf("DEBUG: Creating Redis client with address: %s (original: %s)", parsedAddr, addr)

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	} else {
		log.Printf("DEBUG: Redis connection established successfully")
	}

	return &redisCacheService{client: client}
}

// NewCacheServiceFromClient wraps an existing client
func NewCacheServiceFromClient(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func notificationsKey(userID int64) string {
	return fmt.Sprintf("%snotifications:%d", keyPrefix, userID)
}

func dashboardKey(userID int64) string {
	return fmt.Sprintf("%sdashboard:%d", keyPrefix, userID)
}

func guardKey(key string) string {
	return keyPrefix + "inflight:" + key
}

func stockAlertKey(userID, itemID int64) string {
	return fmt.Sprintf("%sstockalert:%d:%d", keyPrefix, userID, itemID)
}

func (r *redisCacheService) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetNotificationSnapshot(ctx context.Context, userID int64) (*models.NotificationSnapshot, error) {
	var snapshot models.NotificationSnapshot
	found, err := r.getJSON(ctx, notificationsKey(userID), &snapshot)
	if err != nil || !found {
		return nil, err
	}
	return &snapshot, nil
}

func (r *redisCacheService) SetNotificationSnapshot(ctx context.Context, userID int64, snapshot *models.NotificationSnapshot, ttl time.Duration) error {
	return r.setJSON(ctx, notificationsKey(userID), snapshot, ttl)
}

func (r *redisCacheService) GetDashboard(ctx context.Context, userID int64) (*models.Dashboard, error) {
	var dashboard models.Dashboard
	found, err := r.getJSON(ctx, dashboardKey(userID), &dashboard)
	if err != nil || !found {
		return nil, err
	}
	return &dashboard, nil
}

func (r *redisCacheService) SetDashboard(ctx context.Context, userID int64, dashboard *models.Dashboard, ttl time.Duration) error {
	return r.setJSON(ctx, dashboardKey(userID), dashboard, ttl)
}

// AcquireCommandGuard returns false when the same command is already in flight
func (r *redisCacheService) AcquireCommandGuard(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, guardKey(key), 1, ttl).Result()
}

func (r *redisCacheService) ReleaseCommandGuard(ctx context.Context, key string) error {
	return r.client.Del(ctx, guardKey(key)).Err()
}

// MarkStockAlerted returns true only for the first check of item for user within ttl
func (r *redisCacheService) MarkStockAlerted(ctx context.Context, userID, itemID int64, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, stockAlertKey(userID, itemID), time.Now().Unix(), ttl).Result()
}

func (r *redisCacheService) ClearStockAlert(ctx context.Context, userID, itemID int64) error {
	return r.client.Del(ctx, stockAlertKey(userID, itemID)).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) Close() error {
	return r.client.Close()
}
