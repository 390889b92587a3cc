// Package notifications persists store events for the notification sink.
package notifications

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"feedsync/internal/logger"
	"feedsync/internal/models"
)

type Queue struct {
	db     *gorm.DB
	delay  time.Duration
	logger *logger.Logger
	now    func() time.Time
}

func NewQueue(db *gorm.DB, delay time.Duration, logger *logger.Logger) *Queue {
	return &Queue{
		db:     db,
		delay:  delay,
		logger: logger,
		now:    time.Now,
	}
}

// ParseStoreID accepts the store id as sent by triggers, number or string.
func ParseStoreID(v interface{}) (int64, error) {
	switch id := v.(type) {
	case int:
		return int64(id), nil
	case int64:
		return id, nil
	case float64:
		return int64(id), nil
	case string:
		return strconv.ParseInt(id, 10, 64)
	default:
		return 0, fmt.Errorf("invalid store id %v", v)
	}
}

// Enqueue appends an event that becomes ready after the queue delay.
func (q *Queue) Enqueue(ctx context.Context, storeID int64, fields map[string]interface{}) (*models.Notification, error) {
	payload := models.JSONB{}
	for k, v := range fields {
		payload[k] = v
	}
	payload["store_id"] = storeID

	n := &models.Notification{
		StoreID:  storeID,
		Attempts: 0,
		ReadyAt:  q.now().Add(q.delay).UnixMilli(),
		Payload:  payload,
	}
	if err := q.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, fmt.Errorf("failed to enqueue notification: %w", err)
	}

	q.logger.Info("[notifications] queued for store %d", storeID)
	return n, nil
}

// Ready lists notifications whose ready_at has passed, oldest first.
func (q *Queue) Ready(ctx context.Context, limit int) ([]models.Notification, error) {
	var out []models.Notification
	query := q.db.WithContext(ctx).
		Where("ready_at <= ?", q.now().UnixMilli()).
		Order("ready_at asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out, nil
}

// List returns the latest notifications of a store.
func (q *Queue) List(ctx context.Context, storeID int64, limit int) ([]models.Notification, error) {
	var out []models.Notification
	query := q.db.WithContext(ctx).Where("store_id = ?", storeID).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out, nil
}

// Get returns one notification by id, or gorm.ErrRecordNotFound.
func (q *Queue) Get(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := q.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}
