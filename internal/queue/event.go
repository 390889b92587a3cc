// Package queue carries feed synchronization events over Kafka.
package queue

import (
	"errors"
	"fmt"
	"time"

	"feedsync/internal/feed"
	"feedsync/internal/models"
	"feedsync/internal/services/ecom"
)

const (
	EventProductSync = "product.sync"
	EventImagesSync  = "images.sync"
)

var ErrInvalidEvent = errors.New("invalid event")

// Event asks the worker to run one synchronization for a store.
type Event struct {
	Type        string         `json:"type"`
	StoreID     int64          `json:"store_id"`
	Auth        ecom.Auth      `json:"auth"`
	AppData     models.AppData `json:"app_data"`
	Product     feed.Record    `json:"product,omitempty"`
	Variations  []feed.Record  `json:"variations,omitempty"`
	IsVariation bool           `json:"is_variation,omitempty"`
	ProductID   string         `json:"product_id,omitempty"`
	ImageLinks  []string       `json:"image_links,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Validate checks the fields each event type needs.
func (e Event) Validate() error {
	if e.StoreID <= 0 {
		return fmt.Errorf("%w: missing store_id", ErrInvalidEvent)
	}
	switch e.Type {
	case EventProductSync:
		if len(e.Product) == 0 {
			return fmt.Errorf("%w: %s without product", ErrInvalidEvent, e.Type)
		}
	case EventImagesSync:
		if e.ProductID == "" {
			return fmt.Errorf("%w: %s without product_id", ErrInvalidEvent, e.Type)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	return nil
}
