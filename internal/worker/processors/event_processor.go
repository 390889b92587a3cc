package processors

import (
	"context"
	"fmt"

	"feedsync/internal/logger"
	"feedsync/internal/models"
	"feedsync/internal/queue"
	"feedsync/internal/services/ecom"
	"feedsync/internal/syncer"
	"feedsync/internal/worker/processors/validation"
)

// Notifier records the outcome of each processed event.
type Notifier interface {
	Enqueue(ctx context.Context, storeID int64, fields map[string]interface{}) (*models.Notification, error)
}

type EventProcessor struct {
	logger    *logger.Logger
	newRunner syncer.Factory
	notifier  Notifier
	validator *validation.Validator
}

func NewEventProcessor(factory syncer.Factory, notifier Notifier, logger *logger.Logger) *EventProcessor {
	return &EventProcessor{
		logger:    logger,
		newRunner: factory,
		notifier:  notifier,
		validator: validation.New(logger),
	}
}

func (ep *EventProcessor) Process(ctx context.Context, event queue.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	log := ep.logger.WithFields(map[string]interface{}{"store_id": event.StoreID, "type": event.Type})
	log.Debug("Processing event")

	var fields map[string]interface{}
	var err error
	switch event.Type {
	case queue.EventProductSync:
		fields, err = ep.syncProduct(ctx, event)
	case queue.EventImagesSync:
		fields, err = ep.syncImages(ctx, event)
	}

	fields["event"] = event.Type
	if err != nil {
		fields["status"] = "error"
		fields["error"] = err.Error()
		for k, v := range ecom.ErrorFields(err) {
			if k != "error" {
				fields["request_"+k] = v
			}
		}
	} else {
		fields["status"] = "success"
	}

	if _, nerr := ep.notifier.Enqueue(ctx, event.StoreID, fields); nerr != nil {
		log.Error("Failed to record notification: %v", nerr)
	}

	if err != nil {
		return fmt.Errorf("%s for store %d: %w", event.Type, event.StoreID, err)
	}
	log.Info("Event processed successfully")
	return nil
}

func (ep *EventProcessor) syncProduct(ctx context.Context, event queue.Event) (map[string]interface{}, error) {
	fields := map[string]interface{}{"resource": "products"}

	warnings, err := ep.validator.ValidateRecord(event.Product)
	if err != nil {
		return fields, err
	}
	if event.IsVariation {
		more, err := ep.validator.ValidateVariations(event.Variations)
		if err != nil {
			return fields, err
		}
		warnings = append(warnings, more...)
	}
	if len(warnings) > 0 {
		fields["warnings"] = warnings
	}

	runner := ep.newRunner(event.StoreID, event.Auth)
	result, err := runner.SyncProduct(ctx, syncer.ProductRequest{
		Product:     event.Product,
		Variations:  event.Variations,
		IsVariation: event.IsVariation,
		App:         event.AppData,
	})
	if result != nil {
		fields["sku"] = result.SKU
		fields["method"] = result.Method
		fields["written"] = result.Written
		if result.ProductID != "" {
			fields["product_id"] = result.ProductID
		}
		if len(result.Meta) > 0 {
			fields["meta"] = result.Meta
		}
	}
	return fields, err
}

func (ep *EventProcessor) syncImages(ctx context.Context, event queue.Event) (map[string]interface{}, error) {
	fields := map[string]interface{}{
		"resource":   "products",
		"product_id": event.ProductID,
		"images":     len(event.ImageLinks),
	}

	runner := ep.newRunner(event.StoreID, event.Auth)
	pictures, err := runner.SyncImages(ctx, event.ProductID, event.ImageLinks)
	fields["imported"] = len(pictures)
	return fields, err
}
