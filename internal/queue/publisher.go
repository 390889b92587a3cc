package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"feedsync/internal/config"
	"feedsync/internal/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	writer messageWriter
	logger *logger.Logger
	now    func() time.Time
}

func NewPublisher(cfg *config.Config, logger *logger.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(cfg.KafkaBrokers, ",")...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Publisher{writer: writer, logger: logger, now: time.Now}
}

// Publish writes the event keyed by store so one store's events stay ordered
// on a single partition.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.StoreID, 10)),
		Value: value,
		Time:  event.Timestamp,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithFields(map[string]interface{}{"store_id": event.StoreID, "type": event.Type}).
			Error("Failed to publish event: %v", err)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Published %s event for store %d", event.Type, event.StoreID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
