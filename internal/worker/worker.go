package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"feedsync/internal/config"
	"feedsync/internal/logger"
	"feedsync/internal/queue"

	"github.com/segmentio/kafka-go"
)

// Processor runs one decoded event.
type Processor interface {
	Process(ctx context.Context, event queue.Event) error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Worker struct {
	config    *config.Config
	logger    *logger.Logger
	reader    messageReader
	processor Processor
}

func New(cfg *config.Config, processor Processor, logger *logger.Logger) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        strings.Split(cfg.KafkaBrokers, ","),
		GroupID:        cfg.KafkaGroupID,
		Topic:          cfg.KafkaTopic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config:    cfg,
		logger:    logger,
		reader:    reader,
		processor: processor,
	}
}

// Start consumes events until ctx is cancelled. A message is committed once
// handled, whether the synchronization succeeded or not; failures are
// recorded as notifications by the processor.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Worker started, listening for events...")

	for {
		message, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				w.logger.Info("Worker context done, leaving read loop")
				return
			}
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		w.handle(ctx, message)

		if err := w.reader.CommitMessages(ctx, message); err != nil {
			w.logger.Error("Failed to commit message at offset %d: %v", message.Offset, err)
		}
	}
}

func (w *Worker) handle(ctx context.Context, message kafka.Message) {
	w.logger.Debug("Received message: %s", string(message.Value))

	var event queue.Event
	if err := json.Unmarshal(message.Value, &event); err != nil {
		w.logger.Error("Failed to parse event: %v", err)
		return
	}

	if err := w.processor.Process(ctx, event); err != nil {
		w.logger.Error("Failed to process event: %v", err)
		return
	}

	w.logger.Debug("Event processed successfully")
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}
