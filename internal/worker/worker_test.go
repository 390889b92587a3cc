package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsync/internal/logger"
	"feedsync/internal/queue"
)

// scriptedReader serves the given messages, then blocks until ctx is done.
type scriptedReader struct {
	messages  []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *scriptedReader) Close() error { return nil }

type recordingProcessor struct {
	events []queue.Event
	err    error
}

func (p *recordingProcessor) Process(_ context.Context, event queue.Event) error {
	p.events = append(p.events, event)
	return p.err
}

func TestStartProcessesAndCommits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	event, err := json.Marshal(queue.Event{Type: queue.EventImagesSync, StoreID: 7, ProductID: "p1"})
	require.NoError(t, err)

	reader := &scriptedReader{
		messages: []kafka.Message{
			{Offset: 1, Value: event},
			{Offset: 2, Value: []byte("not json")},
			{Offset: 3, Value: event},
		},
		cancel: cancel,
	}
	processor := &recordingProcessor{err: errors.New("sync failed")}

	l := logger.New("error")
	l.SetOutput(io.Discard)
	w := &Worker{logger: l, reader: reader, processor: processor}
	w.Start(ctx)

	assert.Len(t, processor.events, 2)
	assert.Equal(t, "p1", processor.events[0].ProductID)
	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
}
