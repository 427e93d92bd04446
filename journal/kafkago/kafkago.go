// Package kafkago ships index mutation events to a Kafka topic.
package kafkago

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ridge/karst/journal"
	"github.com/ridge/karst/retry"
	"github.com/ridge/karst/tlog"
	"github.com/ridge/must/v2"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// This is the subset of the kafka-go API that we use, defined as mockable API

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const writeTimeout = time.Minute

var writeRetry retry.Config = retry.FixedConfig{RetryAfter: time.Second, MaxAttempts: 5}

// Writer is a journal.Writer shipping events to one Kafka topic.
type Writer struct {
	writer kafkaWriter
}

// New creates a Writer publishing to the given topic through the specified
// brokers.
func New(brokers []string, topic string) *Writer {
	if len(brokers) == 0 {
		panic("need at least one Kafka broker")
	}
	return newWriter(&kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	})
}

func newWriter(w kafkaWriter) *Writer {
	return &Writer{writer: w}
}

// Write implements journal.Writer. Events of the same entry share a message
// key, so their relative order survives partitioning.
func (w *Writer) Write(ctx context.Context, ev journal.Event) error {
	ctx = tlog.With(ctx, zap.String("table", ev.Table))
	msg := kafka.Message{
		Key:   []byte(ev.Table + "/" + ev.Key.String()),
		Value: must.OK1(json.Marshal(ev)),
	}
	return retry.DoWithTimeout(ctx, writeRetry, writeTimeout, func(ctx context.Context) error {
		if err := w.writer.WriteMessages(ctx, msg); err != nil {
			if shouldRetry(err) {
				return retry.Retriable(fmt.Errorf("failed to write journal event: %w", err))
			}
			return err
		}
		return nil
	})
}

// Close flushes and closes the underlying Kafka writer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

func shouldRetry(err error) bool {
	if errors.Is(err, kafka.Unknown) {
		return true
	}
	var kerr kafka.Error
	if !errors.As(err, &kerr) {
		return true
	}
	return kerr.Timeout()
}
