// Package natsadapter provides a NATS core source for granule messages, an
// alternative to the Kafka consumer for deployments where the granule
// collector publishes to a NATS subject. Core NATS has no replay or offset
// semantics, so consumption is at-most-once and events carry no commit
// closure.
package natsadapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/sounding-skewt-service/internal/config"
	"github.com/couchcryptid/sounding-skewt-service/internal/domain"
	"github.com/nats-io/nats.go"
)

// Reader consumes raw granule messages from a NATS subject.
// It implements pipeline.BatchExtractor.
type Reader struct {
	conn          *nats.Conn
	sub           *nats.Subscription
	msgs          chan *nats.Msg
	logger        *slog.Logger
	flushInterval time.Duration
}

// NewReader connects to the configured NATS server and subscribes to the
// granule subject. Setting NATS_QUEUE joins a queue group so replicas share
// the subject instead of each receiving every granule.
func NewReader(cfg *config.Config, logger *slog.Logger) (*Reader, error) {
	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("sounding-skewt"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	msgs := make(chan *nats.Msg, 256)
	var sub *nats.Subscription
	if cfg.NATSQueue != "" {
		sub, err = conn.ChanQueueSubscribe(cfg.NATSSubject, cfg.NATSQueue, msgs)
	} else {
		sub, err = conn.ChanSubscribe(cfg.NATSSubject, msgs)
	}
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", cfg.NATSSubject, err)
	}

	return &Reader{
		conn:          conn,
		sub:           sub,
		msgs:          msgs,
		logger:        logger,
		flushInterval: cfg.BatchFlushInterval,
	}, nil
}

// ExtractBatch collects up to batchSize messages. The first message blocks
// until one arrives or the context is cancelled; the rest of the batch is
// whatever lands within the flush interval.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	var first *nats.Msg
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case first = <-r.msgs:
	}

	batch := make([]domain.RawEvent, 0, batchSize)
	batch = append(batch, mapMsgToRawEvent(first))

	flush := time.NewTimer(r.flushInterval)
	defer flush.Stop()

	for len(batch) < batchSize {
		select {
		case <-ctx.Done():
			return batch, nil
		case <-flush.C:
			return batch, nil
		case msg := <-r.msgs:
			batch = append(batch, mapMsgToRawEvent(msg))
		}
	}
	return batch, nil
}

// Close drains the subscription and closes the connection.
func (r *Reader) Close() error {
	if err := r.sub.Unsubscribe(); err != nil {
		r.logger.Warn("unsubscribe failed", "error", err)
	}
	r.conn.Close()
	return nil
}

func mapMsgToRawEvent(msg *nats.Msg) domain.RawEvent {
	headers := make(map[string]string, len(msg.Header))
	for k := range msg.Header {
		headers[k] = msg.Header.Get(k)
	}
	return domain.RawEvent{
		Value:     msg.Data,
		Headers:   headers,
		Topic:     msg.Subject,
		Timestamp: time.Now().UTC(),
	}
}
