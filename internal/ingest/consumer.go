package ingest

import (
	"context"
	"log/slog"

	"github.com/feature-prep/vocab-builder/internal/vocab/accumulate"
	"github.com/feature-prep/vocab-builder/pkg/kafka"
	"github.com/feature-prep/vocab-builder/pkg/logger"
	"github.com/feature-prep/vocab-builder/pkg/metrics"
)

// RecordConsumer wraps a Kafka consumer to drive the accumulation phase.
type RecordConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// NewRecordConsumer creates a RecordConsumer backed by the given Kafka
// consumer.
func NewRecordConsumer(kafkaConsumer *kafka.Consumer) *RecordConsumer {
	return &RecordConsumer{
		consumer: kafkaConsumer,
		logger:   logger.WithComponent("record-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled or
// an input-contract violation aborts the run.
func (rc *RecordConsumer) Start(ctx context.Context) error {
	rc.logger.Info("record consumer starting")
	return rc.consumer.Start(ctx)
}

// HandleRecord returns a Kafka MessageHandler that normalises each record
// against the declared profile and observes it into the pool. Malformed
// tokens are silently skipped; shape and label violations propagate and
// abort the consume loop.
func HandleRecord(pool *Pool, profile accumulate.Profile, m *metrics.Metrics) kafka.MessageHandler {
	log := logger.WithComponent("record-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		record, err := kafka.DecodeJSON[Record](value)
		if err != nil {
			log.Error("failed to decode record", "error", err, "key", string(key))
			if m != nil {
				m.RecordsConsumedTotal.WithLabelValues("error").Inc()
			}
			return nil
		}

		normalized, err := Normalize(record, profile)
		if err != nil {
			if m != nil {
				m.RecordsConsumedTotal.WithLabelValues("error").Inc()
			}
			return err
		}

		if pool.Observe(normalized) {
			if m != nil {
				m.RecordsConsumedTotal.WithLabelValues("observed").Inc()
			}
		} else {
			log.Debug("token rejected by validity rule", "token_size", len(record.Token))
			if m != nil {
				m.RecordsConsumedTotal.WithLabelValues("rejected").Inc()
				m.TokensRejectedTotal.Inc()
			}
		}
		return nil
	}
}
