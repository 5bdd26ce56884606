// Package kafka publishes normalized crash records to a sink topic so
// downstream consumers can subscribe to ingestions instead of polling the API.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/crashdeck/crash-data-service/internal/config"
	"github.com/crashdeck/crash-data-service/internal/observability"
	"github.com/crashdeck/crash-data-service/internal/store"
)

// Publisher produces one message per normalized record of an ingested
// snapshot. It satisfies store.PublishFunc via PublishSnapshot.
type Publisher struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger, metrics: metrics}
}

// PublishSnapshot serializes every record of the snapshot and writes the
// whole batch in one WriteMessages call.
func (p *Publisher) PublishSnapshot(ctx context.Context, snap *store.Snapshot) error {
	if len(snap.Records) == 0 {
		return nil
	}

	msgs, err := snapshotMessages(snap)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish snapshot %s: %w", snap.ID, err)
	}

	p.metrics.RecordsPublished.Add(float64(len(msgs)))
	p.logger.Debug("snapshot published", "snapshot_id", snap.ID, "records", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// snapshotMessages marshals the snapshot's records into Kafka messages keyed
// by snapshot ID, carrying provenance headers.
func snapshotMessages(snap *store.Snapshot) ([]kafkago.Message, error) {
	msgs := make([]kafkago.Message, len(snap.Records))
	for i, rec := range snap.Records {
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("serialize record %d: %w", i, err)
		}
		msgs[i] = kafkago.Message{
			Key:   []byte(snap.ID),
			Value: data,
			Headers: []kafkago.Header{
				{Key: "snapshot_id", Value: []byte(snap.ID)},
				{Key: "source", Value: []byte(snap.Source)},
				{Key: "refreshed_at", Value: []byte(snap.RefreshedAt.Format(time.RFC3339))},
			},
		}
	}
	return msgs, nil
}
