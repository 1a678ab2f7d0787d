package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/maltedev/product-compare/internal/database"
)

type EventType string

const (
	// EventTypePairLabeled is published when an operator exports a momo
	// product together with its matching pchome products.
	EventTypePairLabeled EventType = "PAIR_LABELED"

	aggregateLabeledPair = "labeled_pair"
)

type PairedProduct struct {
	SKU         string  `json:"sku"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Uncertainty int     `json:"uncertainty,omitempty"`
}

type PairLabeledPayload struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	MomoSKU   string          `json:"momo_sku"`
	MomoTitle string          `json:"momo_title,omitempty"`
	Query     string          `json:"query,omitempty"`
	Pchome    []PairedProduct `json:"pchome"`
	Source    string          `json:"source"`
}

// OutboxWriter is the part of the outbox repository the publisher needs.
type OutboxWriter interface {
	InsertWithTx(ctx context.Context, tx pgx.Tx, event *database.OutboxEvent) error
}

// Publisher stages events in the transactional outbox.
type Publisher struct {
	outbox OutboxWriter
	stream string
	logger *slog.Logger
}

func NewPublisher(outbox OutboxWriter, stream string, logger *slog.Logger) *Publisher {
	if stream == "" {
		stream = database.DefaultPairStream
	}
	return &Publisher{
		outbox: outbox,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

// PublishPairLabeledTx writes the event inside tx, so it only becomes visible
// to the relay if the labeled rows commit too.
func (p *Publisher) PublishPairLabeledTx(ctx context.Context, tx pgx.Tx, payload *PairLabeledPayload) error {
	if payload.EventID == "" {
		payload.EventID = uuid.New().String()
	}
	if payload.EventType == "" {
		payload.EventType = string(EventTypePairLabeled)
	}
	if payload.Timestamp.IsZero() {
		payload.Timestamp = time.Now()
	}
	if payload.Source == "" {
		payload.Source = "compare-console"
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	outboxEvent := &database.OutboxEvent{
		AggregateType: aggregateLabeledPair,
		AggregateID:   payload.MomoSKU,
		EventType:     string(EventTypePairLabeled),
		Payload:       data,
		TargetStream:  p.stream,
	}

	if err := p.outbox.InsertWithTx(ctx, tx, outboxEvent); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info("event published to outbox",
		"type", payload.EventType,
		"event_id", payload.EventID,
		"momo_sku", payload.MomoSKU,
		"pchome_count", len(payload.Pchome),
		"outbox_id", outboxEvent.ID,
	)

	return nil
}
