package events

import (
	"context"
	"log/slog"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

// LogPublisher is the fallback sink when no webhook is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, event domain.EventEnvelope) error {
	p.logger.InfoContext(ctx, "outbox publish",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"aggregate", event.AggregateType+"/"+event.AggregateID,
		"actor", event.Actor,
	)
	return nil
}
