package event

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/port"
)

// LogPublisher writes events to the structured log. Used when no broker is configured.
type LogPublisher struct {
	logger log.FieldLogger
}

var _ port.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger log.FieldLogger) *LogPublisher {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e domain.OutboxEvent) error {
	p.logger.WithFields(log.Fields{
		"event_id":     e.ID,
		"event_type":   e.EventType,
		"aggregate_id": e.AggregateID,
		"payload":      string(e.Payload),
	}).Info("booking event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
