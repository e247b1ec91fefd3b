package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rl1809/rental-booking/internal/metrics"
	"github.com/rl1809/rental-booking/internal/port"
)

const publishTimeout = 5 * time.Second

// OutboxPoller hands committed outbox events to the publisher in creation order.
// An event that fails to publish stays unpublished and is retried next tick.
type OutboxPoller struct {
	store     port.BookingStore
	publisher port.EventPublisher
	interval  time.Duration
	batchSize int
}

func NewOutboxPoller(store port.BookingStore, publisher port.EventPublisher, interval time.Duration, batchSize int) *OutboxPoller {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxPoller{
		store:     store,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.PublishPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// PublishPending publishes one batch and returns how many events went out.
func (p *OutboxPoller) PublishPending(ctx context.Context) int {
	events, err := p.store.FetchUnpublishedEvents(ctx, p.batchSize)
	if err != nil {
		log.WithError(err).Error("failed to fetch outbox events")
		return 0
	}

	published := 0
	for _, event := range events {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		err := p.publisher.Publish(pubCtx, event)
		cancel()
		if err != nil {
			metrics.OutboxPublished.WithLabelValues("error").Inc()
			log.WithFields(log.Fields{
				"event_id":   event.ID,
				"event_type": event.EventType,
			}).WithError(err).Warn("failed to publish outbox event")
			// Keep per-aggregate order: stop at the first failure.
			return published
		}

		if err := p.store.MarkEventPublished(ctx, event.ID, time.Now().UTC()); err != nil {
			log.WithField("event_id", event.ID).WithError(err).Error("failed to mark outbox event published")
			return published
		}
		metrics.OutboxPublished.WithLabelValues("ok").Inc()
		published++
	}
	return published
}
