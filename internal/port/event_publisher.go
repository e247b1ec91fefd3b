package port

//go:generate mockgen -source=event_publisher.go -destination=mocks/event_publisher.go -package=mocks

import (
	"context"

	"github.com/rl1809/rental-booking/internal/core/domain"
)

type EventPublisher interface {
	Publish(ctx context.Context, event domain.OutboxEvent) error
	Close() error
}
