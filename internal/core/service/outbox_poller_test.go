package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/port/mocks"
)

func outboxEvent(t *testing.T, bookingID string) domain.OutboxEvent {
	e, err := domain.NewBookingEvent(domain.EventBookingCreated, domain.Booking{ID: bookingID}, "", testNow)
	require.NoError(t, err)
	return e
}

func TestOutboxPoller_PublishesAndMarks(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockBookingStore(ctrl)
	publisher := mocks.NewMockEventPublisher(ctrl)

	e1, e2 := outboxEvent(t, "b1"), outboxEvent(t, "b2")
	store.EXPECT().FetchUnpublishedEvents(gomock.Any(), 10).Return([]domain.OutboxEvent{e1, e2}, nil)
	gomock.InOrder(
		publisher.EXPECT().Publish(gomock.Any(), e1).Return(nil),
		store.EXPECT().MarkEventPublished(gomock.Any(), e1.ID, gomock.Any()).Return(nil),
		publisher.EXPECT().Publish(gomock.Any(), e2).Return(nil),
		store.EXPECT().MarkEventPublished(gomock.Any(), e2.ID, gomock.Any()).Return(nil),
	)

	poller := NewOutboxPoller(store, publisher, time.Second, 10)
	assert.Equal(t, 2, poller.PublishPending(context.Background()))
}

func TestOutboxPoller_StopsAtFirstFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockBookingStore(ctrl)
	publisher := mocks.NewMockEventPublisher(ctrl)

	e1, e2 := outboxEvent(t, "b1"), outboxEvent(t, "b2")
	store.EXPECT().FetchUnpublishedEvents(gomock.Any(), 100).Return([]domain.OutboxEvent{e1, e2}, nil)
	publisher.EXPECT().Publish(gomock.Any(), e1).Return(errors.New("broker down"))

	poller := NewOutboxPoller(store, publisher, 0, 0)
	assert.Equal(t, 0, poller.PublishPending(context.Background()))
}

func TestOutboxPoller_FetchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockBookingStore(ctrl)
	publisher := mocks.NewMockEventPublisher(ctrl)

	store.EXPECT().FetchUnpublishedEvents(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	poller := NewOutboxPoller(store, publisher, time.Second, 10)
	assert.Equal(t, 0, poller.PublishPending(context.Background()))
}

func TestOutboxPoller_RunStopsWithContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockBookingStore(ctrl)
	publisher := mocks.NewMockEventPublisher(ctrl)
	store.EXPECT().FetchUnpublishedEvents(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	poller := NewOutboxPoller(store, publisher, 5*time.Millisecond, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
