package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/rental-booking/internal/port/mocks"
)

func TestGRPCHealthFollowsStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockBookingStore(ctrl)
	h := NewGRPCHandler(store)
	ctx := context.Background()

	gomock.InOrder(
		store.EXPECT().Ping(gomock.Any()).Return(nil),
		store.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused")),
	)

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, h.Check(ctx))
	resp, err := h.health.Check(ctx, &healthpb.HealthCheckRequest{Service: BookingServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, h.Check(ctx))
	resp, err = h.health.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestGRPCHealthWatchStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockBookingStore(ctrl)
	store.EXPECT().Ping(gomock.Any()).Return(nil).AnyTimes()
	h := NewGRPCHandler(store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Watch(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
