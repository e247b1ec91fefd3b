package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/port"
	"github.com/rl1809/rental-booking/internal/port/mocks"
)

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t, domain.VariantBasic)
	ctx := context.Background()
	item := f.addItem(t, 5)

	_, err := f.book(ctx, item.ID, "cust-1", 3, at(10, 0), at(14, 0))
	require.NoError(t, err)

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		quantity int
		want     domain.Availability
	}{
		{"partly taken", at(12, 0), at(13, 0), 2, domain.Availability{Available: true, FreeQuantity: 2, TotalStock: 5}},
		{"too many", at(12, 0), at(13, 0), 3, domain.Availability{Available: false, FreeQuantity: 2, TotalStock: 5}},
		{"adjacent window", at(14, 0), at(15, 0), 5, domain.Availability{Available: true, FreeQuantity: 5, TotalStock: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.availability.CheckAvailability(ctx, item.ID, domain.NewTimeWindow(tt.start, tt.end), tt.quantity)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckAvailability_Errors(t *testing.T) {
	f := newFixture(t, domain.VariantBasic)
	ctx := context.Background()
	item := f.addItem(t, 5)

	_, err := f.availability.CheckAvailability(ctx, item.ID, domain.NewTimeWindow(at(10, 0), at(10, 0)), 1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.availability.CheckAvailability(ctx, item.ID, domain.NewTimeWindow(at(10, 0), at(11, 0)), -1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.availability.CheckAvailability(ctx, "missing", domain.NewTimeWindow(at(10, 0), at(11, 0)), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckAvailability_ServesCachedPreview(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockBookingStore(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	item := &domain.Item{ID: "item-1", TotalStock: 4}
	window := domain.NewTimeWindow(at(10, 0), at(11, 0))

	cache.EXPECT().GetItem(gomock.Any(), "item-1").Return(item, nil)
	cache.EXPECT().GetAvailability(gomock.Any(), "item-1", window).
		Return(&domain.Availability{Available: true, FreeQuantity: 1, TotalStock: 4}, nil)
	store.EXPECT().OverlapQuantity(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	svc := NewAvailabilityService(store, cache, NewCatalogService(store, cache))
	svc.now = func() time.Time { return testNow }

	got, err := svc.CheckAvailability(context.Background(), "item-1", window, 2)
	require.NoError(t, err)
	assert.False(t, got.Available, "a cached answer is re-evaluated for the requested quantity")
	assert.Equal(t, 1, got.FreeQuantity)
}

func TestCheckAvailability_FillsPreviewOnMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockBookingStore(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	item := &domain.Item{ID: "item-1", TotalStock: 4}
	window := domain.NewTimeWindow(at(10, 0), at(11, 0))

	cache.EXPECT().GetItem(gomock.Any(), "item-1").Return(nil, port.ErrCacheMiss)
	store.EXPECT().GetItem(gomock.Any(), "item-1").Return(item, nil)
	cache.EXPECT().SetItem(gomock.Any(), *item).Return(nil)
	cache.EXPECT().GetAvailability(gomock.Any(), "item-1", window).Return(nil, port.ErrCacheMiss)
	store.EXPECT().OverlapQuantity(gomock.Any(), "item-1", window).Return(3, nil)
	cache.EXPECT().SetAvailability(gomock.Any(), "item-1", window, domain.NewAvailability(4, 3, 1)).Return(nil)

	svc := NewAvailabilityService(store, cache, NewCatalogService(store, cache))
	svc.now = func() time.Time { return testNow }

	got, err := svc.CheckAvailability(context.Background(), "item-1", window, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Availability{Available: true, FreeQuantity: 1, TotalStock: 4}, got)
}
