package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/metrics"
	"github.com/rl1809/rental-booking/internal/port"
)

// syncAdvisory rewrites the locked item's advisory counter from the outstanding
// overlap sum. delta is the change the caller's writes would make to a counter
// that was already correct; a mismatch is logged as drift and corrected.
func syncAdvisory(ctx context.Context, tx port.StoreTx, item *domain.Item, delta int, now time.Time) error {
	outstanding, err := tx.OutstandingQuantity(ctx, item.ID, now)
	if err != nil {
		return err
	}

	expected := domain.AdvisoryQuantity(item.TotalStock, outstanding)
	if naive := clamp(item.AvailableQuantity+delta, 0, item.TotalStock); naive != expected {
		metrics.AdvisoryDrift.Inc()
		log.WithFields(log.Fields{
			"item_id":     item.ID,
			"stored":      item.AvailableQuantity,
			"delta":       delta,
			"expected":    expected,
			"outstanding": outstanding,
		}).Info("advisory counter corrected")
	}

	if expected == item.AvailableQuantity && delta == 0 {
		return nil
	}
	return tx.UpdateAdvisory(ctx, item.ID, expected, item.Version)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
