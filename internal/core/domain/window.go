package domain

import (
	"math"
	"time"
)

// ClockSkewTolerance is how far in the past a window start may be and still be accepted.
const ClockSkewTolerance = 60 * time.Second

// TimeWindow is a half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewTimeWindow(start, end time.Time) TimeWindow {
	return TimeWindow{Start: start.UTC(), End: end.UTC()}
}

// Overlaps reports whether two half-open windows share any instant.
// A window ending exactly when the other starts does not overlap it.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Contains reports whether t lies inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Minutes is the elapsed length in (possibly fractional) minutes.
func (w TimeWindow) Minutes() float64 {
	return w.Duration().Minutes()
}

// Days is the elapsed length rounded up to whole days.
func (w TimeWindow) Days() int {
	return int(math.Ceil(w.Duration().Hours() / 24))
}

// Validate checks the window shape only.
func (w TimeWindow) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return Validation("start and end are required")
	}
	if !w.End.After(w.Start) {
		return Validation("end %s must be after start %s",
			w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}

// ValidateFuture checks the window shape and that it does not start in the past,
// allowing ClockSkewTolerance.
func (w TimeWindow) ValidateFuture(now time.Time) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.Start.Before(now.Add(-ClockSkewTolerance)) {
		return Validation("start %s is in the past", w.Start.Format(time.RFC3339))
	}
	return nil
}

// ValidateQuantity rejects non-positive quantities.
func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return Validation("quantity must be at least 1, got %d", quantity)
	}
	return nil
}
