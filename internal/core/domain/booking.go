package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type Booking struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"orderId"`
	ItemID           string          `json:"itemId"`
	CustomerID       string          `json:"customerId"`
	Quantity         int             `json:"quantity"`
	StartTime        time.Time       `json:"startTime"`
	EndTime          time.Time       `json:"endTime"`
	Status           BookingStatus   `json:"status"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	Price            PriceBreakdown  `json:"price"`
	LateFee          decimal.Decimal `json:"lateFee"`
	RefundAmount     decimal.Decimal `json:"refundAmount"`
	PickedUpAt       *time.Time      `json:"pickedUpAt,omitempty"`
	ReturnedAt       *time.Time      `json:"returnedAt,omitempty"`
	CancelledAt      *time.Time      `json:"cancelledAt,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func (b Booking) Window() TimeWindow {
	return TimeWindow{Start: b.StartTime, End: b.EndTime}
}

// Outstanding reports whether the booking still holds stock at or after now.
func (b Booking) Outstanding(now time.Time) bool {
	return b.Status.HoldsStock() && b.EndTime.After(now)
}

// LastStamp is the latest time recorded by a change to the booking.
func (b Booking) LastStamp() time.Time {
	last := b.UpdatedAt
	for _, t := range []*time.Time{b.PickedUpAt, b.ReturnedAt, b.CancelledAt} {
		if t != nil && t.After(last) {
			last = *t
		}
	}
	return last.UTC()
}

// Apply moves the booking to the next status and stamps the matching
// timestamp. The transition must already have been validated.
func (b *Booking) Apply(to BookingStatus, at time.Time) {
	b.Status = to
	b.UpdatedAt = at
	switch to {
	case StatusPickedUp:
		b.PickedUpAt = &at
	case StatusInProgress:
		if b.PickedUpAt == nil {
			b.PickedUpAt = &at
		}
	case StatusReturned, StatusCompleted:
		if b.ReturnedAt == nil {
			b.ReturnedAt = &at
		}
	case StatusCancelled:
		b.CancelledAt = &at
	}
}
