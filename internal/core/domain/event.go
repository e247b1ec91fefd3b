package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventBookingCreated EventType = "booking.created"
	EventBookingStatus  EventType = "booking.status_changed"
	EventBookingCancel  EventType = "booking.cancelled"
	EventBookingPayment EventType = "booking.payment_applied"
	EventBookingExpired EventType = "booking.expired"
)

// OutboxEvent is appended in the same unit of work as the change it describes
// and published afterwards.
type OutboxEvent struct {
	ID          string     `json:"id"`
	AggregateID string     `json:"aggregateId"`
	EventType   EventType  `json:"eventType"`
	Payload     []byte     `json:"payload"`
	CreatedAt   time.Time  `json:"createdAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

type bookingEventPayload struct {
	BookingID     string          `json:"bookingId"`
	OrderID       string          `json:"orderId"`
	ItemID        string          `json:"itemId"`
	CustomerID    string          `json:"customerId"`
	Quantity      int             `json:"quantity"`
	StartTime     time.Time       `json:"startTime"`
	EndTime       time.Time       `json:"endTime"`
	Status        BookingStatus   `json:"status"`
	PreviousState BookingStatus   `json:"previousStatus,omitempty"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	Total         decimal.Decimal `json:"total"`
	LateFee       decimal.Decimal `json:"lateFee"`
	RefundAmount  decimal.Decimal `json:"refundAmount"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

func NewBookingEvent(eventType EventType, b Booking, previous BookingStatus, at time.Time) (OutboxEvent, error) {
	payload, err := json.Marshal(bookingEventPayload{
		BookingID:     b.ID,
		OrderID:       b.OrderID,
		ItemID:        b.ItemID,
		CustomerID:    b.CustomerID,
		Quantity:      b.Quantity,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Status:        b.Status,
		PreviousState: previous,
		PaymentStatus: b.PaymentStatus,
		Total:         b.Price.Total,
		LateFee:       b.LateFee,
		RefundAmount:  b.RefundAmount,
		OccurredAt:    at,
	})
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return OutboxEvent{
		ID:          uuid.New().String(),
		AggregateID: b.ID,
		EventType:   eventType,
		Payload:     payload,
		CreatedAt:   at,
	}, nil
}
