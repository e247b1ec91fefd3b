package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order groups the bookings placed under one customer payment.
type Order struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customerId"`
	BookingIDs    []string        `json:"bookingIds"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Total         decimal.Decimal `json:"total"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// NewOrder builds the order wrapping the given bookings, summing their prices.
func NewOrder(id, customerID string, at time.Time, bookings ...Booking) Order {
	order := Order{
		ID:            id,
		CustomerID:    customerID,
		PaymentStatus: PaymentUnpaid,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	for _, b := range bookings {
		order.BookingIDs = append(order.BookingIDs, b.ID)
		order.Subtotal = order.Subtotal.Add(b.Price.Subtotal)
		order.Total = order.Total.Add(b.Price.Total)
	}
	return order
}
