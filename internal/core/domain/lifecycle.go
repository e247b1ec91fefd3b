package domain

type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusPickedUp   BookingStatus = "picked_up"
	StatusInProgress BookingStatus = "in_progress"
	StatusReturned   BookingStatus = "returned"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusDisputed   BookingStatus = "disputed"
	StatusExpired    BookingStatus = "expired"
)

var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled, StatusExpired},
	StatusConfirmed:  {StatusPickedUp, StatusInProgress, StatusCancelled, StatusDisputed},
	StatusPickedUp:   {StatusInProgress, StatusReturned, StatusDisputed},
	StatusInProgress: {StatusReturned, StatusDisputed, StatusCompleted},
	StatusReturned:   {StatusCompleted, StatusDisputed},
	StatusDisputed:   {StatusCompleted, StatusCancelled, StatusReturned},
}

// stockHolding lists the statuses whose bookings count against item stock.
// A pending booking holds its units until it is confirmed or expires.
var stockHolding = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusPickedUp,
	StatusInProgress,
	StatusDisputed,
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPickedUp, StatusInProgress, StatusReturned,
		StatusCompleted, StatusCancelled, StatusDisputed, StatusExpired:
		return true
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusExpired
}

func (s BookingStatus) HoldsStock() bool {
	for _, h := range stockHolding {
		if s == h {
			return true
		}
	}
	return false
}

// StockHoldingStatuses returns a copy of the statuses that hold stock.
func StockHoldingStatuses() []BookingStatus {
	out := make([]BookingStatus, len(stockHolding))
	copy(out, stockHolding)
	return out
}

func CanTransition(from, to BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition is the single gate every status change passes through.
func ValidateTransition(from, to BookingStatus) error {
	if !to.Valid() {
		return Validation("unknown booking status %q", to)
	}
	if from == StatusCancelled && to == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if !CanTransition(from, to) {
		return Validation("illegal transition from %s to %s", from, to)
	}
	return nil
}
