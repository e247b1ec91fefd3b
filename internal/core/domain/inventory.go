package domain

// Availability is the answer to a stock query for one window.
type Availability struct {
	Available    bool `json:"available"`
	FreeQuantity int  `json:"freeQuantity"`
	TotalStock   int  `json:"totalStock"`
}

// NewAvailability derives free stock from the overlap sum of stock-holding bookings.
func NewAvailability(totalStock, overlapSum, requested int) Availability {
	free := totalStock - overlapSum
	if free < 0 {
		free = 0
	}
	return Availability{
		Available:    free >= requested,
		FreeQuantity: free,
		TotalStock:   totalStock,
	}
}

// ForQuantity re-evaluates a cached answer for a different requested quantity.
func (a Availability) ForQuantity(requested int) Availability {
	a.Available = a.FreeQuantity >= requested
	return a
}

func (a Availability) Conflict(requested int) *ConflictError {
	return &ConflictError{
		FreeQuantity:      a.FreeQuantity,
		RequestedQuantity: requested,
		TotalStock:        a.TotalStock,
	}
}

// AdvisoryQuantity is the expected value of an item's advisory counter given the
// quantity held by outstanding bookings.
func AdvisoryQuantity(totalStock, outstanding int) int {
	if outstanding >= totalStock {
		return 0
	}
	return totalStock - outstanding
}
