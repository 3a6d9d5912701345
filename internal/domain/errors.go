package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidDateRange      = errors.New("invalid date range")
	ErrInvalidQuery          = errors.New("invalid query")
	ErrInvalidOccupancy      = errors.New("invalid occupancy")
	ErrInvalidMultiplier     = errors.New("invalid multiplier template")
	ErrCapacityExceeded      = errors.New("capacity exceeded")
	ErrRateNotFound          = errors.New("rate not found")
	ErrInsufficientAllotment = errors.New("insufficient allotment")
)

// CapacityError reports which physical room limit a request exceeded.
type CapacityError struct {
	Limit     string // adults|children|total
	Requested int
	Max       int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded: %d %s requested, room allows %d", e.Requested, e.Limit, e.Max)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }
