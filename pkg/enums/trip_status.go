package enums

import "fmt"

// TripStatus is the domain-level status of a trip.
type TripStatus string

const (
	TripStatusPendingEscrow                 TripStatus = "PENDING_ESCROW"
	TripStatusReadyToStart                  TripStatus = "READY_TO_START"
	TripStatusInProgress                    TripStatus = "IN_PROGRESS"
	TripStatusDeliveredAwaitingConfirmation TripStatus = "DELIVERED_AWAITING_CONFIRMATION"
	TripStatusDeliveredConfirmed            TripStatus = "DELIVERED_CONFIRMED"
	TripStatusDisputed                      TripStatus = "DISPUTED"
	TripStatusClosed                        TripStatus = "CLOSED"
)

var validTripStatuses = []TripStatus{
	TripStatusPendingEscrow,
	TripStatusReadyToStart,
	TripStatusInProgress,
	TripStatusDeliveredAwaitingConfirmation,
	TripStatusDeliveredConfirmed,
	TripStatusDisputed,
	TripStatusClosed,
}

// String implements fmt.Stringer.
func (s TripStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TripStatus.
func (s TripStatus) IsValid() bool {
	for _, candidate := range validTripStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsDelivered reports whether delivery has reached a state a dispute may be
// opened against.
func (s TripStatus) IsDelivered() bool {
	return s == TripStatusDeliveredAwaitingConfirmation || s == TripStatusDeliveredConfirmed
}

// ParseTripStatus converts raw input into a TripStatus.
func ParseTripStatus(value string) (TripStatus, error) {
	for _, candidate := range validTripStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid trip status %q", value)
}
