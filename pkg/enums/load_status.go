package enums

import "fmt"

// LoadStatus is the domain-level status of a posted load.
type LoadStatus string

const (
	LoadStatusDraft          LoadStatus = "DRAFT"
	LoadStatusPublished      LoadStatus = "PUBLISHED"
	LoadStatusAwaitingEscrow LoadStatus = "AWAITING_ESCROW"
	LoadStatusInTransit      LoadStatus = "IN_TRANSIT"
	LoadStatusDelivered      LoadStatus = "DELIVERED"
	LoadStatusCompleted      LoadStatus = "COMPLETED"
	LoadStatusCancelled      LoadStatus = "CANCELLED"
)

var validLoadStatuses = []LoadStatus{
	LoadStatusDraft,
	LoadStatusPublished,
	LoadStatusAwaitingEscrow,
	LoadStatusInTransit,
	LoadStatusDelivered,
	LoadStatusCompleted,
	LoadStatusCancelled,
}

// String implements fmt.Stringer.
func (s LoadStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LoadStatus.
func (s LoadStatus) IsValid() bool {
	for _, candidate := range validLoadStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLoadStatus converts raw input into a LoadStatus.
func ParseLoadStatus(value string) (LoadStatus, error) {
	for _, candidate := range validLoadStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid load status %q", value)
}
