package enums

import "fmt"

// PaymentStatus tracks the escrow lifecycle of a trip payment.
type PaymentStatus string

const (
	PaymentStatusAwaitingFunding     PaymentStatus = "AWAITING_FUNDING"
	PaymentStatusEscrowFunded        PaymentStatus = "ESCROW_FUNDED"
	PaymentStatusReleasedToHauler    PaymentStatus = "RELEASED_TO_HAULER"
	PaymentStatusRefundedToShipper   PaymentStatus = "REFUNDED_TO_SHIPPER"
	PaymentStatusSplitBetweenParties PaymentStatus = "SPLIT_BETWEEN_PARTIES"
	PaymentStatusCancelled           PaymentStatus = "CANCELLED"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusAwaitingFunding,
	PaymentStatusEscrowFunded,
	PaymentStatusReleasedToHauler,
	PaymentStatusRefundedToShipper,
	PaymentStatusSplitBetweenParties,
	PaymentStatusCancelled,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsFinal reports whether the payment has left escrow for good.
func (p PaymentStatus) IsFinal() bool {
	switch p {
	case PaymentStatusReleasedToHauler,
		PaymentStatusRefundedToShipper,
		PaymentStatusSplitBetweenParties,
		PaymentStatusCancelled:
		return true
	}
	return false
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
