package enums

import "fmt"

// DisputeStatus tracks a dispute raised against an escrowed payment.
type DisputeStatus string

const (
	DisputeStatusOpen        DisputeStatus = "open"
	DisputeStatusUnderReview DisputeStatus = "under_review"
	DisputeStatusResolved    DisputeStatus = "resolved"
	DisputeStatusCancelled   DisputeStatus = "cancelled"
)

// ActiveDisputeStatuses block auto-release and further disputes on a payment.
var ActiveDisputeStatuses = []DisputeStatus{DisputeStatusOpen, DisputeStatusUnderReview}

var validDisputeStatuses = []DisputeStatus{
	DisputeStatusOpen,
	DisputeStatusUnderReview,
	DisputeStatusResolved,
	DisputeStatusCancelled,
}

func (s DisputeStatus) String() string {
	return string(s)
}

func (s DisputeStatus) IsValid() bool {
	for _, candidate := range validDisputeStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsActive reports whether the dispute still blocks the payment.
func (s DisputeStatus) IsActive() bool {
	return s == DisputeStatusOpen || s == DisputeStatusUnderReview
}

// ResolutionType is the admin outcome of a dispute.
type ResolutionType string

const (
	ResolutionReleaseToHauler ResolutionType = "release_to_hauler"
	ResolutionRefundToShipper ResolutionType = "refund_to_shipper"
	ResolutionSplit           ResolutionType = "split"
)

var validResolutionTypes = []ResolutionType{
	ResolutionReleaseToHauler,
	ResolutionRefundToShipper,
	ResolutionSplit,
}

func (r ResolutionType) String() string {
	return string(r)
}

func (r ResolutionType) IsValid() bool {
	for _, candidate := range validResolutionTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// PaymentStatus returns the terminal payment status the resolution produces.
func (r ResolutionType) PaymentStatus() PaymentStatus {
	switch r {
	case ResolutionRefundToShipper:
		return PaymentStatusRefundedToShipper
	case ResolutionSplit:
		return PaymentStatusSplitBetweenParties
	default:
		return PaymentStatusReleasedToHauler
	}
}

// ParseResolutionType converts raw input into a ResolutionType.
func ParseResolutionType(value string) (ResolutionType, error) {
	for _, candidate := range validResolutionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid resolution type %q", value)
}

// DisputeReason classifies why a dispute was opened.
type DisputeReason string

const (
	DisputeReasonLateDelivery DisputeReason = "late_delivery"
	DisputeReasonAnimalInjury DisputeReason = "animal_injury"
	DisputeReasonMortality    DisputeReason = "mortality"
	DisputeReasonShortCount   DisputeReason = "short_count"
	DisputeReasonPayment      DisputeReason = "payment_issue"
	DisputeReasonOther        DisputeReason = "other"
)

var validDisputeReasons = []DisputeReason{
	DisputeReasonLateDelivery,
	DisputeReasonAnimalInjury,
	DisputeReasonMortality,
	DisputeReasonShortCount,
	DisputeReasonPayment,
	DisputeReasonOther,
}

func (r DisputeReason) String() string {
	return string(r)
}

func (r DisputeReason) IsValid() bool {
	for _, candidate := range validDisputeReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseDisputeReason converts raw input into a DisputeReason.
func ParseDisputeReason(value string) (DisputeReason, error) {
	for _, candidate := range validDisputeReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispute reason %q", value)
}
