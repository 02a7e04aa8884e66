package enums

import (
	"database/sql/driver"
	"fmt"
	"sync/atomic"
)

// Status kinds reported to the UnknownStatusObserver.
const (
	StatusKindLoad    = "load"
	StatusKindTrip    = "trip"
	StatusKindPayment = "payment"
)

// UnknownStatusObserver is told about every value the mapping could not
// recognise before it falls back to the kind's safe default.
type UnknownStatusObserver func(kind, raw string)

var unknownStatusObserver atomic.Pointer[UnknownStatusObserver]

// SetUnknownStatusObserver installs the process-wide observer. Passing nil
// removes it.
func SetUnknownStatusObserver(fn UnknownStatusObserver) {
	if fn == nil {
		unknownStatusObserver.Store(nil)
		return
	}
	unknownStatusObserver.Store(&fn)
}

func reportUnknown(kind, raw string) {
	if fn := unknownStatusObserver.Load(); fn != nil {
		(*fn)(kind, raw)
	}
}

var loadStatusPersisted = map[LoadStatus]string{
	LoadStatusDraft:          "draft",
	LoadStatusPublished:      "published",
	LoadStatusAwaitingEscrow: "awaiting_escrow",
	LoadStatusInTransit:      "in_transit",
	LoadStatusDelivered:      "delivered",
	LoadStatusCompleted:      "completed",
	LoadStatusCancelled:      "cancelled",
}

var tripStatusPersisted = map[TripStatus]string{
	TripStatusPendingEscrow:                 "pending_escrow",
	TripStatusReadyToStart:                  "ready_to_start",
	TripStatusInProgress:                    "in_progress",
	TripStatusDeliveredAwaitingConfirmation: "delivered_awaiting_confirmation",
	TripStatusDeliveredConfirmed:            "delivered_confirmed",
	TripStatusDisputed:                      "disputed",
	TripStatusClosed:                        "closed",
}

var paymentStatusPersisted = map[PaymentStatus]string{
	PaymentStatusAwaitingFunding:     "awaiting_funding",
	PaymentStatusEscrowFunded:        "escrow_funded",
	PaymentStatusReleasedToHauler:    "released_to_hauler",
	PaymentStatusRefundedToShipper:   "refunded_to_shipper",
	PaymentStatusSplitBetweenParties: "split_between_parties",
	PaymentStatusCancelled:           "cancelled",
}

var (
	loadStatusDomain    = invert(loadStatusPersisted)
	tripStatusDomain    = invert(tripStatusPersisted)
	paymentStatusDomain = invert(paymentStatusPersisted)
)

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// LoadStatusToPersisted returns the column value for s. Unknown values map to
// the persisted form of DRAFT.
func LoadStatusToPersisted(s LoadStatus) string {
	if v, ok := loadStatusPersisted[s]; ok {
		return v
	}
	reportUnknown(StatusKindLoad, string(s))
	return loadStatusPersisted[LoadStatusDraft]
}

// LoadStatusFromPersisted returns the domain value for a column value.
// Unknown values map to DRAFT.
func LoadStatusFromPersisted(raw string) LoadStatus {
	if v, ok := loadStatusDomain[raw]; ok {
		return v
	}
	reportUnknown(StatusKindLoad, raw)
	return LoadStatusDraft
}

// TripStatusToPersisted returns the column value for s. Unknown values map to
// the persisted form of PENDING_ESCROW.
func TripStatusToPersisted(s TripStatus) string {
	if v, ok := tripStatusPersisted[s]; ok {
		return v
	}
	reportUnknown(StatusKindTrip, string(s))
	return tripStatusPersisted[TripStatusPendingEscrow]
}

// TripStatusFromPersisted returns the domain value for a column value.
// Unknown values map to PENDING_ESCROW.
func TripStatusFromPersisted(raw string) TripStatus {
	if v, ok := tripStatusDomain[raw]; ok {
		return v
	}
	reportUnknown(StatusKindTrip, raw)
	return TripStatusPendingEscrow
}

// PaymentStatusToPersisted returns the column value for s. Unknown values map
// to the persisted form of AWAITING_FUNDING.
func PaymentStatusToPersisted(s PaymentStatus) string {
	if v, ok := paymentStatusPersisted[s]; ok {
		return v
	}
	reportUnknown(StatusKindPayment, string(s))
	return paymentStatusPersisted[PaymentStatusAwaitingFunding]
}

// PaymentStatusFromPersisted returns the domain value for a column value.
// Unknown values map to AWAITING_FUNDING.
func PaymentStatusFromPersisted(raw string) PaymentStatus {
	if v, ok := paymentStatusDomain[raw]; ok {
		return v
	}
	reportUnknown(StatusKindPayment, raw)
	return PaymentStatusAwaitingFunding
}

// Value implements driver.Valuer.
func (s LoadStatus) Value() (driver.Value, error) {
	return LoadStatusToPersisted(s), nil
}

// Scan implements sql.Scanner.
func (s *LoadStatus) Scan(src any) error {
	raw, err := scanString(src)
	if err != nil {
		return fmt.Errorf("scan load status: %w", err)
	}
	*s = LoadStatusFromPersisted(raw)
	return nil
}

// Value implements driver.Valuer.
func (s TripStatus) Value() (driver.Value, error) {
	return TripStatusToPersisted(s), nil
}

// Scan implements sql.Scanner.
func (s *TripStatus) Scan(src any) error {
	raw, err := scanString(src)
	if err != nil {
		return fmt.Errorf("scan trip status: %w", err)
	}
	*s = TripStatusFromPersisted(raw)
	return nil
}

// Value implements driver.Valuer.
func (p PaymentStatus) Value() (driver.Value, error) {
	return PaymentStatusToPersisted(p), nil
}

// Scan implements sql.Scanner.
func (p *PaymentStatus) Scan(src any) error {
	raw, err := scanString(src)
	if err != nil {
		return fmt.Errorf("scan payment status: %w", err)
	}
	*p = PaymentStatusFromPersisted(raw)
	return nil
}

func scanString(src any) (string, error) {
	switch v := src.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported type %T", src)
	}
}
