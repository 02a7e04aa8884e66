package notifications

import (
	"time"
)

// EventName identifies a committed lifecycle transition.
type EventName string

const (
	EventOfferAccepted        EventName = "offer.accepted"
	EventEscrowFunded         EventName = "escrow.funded"
	EventTripStarted          EventName = "trip.started"
	EventTripDelivered        EventName = "trip.delivered"
	EventTripConfirmed        EventName = "trip.confirmed"
	EventDisputeOpened        EventName = "dispute.opened"
	EventDisputeUnderReview   EventName = "dispute.under_review"
	EventDisputeResolved      EventName = "dispute.resolved"
	EventDisputeCancelled     EventName = "dispute.cancelled"
	EventPaymentForceReleased EventName = "payment.force_released"
	EventPaymentForceRefunded EventName = "payment.force_refunded"
	EventEscrowAutoReleased   EventName = "escrow.auto_released"
)

func (e EventName) String() string {
	return string(e)
}

// Event is broadcast after the transaction that produced it has committed.
type Event struct {
	Name       EventName `json:"event"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// NewEvent stamps data with the current UTC time.
func NewEvent(name EventName, data any) Event {
	return Event{Name: name, OccurredAt: time.Now().UTC(), Data: data}
}
