package lifecycle

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
)

// Actor is the trusted identity performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == enums.RoleAdmin
}

// AcceptOfferInput awards a load to one of its pending offers. Amount and
// Currency are optional; when set they must match the offer. HaulerID is
// optional; when set it must match the offer's hauler.
type AcceptOfferInput struct {
	OfferID  uuid.UUID
	LoadID   uuid.UUID
	HaulerID uuid.UUID
	Amount   *decimal.Decimal
	Currency enums.Currency
	Actor    Actor
}

type AcceptOfferResult struct {
	Offer   *models.LoadOffer `json:"offer"`
	Load    *models.Load      `json:"load"`
	Trip    *models.Trip      `json:"trip"`
	Payment *models.Payment   `json:"payment"`
}

// FundPaymentInput records that the escrow for a trip has been captured by
// the payment provider.
type FundPaymentInput struct {
	TripID             uuid.UUID
	ProviderPaymentRef *string
	ProviderChargeRef  *string
	Actor              Actor
}

type TripActionInput struct {
	TripID uuid.UUID
	Actor  Actor
}

type ConfirmDeliveryResult struct {
	Trip    *models.Trip    `json:"trip"`
	Payment *models.Payment `json:"payment"`
}

type OpenDisputeInput struct {
	TripID          uuid.UUID
	Reason          enums.DisputeReason
	Description     *string
	RequestedAction *string
	Actor           Actor
}

type DisputeActionInput struct {
	DisputeID uuid.UUID
	Actor     Actor
}

type DisputeResult struct {
	Dispute *models.Dispute `json:"dispute"`
	Trip    *models.Trip    `json:"trip"`
	Payment *models.Payment `json:"payment"`
}

// ResolveDisputeInput closes a dispute. AmountToHauler and AmountToShipper
// are required for a split and ignored otherwise.
type ResolveDisputeInput struct {
	DisputeID       uuid.UUID
	Resolution      enums.ResolutionType
	AmountToHauler  *decimal.Decimal
	AmountToShipper *decimal.Decimal
	Notes           *string
	Actor           Actor
}

type ResolutionResult struct {
	Dispute *models.Dispute `json:"dispute"`
	Payment *models.Payment `json:"payment"`
	Trip    *models.Trip    `json:"trip"`
	Load    *models.Load    `json:"load"`
}

type ForceFinalizeInput struct {
	PaymentID uuid.UUID
	Actor     Actor
}

// FinalizeResult is a payment moved out of escrow with its closed trip and
// completed load.
type FinalizeResult struct {
	Payment *models.Payment `json:"payment"`
	Trip    *models.Trip    `json:"trip"`
	Load    *models.Load    `json:"load"`
}
