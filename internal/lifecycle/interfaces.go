package lifecycle

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the trip, escrow and dispute lifecycle engine. Every mutating
// operation runs in one transaction and either applies all of its writes or
// none of them.
type Service interface {
	AcceptOffer(ctx context.Context, input AcceptOfferInput) (*AcceptOfferResult, error)
	FundPayment(ctx context.Context, input FundPaymentInput) (*models.Payment, error)
	StartTrip(ctx context.Context, input TripActionInput) (*models.Trip, error)
	MarkDelivered(ctx context.Context, input TripActionInput) (*models.Trip, error)
	ConfirmDelivery(ctx context.Context, input TripActionInput) (*ConfirmDeliveryResult, error)

	OpenDispute(ctx context.Context, input OpenDisputeInput) (*DisputeResult, error)
	ReviewDispute(ctx context.Context, input DisputeActionInput) (*models.Dispute, error)
	ResolveDispute(ctx context.Context, input ResolveDisputeInput) (*ResolutionResult, error)
	CancelDispute(ctx context.Context, input DisputeActionInput) (*DisputeResult, error)

	ForceRelease(ctx context.Context, input ForceFinalizeInput) (*FinalizeResult, error)
	ForceRefund(ctx context.Context, input ForceFinalizeInput) (*FinalizeResult, error)
	RunAutoRelease(ctx context.Context) ([]FinalizeResult, error)

	GetTrip(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	GetTripPayment(ctx context.Context, tripID uuid.UUID) (*models.Payment, error)
	ListPaymentDisputes(ctx context.Context, paymentID uuid.UUID) ([]models.Dispute, error)
}
