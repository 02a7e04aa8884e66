package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/pkg/enums"
)

// Payment holds the escrowed amount for a trip. It is created together with
// the trip and only moves forward through enums.PaymentStatus.
type Payment struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LoadID             uuid.UUID           `gorm:"column:load_id;type:uuid;not null" json:"loadId"`
	TripID             uuid.UUID           `gorm:"column:trip_id;type:uuid;not null" json:"tripId"`
	PayerUserID        uuid.UUID           `gorm:"column:payer_user_id;type:uuid;not null" json:"payerUserId"`
	PayeeUserID        uuid.UUID           `gorm:"column:payee_user_id;type:uuid;not null" json:"payeeUserId"`
	Amount             decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Currency           enums.Currency      `gorm:"column:currency;type:text;not null;default:'USD'" json:"currency"`
	PlatformFee        decimal.Decimal     `gorm:"column:platform_fee;type:numeric(12,2);not null;default:0" json:"platformFee"`
	Status             enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'awaiting_funding'" json:"status"`
	IsEscrow           bool                `gorm:"column:is_escrow;not null;default:true" json:"isEscrow"`
	AutoReleaseAt      *time.Time          `gorm:"column:auto_release_at" json:"autoReleaseAt,omitempty"`
	ProviderPaymentRef *string             `gorm:"column:provider_payment_ref;type:text" json:"providerPaymentRef,omitempty"`
	ProviderChargeRef  *string             `gorm:"column:provider_charge_ref;type:text" json:"providerChargeRef,omitempty"`
	FundedAt           *time.Time          `gorm:"column:funded_at" json:"fundedAt,omitempty"`
	ReleasedAt         *time.Time          `gorm:"column:released_at" json:"releasedAt,omitempty"`
	RefundedAt         *time.Time          `gorm:"column:refunded_at" json:"refundedAt,omitempty"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Payment) TableName() string { return "payments" }

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
