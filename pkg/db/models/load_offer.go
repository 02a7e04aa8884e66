package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/pkg/enums"
)

// LoadOffer is a hauler's bid on a load.
type LoadOffer struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LoadID     uuid.UUID         `gorm:"column:load_id;type:uuid;not null" json:"loadId"`
	HaulerID   uuid.UUID         `gorm:"column:hauler_id;type:uuid;not null" json:"haulerId"`
	CreatedBy  uuid.UUID         `gorm:"column:created_by;type:uuid;not null" json:"createdBy"`
	Amount     decimal.Decimal   `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Currency   enums.Currency    `gorm:"column:currency;type:text;not null;default:'USD'" json:"currency"`
	Message    *string           `gorm:"column:message;type:text" json:"message,omitempty"`
	Status     enums.OfferStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	ExpiresAt  *time.Time        `gorm:"column:expires_at" json:"expiresAt,omitempty"`
	AcceptedAt *time.Time        `gorm:"column:accepted_at" json:"acceptedAt,omitempty"`
	RejectedAt *time.Time        `gorm:"column:rejected_at" json:"rejectedAt,omitempty"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (LoadOffer) TableName() string { return "load_offers" }

func (o *LoadOffer) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
