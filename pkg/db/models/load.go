package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/pkg/enums"
)

// Load is a livestock shipment posted by a shipper.
type Load struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ShipperID        uuid.UUID        `gorm:"column:shipper_id;type:uuid;not null" json:"shipperId"`
	Title            string           `gorm:"column:title;type:text;not null" json:"title"`
	Status           enums.LoadStatus `gorm:"column:status;type:text;not null;default:'draft'" json:"status"`
	Currency         enums.Currency   `gorm:"column:currency;type:text;not null;default:'USD'" json:"currency"`
	AskingAmount     decimal.Decimal  `gorm:"column:asking_amount;type:numeric(12,2);not null" json:"askingAmount"`
	AwardedOfferID   *uuid.UUID       `gorm:"column:awarded_offer_id;type:uuid" json:"awardedOfferId,omitempty"`
	AssignedHaulerID *uuid.UUID       `gorm:"column:assigned_hauler_id;type:uuid" json:"assignedHaulerId,omitempty"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Load) TableName() string { return "loads" }

func (l *Load) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
