package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/pkg/enums"
)

// Dispute is raised by the shipper or hauler against an escrowed payment.
type Dispute struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TripID          uuid.UUID             `gorm:"column:trip_id;type:uuid;not null" json:"tripId"`
	PaymentID       uuid.UUID             `gorm:"column:payment_id;type:uuid;not null" json:"paymentId"`
	OpenedByUserID  uuid.UUID             `gorm:"column:opened_by_user_id;type:uuid;not null" json:"openedByUserId"`
	OpenedByRole    enums.Role            `gorm:"column:opened_by_role;type:text;not null" json:"openedByRole"`
	Status          enums.DisputeStatus   `gorm:"column:status;type:text;not null;default:'open'" json:"status"`
	ReasonCode      enums.DisputeReason   `gorm:"column:reason_code;type:text;not null" json:"reasonCode"`
	Description     *string               `gorm:"column:description;type:text" json:"description,omitempty"`
	RequestedAction *string               `gorm:"column:requested_action;type:text" json:"requestedAction,omitempty"`
	ResolutionType  *enums.ResolutionType `gorm:"column:resolution_type;type:text" json:"resolutionType,omitempty"`
	AmountToHauler  *decimal.Decimal      `gorm:"column:resolution_amount_to_hauler;type:numeric(12,2)" json:"amountToHauler,omitempty"`
	AmountToShipper *decimal.Decimal      `gorm:"column:resolution_amount_to_shipper;type:numeric(12,2)" json:"amountToShipper,omitempty"`
	ResolutionNotes *string               `gorm:"column:resolution_notes;type:text" json:"resolutionNotes,omitempty"`
	ResolvedBy      *uuid.UUID            `gorm:"column:resolved_by_user_id;type:uuid" json:"resolvedBy,omitempty"`
	ResolvedAt      *time.Time            `gorm:"column:resolved_at" json:"resolvedAt,omitempty"`
	CancelledAt     *time.Time            `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Dispute) TableName() string { return "disputes" }

func (d *Dispute) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
