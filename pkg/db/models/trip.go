package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/pkg/enums"
)

// Trip is the execution of an awarded load by a hauler.
type Trip struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LoadID      uuid.UUID        `gorm:"column:load_id;type:uuid;not null" json:"loadId"`
	HaulerID    uuid.UUID        `gorm:"column:hauler_id;type:uuid;not null" json:"haulerId"`
	DriverID    *uuid.UUID       `gorm:"column:driver_id;type:uuid" json:"driverId,omitempty"`
	VehicleID   *uuid.UUID       `gorm:"column:vehicle_id;type:uuid" json:"vehicleId,omitempty"`
	Status      enums.TripStatus `gorm:"column:status;type:text;not null;default:'pending_escrow'" json:"status"`
	StartedAt   *time.Time       `gorm:"column:started_at" json:"startedAt,omitempty"`
	DeliveredAt *time.Time       `gorm:"column:delivered_at" json:"deliveredAt,omitempty"`
	ConfirmedAt *time.Time       `gorm:"column:confirmed_at" json:"confirmedAt,omitempty"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Trip) TableName() string { return "trips" }

func (t *Trip) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
