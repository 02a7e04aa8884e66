package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehicle belongs to a hauler. Placeholder rows are provisioned on demand when
// a hauler wins a load before registering a fleet.
type Vehicle struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	HaulerID    uuid.UUID `gorm:"column:hauler_id;type:uuid;not null" json:"haulerId"`
	Label       string    `gorm:"column:label;type:text;not null" json:"label"`
	Placeholder bool      `gorm:"column:is_placeholder;not null;default:false" json:"placeholder"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Vehicle) TableName() string { return "vehicles" }

func (v *Vehicle) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// Driver belongs to a hauler.
type Driver struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	HaulerID    uuid.UUID `gorm:"column:hauler_id;type:uuid;not null" json:"haulerId"`
	Name        string    `gorm:"column:name;type:text;not null" json:"name"`
	Placeholder bool      `gorm:"column:is_placeholder;not null;default:false" json:"placeholder"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Driver) TableName() string { return "drivers" }

func (d *Driver) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
