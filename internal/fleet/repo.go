package fleet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/internal/repo"
	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
)

// Repository defines persistence operations for vehicles and drivers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FirstVehicle(ctx context.Context, haulerID uuid.UUID) (*models.Vehicle, error)
	FirstDriver(ctx context.Context, haulerID uuid.UUID) (*models.Driver, error)
	CreateVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	CreateDriver(ctx context.Context, driver *models.Driver) (*models.Driver, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a fleet repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// FirstVehicle prefers registered vehicles over placeholders.
func (r *repository) FirstVehicle(ctx context.Context, haulerID uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.DB(ctx).
		Where("hauler_id = ?", haulerID).
		Order("is_placeholder ASC, created_at ASC").
		Take(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// FirstDriver prefers registered drivers over placeholders.
func (r *repository) FirstDriver(ctx context.Context, haulerID uuid.UUID) (*models.Driver, error) {
	var driver models.Driver
	err := r.DB(ctx).
		Where("hauler_id = ?", haulerID).
		Order("is_placeholder ASC, created_at ASC").
		Take(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *repository) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := r.DB(ctx).Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (r *repository) CreateDriver(ctx context.Context, driver *models.Driver) (*models.Driver, error) {
	if err := r.DB(ctx).Create(driver).Error; err != nil {
		return nil, err
	}
	return driver, nil
}
