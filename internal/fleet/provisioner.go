package fleet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
)

const (
	placeholderVehicleLabel = "Unassigned vehicle"
	placeholderDriverName   = "Unassigned driver"
)

// Assignment is the vehicle and driver a trip starts with.
type Assignment struct {
	Vehicle *models.Vehicle
	Driver  *models.Driver
}

// Provisioner resolves a hauler's fleet for a new trip, creating placeholder
// rows inside the caller's transaction when the hauler has none yet.
type Provisioner interface {
	EnsureMinimalFleet(ctx context.Context, tx *gorm.DB, haulerID uuid.UUID) (Assignment, error)
}

type provisioner struct {
	repo Repository
}

// NewProvisioner builds a Provisioner over the fleet repository.
func NewProvisioner(repo Repository) (Provisioner, error) {
	if repo == nil {
		return nil, fmt.Errorf("fleet repository required")
	}
	return &provisioner{repo: repo}, nil
}

func (p *provisioner) EnsureMinimalFleet(ctx context.Context, tx *gorm.DB, haulerID uuid.UUID) (Assignment, error) {
	repo := p.repo.WithTx(tx)

	vehicle, err := repo.FirstVehicle(ctx, haulerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		vehicle, err = repo.CreateVehicle(ctx, &models.Vehicle{
			HaulerID:    haulerID,
			Label:       placeholderVehicleLabel,
			Placeholder: true,
		})
	}
	if err != nil {
		return Assignment{}, fmt.Errorf("resolve vehicle: %w", err)
	}

	driver, err := repo.FirstDriver(ctx, haulerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		driver, err = repo.CreateDriver(ctx, &models.Driver{
			HaulerID:    haulerID,
			Name:        placeholderDriverName,
			Placeholder: true,
		})
	}
	if err != nil {
		return Assignment{}, fmt.Errorf("resolve driver: %w", err)
	}

	return Assignment{Vehicle: vehicle, Driver: driver}, nil
}
