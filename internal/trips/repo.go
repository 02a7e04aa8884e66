package trips

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/internal/repo"
	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
)

// Repository defines persistence operations for the trips table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, trip *models.Trip) (*models.Trip, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Trip, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Trip, error)
	FindByLoadID(ctx context.Context, loadID uuid.UUID) (*models.Trip, error)
	UpdateWhereStatus(ctx context.Context, id uuid.UUID, from []enums.TripStatus, updates map[string]any) (*models.Trip, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Trip, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a trips repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
	if err := r.DB(ctx).Create(trip).Error; err != nil {
		return nil, err
	}
	return trip, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	return repo.FindByID[models.Trip](ctx, r.DB(ctx), id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	return repo.FindByID[models.Trip](ctx, r.ForUpdate(ctx), id)
}

func (r *repository) FindByLoadID(ctx context.Context, loadID uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	if err := r.DB(ctx).Where("load_id = ?", loadID).First(&trip).Error; err != nil {
		return nil, err
	}
	return &trip, nil
}

// UpdateWhereStatus returns (nil, nil) when the trip is not in one of the
// from statuses.
func (r *repository) UpdateWhereStatus(ctx context.Context, id uuid.UUID, from []enums.TripStatus, updates map[string]any) (*models.Trip, error) {
	return repo.GuardedUpdate[models.Trip](ctx, r.DB(ctx), id, from, updates)
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Trip, error) {
	return repo.Update[models.Trip](ctx, r.DB(ctx), id, updates)
}
