package loads

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/internal/repo"
	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
)

// Repository defines persistence operations for the loads table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, load *models.Load) (*models.Load, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Load, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Load, error)
	UpdateWhereStatus(ctx context.Context, id uuid.UUID, from []enums.LoadStatus, updates map[string]any) (*models.Load, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Load, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a loads repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, load *models.Load) (*models.Load, error) {
	if err := r.DB(ctx).Create(load).Error; err != nil {
		return nil, err
	}
	return load, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Load, error) {
	return repo.FindByID[models.Load](ctx, r.DB(ctx), id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Load, error) {
	return repo.FindByID[models.Load](ctx, r.ForUpdate(ctx), id)
}

// UpdateWhereStatus returns (nil, nil) when the load is not in one of the
// from statuses.
func (r *repository) UpdateWhereStatus(ctx context.Context, id uuid.UUID, from []enums.LoadStatus, updates map[string]any) (*models.Load, error) {
	return repo.GuardedUpdate[models.Load](ctx, r.DB(ctx), id, from, updates)
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Load, error) {
	return repo.Update[models.Load](ctx, r.DB(ctx), id, updates)
}
