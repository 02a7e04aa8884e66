package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/internal/repo"
	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
)

// Repository defines persistence operations for the payments table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindByTripID(ctx context.Context, tripID uuid.UUID) (*models.Payment, error)
	FindByTripIDForUpdate(ctx context.Context, tripID uuid.UUID) (*models.Payment, error)
	UpdateWhereStatus(ctx context.Context, id uuid.UUID, from []enums.PaymentStatus, updates map[string]any) (*models.Payment, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Payment, error)
	ListDueForAutoRelease(ctx context.Context, now time.Time, limit int) ([]models.Payment, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.DB(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return repo.FindByID[models.Payment](ctx, r.DB(ctx), id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return repo.FindByID[models.Payment](ctx, r.ForUpdate(ctx), id)
}

func (r *repository) FindByTripID(ctx context.Context, tripID uuid.UUID) (*models.Payment, error) {
	return r.findByTrip(r.DB(ctx), tripID)
}

func (r *repository) FindByTripIDForUpdate(ctx context.Context, tripID uuid.UUID) (*models.Payment, error) {
	return r.findByTrip(r.ForUpdate(ctx), tripID)
}

func (r *repository) findByTrip(db *gorm.DB, tripID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := db.Where("trip_id = ?", tripID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdateWhereStatus returns (nil, nil) when the payment is not in one of the
// from statuses.
func (r *repository) UpdateWhereStatus(ctx context.Context, id uuid.UUID, from []enums.PaymentStatus, updates map[string]any) (*models.Payment, error) {
	return repo.GuardedUpdate[models.Payment](ctx, r.DB(ctx), id, from, updates)
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Payment, error) {
	return repo.Update[models.Payment](ctx, r.DB(ctx), id, updates)
}

// ListDueForAutoRelease locks up to limit funded payments whose release time
// has passed and that carry no active dispute. Rows locked by a concurrent
// batch are skipped.
func (r *repository) ListDueForAutoRelease(ctx context.Context, now time.Time, limit int) ([]models.Payment, error) {
	var due []models.Payment
	err := r.ForUpdateSkipLocked(ctx).
		Where("payments.status = ?", enums.PaymentStatusEscrowFunded).
		Where("payments.auto_release_at IS NOT NULL AND payments.auto_release_at <= ?", now).
		Where("NOT EXISTS (SELECT 1 FROM disputes d WHERE d.payment_id = payments.id AND d.status IN ?)", enums.ActiveDisputeStatuses).
		Order("payments.auto_release_at ASC").
		Limit(limit).
		Find(&due).Error
	if err != nil {
		return nil, err
	}
	return due, nil
}
