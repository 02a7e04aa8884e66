package disputes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/internal/repo"
	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
)

// Repository defines persistence operations for the disputes table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, dispute *models.Dispute) (*models.Dispute, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]models.Dispute, error)
	CountActiveByPayment(ctx context.Context, paymentID uuid.UUID) (int64, error)
	UpdateWhereStatus(ctx context.Context, id uuid.UUID, from []enums.DisputeStatus, updates map[string]any) (*models.Dispute, error)
	CancelActiveByPayment(ctx context.Context, paymentID uuid.UUID, at time.Time) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a disputes repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, dispute *models.Dispute) (*models.Dispute, error) {
	if err := r.DB(ctx).Create(dispute).Error; err != nil {
		return nil, err
	}
	return dispute, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	return repo.FindByID[models.Dispute](ctx, r.DB(ctx), id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	return repo.FindByID[models.Dispute](ctx, r.ForUpdate(ctx), id)
}

func (r *repository) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := r.DB(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&disputes).Error
	if err != nil {
		return nil, err
	}
	return disputes, nil
}

// CountActiveByPayment counts open and under-review disputes on a payment.
func (r *repository) CountActiveByPayment(ctx context.Context, paymentID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.Dispute{}).
		Where("payment_id = ? AND status IN ?", paymentID, enums.ActiveDisputeStatuses).
		Count(&count).Error
	return count, err
}

// UpdateWhereStatus returns (nil, nil) when the dispute is not in one of the
// from statuses.
func (r *repository) UpdateWhereStatus(ctx context.Context, id uuid.UUID, from []enums.DisputeStatus, updates map[string]any) (*models.Dispute, error) {
	return repo.GuardedUpdate[models.Dispute](ctx, r.DB(ctx), id, from, updates)
}

// CancelActiveByPayment cancels every open or under-review dispute on a
// payment and returns how many rows changed.
func (r *repository) CancelActiveByPayment(ctx context.Context, paymentID uuid.UUID, at time.Time) (int64, error) {
	res := r.DB(ctx).
		Model(&models.Dispute{}).
		Where("payment_id = ? AND status IN ?", paymentID, enums.ActiveDisputeStatuses).
		Updates(map[string]any{
			"status":       enums.DisputeStatusCancelled,
			"cancelled_at": at,
		})
	return res.RowsAffected, res.Error
}
