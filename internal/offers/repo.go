package offers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/internal/repo"
	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
)

// Repository defines persistence operations for the load_offers table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, offer *models.LoadOffer) (*models.LoadOffer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.LoadOffer, error)
	ListByLoad(ctx context.Context, loadID uuid.UUID) ([]models.LoadOffer, error)
	AcceptPending(ctx context.Context, id uuid.UUID, acceptedAt time.Time) (*models.LoadOffer, error)
	ExpireOtherPending(ctx context.Context, loadID, keepID uuid.UUID) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds an offers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, offer *models.LoadOffer) (*models.LoadOffer, error) {
	if err := r.DB(ctx).Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.LoadOffer, error) {
	return repo.FindByID[models.LoadOffer](ctx, r.DB(ctx), id)
}

func (r *repository) ListByLoad(ctx context.Context, loadID uuid.UUID) ([]models.LoadOffer, error) {
	var offers []models.LoadOffer
	err := r.DB(ctx).
		Where("load_id = ?", loadID).
		Order("created_at ASC").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

// AcceptPending moves a pending offer to accepted. It returns (nil, nil) when
// the offer is no longer pending.
func (r *repository) AcceptPending(ctx context.Context, id uuid.UUID, acceptedAt time.Time) (*models.LoadOffer, error) {
	return repo.GuardedUpdate[models.LoadOffer](ctx, r.DB(ctx), id,
		[]enums.OfferStatus{enums.OfferStatusPending},
		map[string]any{
			"status":      enums.OfferStatusAccepted,
			"accepted_at": acceptedAt,
		})
}

// ExpireOtherPending expires every pending offer on loadID except keepID and
// returns how many rows changed.
func (r *repository) ExpireOtherPending(ctx context.Context, loadID, keepID uuid.UUID) (int64, error) {
	res := r.DB(ctx).
		Model(&models.LoadOffer{}).
		Where("load_id = ? AND id <> ? AND status = ?", loadID, keepID, enums.OfferStatusPending).
		Updates(map[string]any{"status": enums.OfferStatusExpired})
	return res.RowsAffected, res.Error
}
