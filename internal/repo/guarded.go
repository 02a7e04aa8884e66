package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GuardedUpdate applies updates to the row identified by id only while its
// status column holds one of the expected values. It returns (nil, nil) when
// no row matched so callers can treat the miss as a lost precondition.
func GuardedUpdate[T any, S any](ctx context.Context, db *gorm.DB, id uuid.UUID, expected []S, updates map[string]any) (*T, error) {
	var model T
	res := db.WithContext(ctx).
		Model(&model).
		Where("id = ? AND status IN ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return FindByID[T](ctx, db, id)
}

// Update applies updates to the row identified by id without a status guard.
func Update[T any](ctx context.Context, db *gorm.DB, id uuid.UUID, updates map[string]any) (*T, error) {
	var model T
	res := db.WithContext(ctx).
		Model(&model).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return FindByID[T](ctx, db, id)
}

// FindByID loads one row by primary key.
func FindByID[T any](ctx context.Context, db *gorm.DB, id uuid.UUID) (*T, error) {
	var out T
	if err := db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
