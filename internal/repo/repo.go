package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/query"
)

// ErrStale is returned when a versioned row changed between read and write.
var ErrStale = errors.New("stale version")

type GormRepo struct {
	DB *gorm.DB
}

// Transaction runs fn inside one database transaction bound to ctx.
func (r *GormRepo) Transaction(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

func list[T any](ctx context.Context, db *gorm.DB, q query.Builder, scope func(*gorm.DB) *gorm.DB, preload ...string) ([]T, int64, error) {
	var model T
	base := db.WithContext(ctx).Model(&model)
	if scope != nil {
		base = scope(base)
	}

	var total int64
	if err := q.Where(base.Session(&gorm.Session{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, 0, q.Limit())
	tx := q.Apply(base.Session(&gorm.Session{}))
	for _, p := range preload {
		tx = tx.Preload(p)
	}
	if err := tx.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func first[T any](ctx context.Context, db *gorm.DB, id uuid.UUID, preload ...string) (*T, error) {
	var item T
	tx := db.WithContext(ctx)
	for _, p := range preload {
		tx = tx.Preload(p)
	}
	if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	var model T
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
