package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/query"
)

func (r *GormRepo) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return first[models.Review](ctx, r.DB, id, "User")
}

func (r *GormRepo) ListReviews(ctx context.Context, q query.Builder) ([]models.Review, int64, error) {
	return list[models.Review](ctx, r.DB, q, nil, "User")
}

func (r *GormRepo) ReviewExists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) CreateReview(ctx context.Context, rv *models.Review) error {
	return r.DB.WithContext(ctx).Omit("User").Create(rv).Error
}

func (r *GormRepo) SaveReview(ctx context.Context, rv *models.Review) error {
	return r.DB.WithContext(ctx).Omit("User").Save(rv).Error
}

func (r *GormRepo) DeleteReview(ctx context.Context, id uuid.UUID) error {
	return deleteByID[models.Review](ctx, r.DB, id)
}
