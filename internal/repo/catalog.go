package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/query"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return first[models.Product](ctx, r.DB, id)
}

func (r *GormRepo) ListProducts(ctx context.Context, q query.Builder) ([]models.Product, int64, error) {
	return list[models.Product](ctx, r.DB, q, nil)
}

// ProductsByIDs keeps the order of ids; unknown ids are skipped.
func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var found []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return deleteByID[models.Product](ctx, r.DB, id)
}

// RefreshProductRating recomputes rating_avg and rating_count from reviews.
func (r *GormRepo) RefreshProductRating(ctx context.Context, productID uuid.UUID) error {
	var agg struct {
		Avg   float64
		Count int
	}
	if err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&agg).Error; err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID).
		Updates(map[string]any{"rating_avg": agg.Avg, "rating_count": agg.Count}).Error
}

func (r *GormRepo) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return first[models.Category](ctx, r.DB, id)
}

func (r *GormRepo) ListCategories(ctx context.Context, q query.Builder) ([]models.Category, int64, error) {
	return list[models.Category](ctx, r.DB, q, nil)
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) SaveCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Save(c).Error
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return deleteByID[models.Category](ctx, r.DB, id)
}

func (r *GormRepo) GetSubcategory(ctx context.Context, id uuid.UUID) (*models.Subcategory, error) {
	return first[models.Subcategory](ctx, r.DB, id)
}

// ListSubcategories narrows to one category when categoryID is set.
func (r *GormRepo) ListSubcategories(ctx context.Context, categoryID uuid.UUID, q query.Builder) ([]models.Subcategory, int64, error) {
	var scope func(*gorm.DB) *gorm.DB
	if categoryID != uuid.Nil {
		scope = func(db *gorm.DB) *gorm.DB { return db.Where("category_id = ?", categoryID) }
	}
	return list[models.Subcategory](ctx, r.DB, q, scope)
}

func (r *GormRepo) CreateSubcategory(ctx context.Context, s *models.Subcategory) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) SaveSubcategory(ctx context.Context, s *models.Subcategory) error {
	return r.DB.WithContext(ctx).Save(s).Error
}

func (r *GormRepo) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	return deleteByID[models.Subcategory](ctx, r.DB, id)
}

func (r *GormRepo) GetBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	return first[models.Brand](ctx, r.DB, id)
}

func (r *GormRepo) ListBrands(ctx context.Context, q query.Builder) ([]models.Brand, int64, error) {
	return list[models.Brand](ctx, r.DB, q, nil)
}

func (r *GormRepo) CreateBrand(ctx context.Context, b *models.Brand) error {
	return r.DB.WithContext(ctx).Create(b).Error
}

func (r *GormRepo) SaveBrand(ctx context.Context, b *models.Brand) error {
	return r.DB.WithContext(ctx).Save(b).Error
}

func (r *GormRepo) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	return deleteByID[models.Brand](ctx, r.DB, id)
}
