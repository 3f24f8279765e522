package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/query"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var (
	productQuery = query.Options{
		Columns: []string{
			"id", "title", "slug", "description", "price", "price_after_discount",
			"quantity", "sold", "img_cover", "category_id", "subcategory_id", "brand_id",
			"rating_avg", "rating_count", "created_at", "updated_at",
		},
		SearchColumns: []string{"title", "description"},
	}
	subcategoryQuery = query.Options{
		Columns:       []string{"id", "name", "slug", "category_id", "created_at", "updated_at"},
		SearchColumns: []string{"name"},
	}
	brandQuery = query.Options{
		Columns:       []string{"id", "name", "slug", "logo", "created_at", "updated_at"},
		SearchColumns: []string{"name"},
	}
	categoryQuery = query.Options{
		Columns:       []string{"id", "name", "slug", "image", "created_at", "updated_at"},
		SearchColumns: []string{"name"},
	}
)

type CatalogService struct {
	Repo        *repo.GormRepo
	Events      Publisher
	Index       ProductIndex
	TopicPrefix string
}

func (s *CatalogService) topic() string { return s.TopicPrefix + events.TopicProducts }

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	return p, storeErr(err, "product")
}

func (s *CatalogService) ListProducts(ctx context.Context, params url.Values) (query.Page[models.Product], error) {
	q := query.New(params, productQuery).All()
	items, total, err := s.Repo.ListProducts(ctx, q)
	if err != nil {
		return query.Page[models.Product]{}, storeErr(err, "products")
	}
	return query.NewPage(q, items, total), nil
}

// SearchProducts uses the search index when there is one, and the keyword filter otherwise.
func (s *CatalogService) SearchProducts(ctx context.Context, params url.Values) (query.Page[models.Product], error) {
	q := query.New(params, productQuery).Paginate()
	text := params.Get("q")
	if text == "" {
		text = params.Get("keyword")
	}
	if text == "" {
		return query.Page[models.Product]{}, fmt.Errorf("%w: q is required", ErrValidation)
	}

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, text, q.Skip(), q.Limit())
		if err == nil {
			items, err := s.Repo.ProductsByIDs(ctx, ids)
			if err != nil {
				return query.Page[models.Product]{}, storeErr(err, "products")
			}
			return query.NewPage(q, items, total), nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "error", err)
	}

	fallback := url.Values{"keyword": {text}, "page": params["page"], "limit": params["limit"]}
	return s.ListProducts(ctx, fallback)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.ProductRequest) (*models.Product, error) {
	if err := checkPrices(req.Price, req.PriceAfterDiscount); err != nil {
		return nil, err
	}
	p := &models.Product{
		Title:         req.Title,
		Slug:          slug.Make(req.Title),
		Description:   req.Description,
		Price:         req.Price,
		Quantity:      req.Quantity,
		ImgCover:      req.ImgCover,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		BrandID:       req.BrandID,
	}
	if req.PriceAfterDiscount != nil {
		p.PriceAfterDiscount = decimal.NewNullDecimal(*req.PriceAfterDiscount)
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, storeErr(err, "product")
	}

	s.indexProduct(ctx, p)
	publish(ctx, s.Events, s.topic(), p.ID.String(), map[string]any{
		"type": "product_created", "product_id": p.ID, "title": p.Title,
	})
	return p, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, storeErr(err, "product")
	}

	if req.Title != nil {
		p.Title = *req.Title
		p.Slug = slug.Make(*req.Title)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.PriceAfterDiscount != nil {
		p.PriceAfterDiscount = decimal.NewNullDecimal(*req.PriceAfterDiscount)
	}
	if req.Quantity != nil {
		p.Quantity = *req.Quantity
	}
	if req.ImgCover != nil {
		p.ImgCover = *req.ImgCover
	}
	if req.CategoryID != nil {
		p.CategoryID = req.CategoryID
	}
	if req.SubcategoryID != nil {
		p.SubcategoryID = req.SubcategoryID
	}
	if req.BrandID != nil {
		p.BrandID = req.BrandID
	}

	var after *decimal.Decimal
	if p.PriceAfterDiscount.Valid {
		after = &p.PriceAfterDiscount.Decimal
	}
	if err := checkPrices(p.Price, after); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, storeErr(err, "product")
	}

	s.indexProduct(ctx, p)
	publish(ctx, s.Events, s.topic(), p.ID.String(), map[string]any{
		"type": "product_updated", "product_id": p.ID, "title": p.Title,
	})
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return storeErr(err, "product")
	}
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_index_error", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, s.topic(), id.String(), map[string]any{
		"type": "product_deleted", "product_id": id,
	})
	return nil
}

func (s *CatalogService) indexProduct(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "product_id", p.ID, "error", err)
	}
}

func checkPrices(price decimal.Decimal, after *decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if after != nil && (after.IsNegative() || after.GreaterThan(price)) {
		return fmt.Errorf("%w: price_after_discount must be between 0 and price", ErrValidation)
	}
	return nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.Repo.GetCategory(ctx, id)
	return c, storeErr(err, "category")
}

func (s *CatalogService) ListCategories(ctx context.Context, params url.Values) (query.Page[models.Category], error) {
	q := query.New(params, categoryQuery).All()
	items, total, err := s.Repo.ListCategories(ctx, q)
	if err != nil {
		return query.Page[models.Category]{}, storeErr(err, "categories")
	}
	return query.NewPage(q, items, total), nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.NamedRequest) (*models.Category, error) {
	c := &models.Category{Name: req.Name, Slug: slug.Make(req.Name), Image: req.Image}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		return nil, storeErr(err, "category")
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req transport.NamedRequest) (*models.Category, error) {
	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, storeErr(err, "category")
	}
	c.Name, c.Slug = req.Name, slug.Make(req.Name)
	if req.Image != "" {
		c.Image = req.Image
	}
	if err := s.Repo.SaveCategory(ctx, c); err != nil {
		return nil, storeErr(err, "category")
	}
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return storeErr(s.Repo.DeleteCategory(ctx, id), "category")
}

func (s *CatalogService) GetSubcategory(ctx context.Context, id uuid.UUID) (*models.Subcategory, error) {
	sc, err := s.Repo.GetSubcategory(ctx, id)
	return sc, storeErr(err, "subcategory")
}

// ListSubcategories lists every subcategory, or those of categoryID when it is set.
func (s *CatalogService) ListSubcategories(ctx context.Context, categoryID uuid.UUID, params url.Values) (query.Page[models.Subcategory], error) {
	q := query.New(params, subcategoryQuery).All()
	items, total, err := s.Repo.ListSubcategories(ctx, categoryID, q)
	if err != nil {
		return query.Page[models.Subcategory]{}, storeErr(err, "subcategories")
	}
	return query.NewPage(q, items, total), nil
}

func (s *CatalogService) CreateSubcategory(ctx context.Context, req transport.NamedRequest) (*models.Subcategory, error) {
	if req.CategoryID == uuid.Nil {
		return nil, fmt.Errorf("%w: category_id is required", ErrValidation)
	}
	if _, err := s.Repo.GetCategory(ctx, req.CategoryID); err != nil {
		return nil, storeErr(err, "category")
	}
	sc := &models.Subcategory{Name: req.Name, Slug: slug.Make(req.Name), CategoryID: req.CategoryID}
	if err := s.Repo.CreateSubcategory(ctx, sc); err != nil {
		return nil, storeErr(err, "subcategory")
	}
	return sc, nil
}

func (s *CatalogService) UpdateSubcategory(ctx context.Context, id uuid.UUID, req transport.NamedRequest) (*models.Subcategory, error) {
	sc, err := s.Repo.GetSubcategory(ctx, id)
	if err != nil {
		return nil, storeErr(err, "subcategory")
	}
	sc.Name, sc.Slug = req.Name, slug.Make(req.Name)
	if req.CategoryID != uuid.Nil {
		if _, err := s.Repo.GetCategory(ctx, req.CategoryID); err != nil {
			return nil, storeErr(err, "category")
		}
		sc.CategoryID = req.CategoryID
	}
	if err := s.Repo.SaveSubcategory(ctx, sc); err != nil {
		return nil, storeErr(err, "subcategory")
	}
	return sc, nil
}

func (s *CatalogService) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	return storeErr(s.Repo.DeleteSubcategory(ctx, id), "subcategory")
}

func (s *CatalogService) GetBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	b, err := s.Repo.GetBrand(ctx, id)
	return b, storeErr(err, "brand")
}

func (s *CatalogService) ListBrands(ctx context.Context, params url.Values) (query.Page[models.Brand], error) {
	q := query.New(params, brandQuery).All()
	items, total, err := s.Repo.ListBrands(ctx, q)
	if err != nil {
		return query.Page[models.Brand]{}, storeErr(err, "brands")
	}
	return query.NewPage(q, items, total), nil
}

func (s *CatalogService) CreateBrand(ctx context.Context, req transport.NamedRequest) (*models.Brand, error) {
	b := &models.Brand{Name: req.Name, Slug: slug.Make(req.Name), Logo: req.Image}
	if err := s.Repo.CreateBrand(ctx, b); err != nil {
		return nil, storeErr(err, "brand")
	}
	return b, nil
}

func (s *CatalogService) UpdateBrand(ctx context.Context, id uuid.UUID, req transport.NamedRequest) (*models.Brand, error) {
	b, err := s.Repo.GetBrand(ctx, id)
	if err != nil {
		return nil, storeErr(err, "brand")
	}
	b.Name, b.Slug = req.Name, slug.Make(req.Name)
	if req.Image != "" {
		b.Logo = req.Image
	}
	if err := s.Repo.SaveBrand(ctx, b); err != nil {
		return nil, storeErr(err, "brand")
	}
	return b, nil
}

func (s *CatalogService) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	return storeErr(s.Repo.DeleteBrand(ctx, id), "brand")
}
