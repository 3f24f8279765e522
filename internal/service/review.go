package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/query"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var reviewQuery = query.Options{
	Columns:       []string{"id", "text", "rating", "user_id", "product_id", "created_at", "updated_at"},
	SearchColumns: []string{"text"},
}

type ReviewService struct {
	Repo *repo.GormRepo
}

func (s *ReviewService) List(ctx context.Context, params url.Values) (query.Page[models.Review], error) {
	q := query.New(params, reviewQuery).All()
	items, total, err := s.Repo.ListReviews(ctx, q)
	if err != nil {
		return query.Page[models.Review]{}, storeErr(err, "reviews")
	}
	return query.NewPage(q, items, total), nil
}

func (s *ReviewService) Get(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	r, err := s.Repo.GetReview(ctx, id)
	return r, storeErr(err, "review")
}

// Create allows one review per user and product.
func (s *ReviewService) Create(ctx context.Context, userID uuid.UUID, req transport.ReviewRequest) (*models.Review, error) {
	if _, err := s.Repo.GetProduct(ctx, req.ProductID); err != nil {
		return nil, storeErr(err, "product")
	}
	exists, err := s.Repo.ReviewExists(ctx, userID, req.ProductID)
	if err != nil {
		return nil, storeErr(err, "review")
	}
	if exists {
		return nil, fmt.Errorf("%w: you already reviewed this product", ErrConflict)
	}

	rv := &models.Review{Text: req.Text, Rating: req.Rating, UserID: userID, ProductID: req.ProductID}
	if err := s.Repo.CreateReview(ctx, rv); err != nil {
		return nil, storeErr(err, "review")
	}
	s.refreshRating(ctx, rv.ProductID)
	return rv, nil
}

// Update is reserved to the review author.
func (s *ReviewService) Update(ctx context.Context, userID, id uuid.UUID, req transport.PatchReviewRequest) (*models.Review, error) {
	rv, err := s.Repo.GetReview(ctx, id)
	if err != nil {
		return nil, storeErr(err, "review")
	}
	if rv.UserID != userID {
		return nil, fmt.Errorf("%w: only the author can edit a review", ErrForbidden)
	}
	if req.Text != nil {
		rv.Text = *req.Text
	}
	if req.Rating != nil {
		rv.Rating = *req.Rating
	}
	if err := s.Repo.SaveReview(ctx, rv); err != nil {
		return nil, storeErr(err, "review")
	}
	s.refreshRating(ctx, rv.ProductID)
	return rv, nil
}

func (s *ReviewService) Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID) error {
	rv, err := s.Repo.GetReview(ctx, id)
	if err != nil {
		return storeErr(err, "review")
	}
	if rv.UserID != userID && !isAdmin {
		return fmt.Errorf("%w: only the author can delete a review", ErrForbidden)
	}
	if err := s.Repo.DeleteReview(ctx, id); err != nil {
		return storeErr(err, "review")
	}
	s.refreshRating(ctx, rv.ProductID)
	return nil
}

func (s *ReviewService) refreshRating(ctx context.Context, productID uuid.UUID) {
	if err := s.Repo.RefreshProductRating(ctx, productID); err != nil {
		logging.FromContext(ctx).Warn("refresh_rating_error", "product_id", productID, "error", err)
	}
}
