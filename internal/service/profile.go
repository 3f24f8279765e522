package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type WishlistService struct {
	Repo *repo.GormRepo
}

// Add is idempotent and returns the resulting wishlist.
func (s *WishlistService) Add(ctx context.Context, userID, productID uuid.UUID) ([]models.Product, error) {
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		return nil, storeErr(err, "product")
	}
	if err := s.Repo.AddToWishlist(ctx, userID, productID); err != nil {
		return nil, storeErr(err, "wishlist")
	}
	return s.List(ctx, userID)
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) ([]models.Product, error) {
	if err := s.Repo.RemoveFromWishlist(ctx, userID, productID); err != nil {
		return nil, storeErr(err, "wishlist")
	}
	return s.List(ctx, userID)
}

func (s *WishlistService) List(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	items, err := s.Repo.Wishlist(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "wishlist")
	}
	if items == nil {
		items = []models.Product{}
	}
	return items, nil
}

type AddressService struct {
	Repo *repo.GormRepo
}

func (s *AddressService) Add(ctx context.Context, userID uuid.UUID, req transport.AddressRequest) ([]models.Address, error) {
	a := &models.Address{UserID: userID, City: req.City, Street: req.Street, Phone: req.Phone}
	if err := s.Repo.AddAddress(ctx, a); err != nil {
		return nil, storeErr(err, "address")
	}
	return s.List(ctx, userID)
}

func (s *AddressService) Remove(ctx context.Context, userID, id uuid.UUID) ([]models.Address, error) {
	if err := s.Repo.RemoveAddress(ctx, userID, id); err != nil {
		return nil, storeErr(err, "address")
	}
	return s.List(ctx, userID)
}

func (s *AddressService) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	items, err := s.Repo.Addresses(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "addresses")
	}
	if items == nil {
		items = []models.Address{}
	}
	return items, nil
}
