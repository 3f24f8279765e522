package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/pricing"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const cartSaveAttempts = 3

type CartService struct {
	Repo      *repo.GormRepo
	Now       func() time.Time
	DBTimeout time.Duration
}

func (s *CartService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// mutate is the only write path for carts: read, change, reprice, then a version-checked save.
// A lost race is retried from a fresh read; after cartSaveAttempts it surfaces ErrConflict.
func (s *CartService) mutate(ctx context.Context, userID uuid.UUID, create bool, change func(cart *models.Cart) error) (*models.Cart, error) {
	l := logging.FromContext(ctx).With("svc", "cart.mutate", "user_id", userID)

	for attempt := 1; attempt <= cartSaveAttempts; attempt++ {
		cart, err := s.Repo.GetCartByUser(ctx, userID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound) && create:
			cart = &models.Cart{UserID: userID}
		case err != nil:
			return nil, storeErr(err, "cart")
		}

		if err := change(cart); err != nil {
			return nil, err
		}
		pricing.Reprice(cart)

		err = s.Repo.SaveCart(ctx, cart)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, repo.ErrStale) {
			return nil, storeErr(err, "cart")
		}
		l.Warn("cart_version_conflict", "attempt", attempt)
	}
	return nil, fmt.Errorf("%w: cart was modified concurrently, retry", ErrConflict)
}

func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	ctx, cancel := withTimeout(ctx, s.DBTimeout)
	defer cancel()
	cart, err := s.Repo.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "cart")
	}
	full, err := s.Repo.GetCart(ctx, cart.ID)
	return full, storeErr(err, "cart")
}

// AddItem snapshots the product price on first add; adding the same product again raises the quantity.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req transport.AddToCartRequest) (*models.Cart, error) {
	ctx, cancel := withTimeout(ctx, s.DBTimeout)
	defer cancel()
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	product, err := s.Repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, storeErr(err, "product")
	}

	return s.mutate(ctx, userID, true, func(cart *models.Cart) error {
		for i := range cart.Items {
			if cart.Items[i].ProductID == product.ID {
				if cart.Items[i].Quantity+qty > product.Quantity {
					return fmt.Errorf("%w: only %d left in stock", ErrValidation, product.Quantity)
				}
				cart.Items[i].Quantity += qty
				return nil
			}
		}
		if qty > product.Quantity {
			return fmt.Errorf("%w: only %d left in stock", ErrValidation, product.Quantity)
		}
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: product.ID,
			Quantity:  qty,
			Price:     product.Price,
		})
		return nil
	})
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error) {
	ctx, cancel := withTimeout(ctx, s.DBTimeout)
	defer cancel()
	return s.mutate(ctx, userID, false, func(cart *models.Cart) error {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: cart item", ErrNotFound)
	})
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, qty int) (*models.Cart, error) {
	ctx, cancel := withTimeout(ctx, s.DBTimeout)
	defer cancel()
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	product, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, storeErr(err, "product")
	}
	if qty > product.Quantity {
		return nil, fmt.Errorf("%w: only %d left in stock", ErrValidation, product.Quantity)
	}

	return s.mutate(ctx, userID, false, func(cart *models.Cart) error {
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				cart.Items[i].Quantity = qty
				return nil
			}
		}
		return fmt.Errorf("%w: product is not in the cart", ErrNotFound)
	})
}

// ApplyCoupon sets the cart discount from a coupon that expires strictly after now.
func (s *CartService) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*models.Cart, error) {
	ctx, cancel := withTimeout(ctx, s.DBTimeout)
	defer cancel()
	coupon, err := s.Repo.GetCouponByCode(ctx, code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeErr(err, "coupon")
	}
	if coupon == nil || !coupon.ValidAt(s.now()) {
		return nil, fmt.Errorf("%w: invalid or expired coupon", ErrValidation)
	}

	return s.mutate(ctx, userID, false, func(cart *models.Cart) error {
		cart.Discount.Decimal, cart.Discount.Valid = coupon.Discount, true
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	ctx, cancel := withTimeout(ctx, s.DBTimeout)
	defer cancel()
	return storeErr(s.Repo.DeleteCart(ctx, userID), "cart")
}
