package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) GetCartByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) GetCart(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		Where("id = ?", id).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// SaveCart writes the cart and replaces its items. A new cart (Version 0) is inserted;
// an existing one is updated only if its version is unchanged, otherwise ErrStale.
// On success cart.Version is the stored version.
func (r *GormRepo) SaveCart(ctx context.Context, cart *models.Cart) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cart.Version == 0 {
			cart.Version = 1
			if err := tx.Omit("Items").Create(cart).Error; err != nil {
				cart.Version = 0
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrStale
				}
				return err
			}
		} else {
			res := tx.Model(&models.Cart{}).
				Where("id = ? AND version = ?", cart.ID, cart.Version).
				Updates(map[string]any{
					"total_price":                cart.TotalPrice,
					"total_price_after_discount": cart.TotalPriceAfterDiscount,
					"discount":                   cart.Discount,
					"version":                    cart.Version + 1,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrStale
			}
			cart.Version++
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		for i := range cart.Items {
			cart.Items[i].CartID = cart.ID
			cart.Items[i].Product = nil
		}
		if len(cart.Items) > 0 {
			if err := tx.Create(&cart.Items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRepo) DeleteCart(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			return err
		}
		return deleteCart(tx, cart.ID)
	})
}

func deleteCart(tx *gorm.DB, cartID uuid.UUID) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	res := tx.Where("id = ?", cartID).Delete(&models.Cart{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
