package repo

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/query"
)

// BuildOrder turns a locked cart into the order to insert. Returning an error aborts the conversion.
type BuildOrder func(cart *models.Cart) (*models.Order, error)

type Conversion struct {
	Order *models.Order
	// Existing is set when an order for the cart was already there; nothing was written.
	Existing bool
	// MissingProducts lists ordered products whose stock row no longer exists.
	MissingProducts []uuid.UUID
}

// ConvertCart is the order unit of work: in one transaction it returns an existing order
// for cartID if there is one, otherwise locks the cart, inserts the order built from it,
// applies the stock adjustment and deletes the cart. Any failure rolls back all of it.
func (r *GormRepo) ConvertCart(ctx context.Context, cartID uuid.UUID, build BuildOrder) (*Conversion, error) {
	var out Conversion
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Order
		err := tx.Preload("Items").Where("cart_id = ?", cartID).First(&existing).Error
		if err == nil {
			out = Conversion{Order: &existing, Existing: true}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var cart models.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", cartID).First(&cart).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Order("created_at ASC").Find(&cart.Items).Error; err != nil {
			return err
		}

		order, err := build(&cart)
		if err != nil {
			return err
		}
		order.CartID = cart.ID
		if err := tx.Omit("User").Create(order).Error; err != nil {
			return err
		}

		missing, err := adjustStock(tx, order.Items)
		if err != nil {
			return err
		}
		if err := deleteCart(tx, cart.ID); err != nil {
			return err
		}

		out = Conversion{Order: order, MissingProducts: missing}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// adjustStock decrements quantity and increments sold by the ordered amount, product by product
// in id order so concurrent conversions lock rows in the same sequence.
func adjustStock(tx *gorm.DB, items []models.OrderItem) ([]uuid.UUID, error) {
	qty := make(map[uuid.UUID]int, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if _, seen := qty[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		qty[it.ProductID] += it.Quantity
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	var missing []uuid.UUID
	for _, id := range ids {
		q := qty[id]
		res := tx.Model(&models.Product{}).Where("id = ?", id).Updates(map[string]any{
			"quantity": gorm.Expr("quantity - ?", q),
			"sold":     gorm.Expr("sold + ?", q),
		})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return first[models.Order](ctx, r.DB, id, "Items.Product", "User")
}

func (r *GormRepo) GetOrderByCart(ctx context.Context, cartID uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").Where("cart_id = ?", cartID).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uuid.UUID, q query.Builder) ([]models.Order, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB { return db.Where("user_id = ?", userID) }
	return list[models.Order](ctx, r.DB, q, scope, "Items.Product")
}

func (r *GormRepo) ListOrders(ctx context.Context, q query.Builder) ([]models.Order, int64, error) {
	return list[models.Order](ctx, r.DB, q, nil, "User", "Items.Product")
}

// MarkPaid flips is_paid once. It reports false when the order exists but was already paid.
func (r *GormRepo) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	return r.transition(ctx, id, "is_paid", "paid_at", at)
}

func (r *GormRepo) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	return r.transition(ctx, id, "is_delivered", "delivered_at", at)
}

func (r *GormRepo) transition(ctx context.Context, id uuid.UUID, flag, stamp string, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND "+flag+" = ?", id, false).
		Updates(map[string]any{flag: true, stamp: at})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, gorm.ErrRecordNotFound
	}
	return false, nil
}
