package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func User(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	u := &models.User{Name: "Test User", Email: email, PasswordHash: "x", Role: role, IsActive: true}
	require.NoError(t, db.Create(u).Error)
	return u
}

func Product(t *testing.T, db *gorm.DB, title, price string, qty int) *models.Product {
	t.Helper()
	p := &models.Product{
		Title:       title,
		Slug:        title,
		Description: title + " description",
		Price:       decimal.RequireFromString(price),
		Quantity:    qty,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

type Line struct {
	Product  *models.Product
	Quantity int
}

// Cart writes a cart with the given lines, priced at the product price.
func Cart(t *testing.T, db *gorm.DB, userID uuid.UUID, lines ...Line) *models.Cart {
	t.Helper()
	cart := &models.Cart{UserID: userID, Version: 1}
	total := decimal.Zero
	for _, ln := range lines {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: ln.Product.ID,
			Quantity:  ln.Quantity,
			Price:     ln.Product.Price,
		})
		total = total.Add(ln.Product.Price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
	}
	cart.TotalPrice = total
	require.NoError(t, db.Create(cart).Error)
	return cart
}
