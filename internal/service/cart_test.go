package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertCartInvariants(t *testing.T, cart *models.Cart) {
	t.Helper()
	sum := decimal.Zero
	for _, it := range cart.Items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	assert.True(t, sum.Equal(cart.TotalPrice), "total %s, items sum %s", cart.TotalPrice, sum)

	if cart.Discount.Valid && !cart.Discount.Decimal.IsZero() {
		require.True(t, cart.TotalPriceAfterDiscount.Valid)
		off := cart.TotalPrice.Mul(cart.Discount.Decimal).Div(decimal.NewFromInt(100))
		assert.True(t, cart.TotalPrice.Sub(off).Round(2).Equal(cart.TotalPriceAfterDiscount.Decimal))
	} else {
		assert.False(t, cart.TotalPriceAfterDiscount.Valid)
	}
}

func TestCartService_AddUpdateRemove(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	svc := &CartService{Repo: r}

	user := testutil.User(t, r.DB, "cart@example.com", models.RoleUser)
	shoe := testutil.Product(t, r.DB, "Shoe", "10", 10)
	sock := testutil.Product(t, r.DB, "Sock", "2.50", 10)

	cart, err := svc.AddItem(ctx, user.ID, transport.AddToCartRequest{ProductID: shoe.ID})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.EqualValues(t, 1, cart.Version)
	assertCartInvariants(t, cart)

	cart, err = svc.AddItem(ctx, user.ID, transport.AddToCartRequest{ProductID: shoe.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assertCartInvariants(t, cart)

	cart, err = svc.AddItem(ctx, user.ID, transport.AddToCartRequest{ProductID: sock.ID, Quantity: 4})
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.True(t, dec("40").Equal(cart.TotalPrice))
	assertCartInvariants(t, cart)

	cart, err = svc.UpdateQuantity(ctx, user.ID, shoe.ID, 1)
	require.NoError(t, err)
	assert.True(t, dec("20").Equal(cart.TotalPrice))
	assertCartInvariants(t, cart)

	var sockLine uuid.UUID
	for _, it := range cart.Items {
		if it.ProductID == sock.ID {
			sockLine = it.ID
		}
	}
	cart, err = svc.RemoveItem(ctx, user.ID, sockLine)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.True(t, dec("10").Equal(cart.TotalPrice))
	assertCartInvariants(t, cart)

	stored, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	require.NotNil(t, stored.Items[0].Product)
	assert.Equal(t, "Shoe", stored.Items[0].Product.Title)
	assert.True(t, dec("10").Equal(stored.TotalPrice))
}

func TestCartService_PriceSnapshot(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	svc := &CartService{Repo: r}

	user := testutil.User(t, r.DB, "snap@example.com", models.RoleUser)
	p := testutil.Product(t, r.DB, "Lamp", "30", 5)

	_, err := svc.AddItem(ctx, user.ID, transport.AddToCartRequest{ProductID: p.ID})
	require.NoError(t, err)

	require.NoError(t, r.DB.Model(&models.Product{}).Where("id = ?", p.ID).Update("price", dec("99")).Error)

	cart, err := svc.AddItem(ctx, user.ID, transport.AddToCartRequest{ProductID: p.ID})
	require.NoError(t, err)
	assert.True(t, dec("30").Equal(cart.Items[0].Price))
	assert.True(t, dec("60").Equal(cart.TotalPrice))
}

func TestCartService_Errors(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	svc := &CartService{Repo: r}

	user := testutil.User(t, r.DB, "errs@example.com", models.RoleUser)
	p := testutil.Product(t, r.DB, "Rare", "5", 2)

	_, err := svc.Get(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddItem(ctx, user.ID, transport.AddToCartRequest{ProductID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddItem(ctx, user.ID, transport.AddToCartRequest{ProductID: p.ID, Quantity: 3})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateQuantity(ctx, user.ID, p.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.RemoveItem(ctx, user.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddItem(ctx, user.ID, transport.AddToCartRequest{ProductID: p.ID})
	require.NoError(t, err)
	_, err = svc.RemoveItem(ctx, user.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Clear(ctx, uuid.New()), ErrNotFound)
	require.NoError(t, svc.Clear(ctx, user.ID))
	_, err = svc.Get(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartService_ApplyCoupon(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &CartService{Repo: r, Now: func() time.Time { return now }}

	user := testutil.User(t, r.DB, "coupon@example.com", models.RoleUser)
	p := testutil.Product(t, r.DB, "Coat", "80", 5)
	require.NoError(t, r.DB.Create(&models.Coupon{Code: "SAVE10", Discount: dec("10"), Expires: now.Add(time.Hour)}).Error)
	require.NoError(t, r.DB.Create(&models.Coupon{Code: "OLD", Discount: dec("50"), Expires: now}).Error)

	_, err := svc.AddItem(ctx, user.ID, transport.AddToCartRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = svc.ApplyCoupon(ctx, user.ID, "OLD")
	assert.ErrorIs(t, err, ErrValidation, "a coupon expiring exactly now is expired")
	_, err = svc.ApplyCoupon(ctx, user.ID, "NOPE")
	assert.ErrorIs(t, err, ErrValidation)

	cart, err := svc.ApplyCoupon(ctx, user.ID, "SAVE10")
	require.NoError(t, err)
	require.True(t, cart.TotalPriceAfterDiscount.Valid)
	assert.True(t, dec("144").Equal(cart.TotalPriceAfterDiscount.Decimal))
	assertCartInvariants(t, cart)

	// the discount follows later edits
	cart, err = svc.UpdateQuantity(ctx, user.ID, p.ID, 1)
	require.NoError(t, err)
	assert.True(t, dec("72").Equal(cart.TotalPriceAfterDiscount.Decimal))
	assertCartInvariants(t, cart)
}

func TestCartService_VersionConflict(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	svc := &CartService{Repo: r}

	user := testutil.User(t, r.DB, "race@example.com", models.RoleUser)
	p := testutil.Product(t, r.DB, "Mug", "4", 50)
	_, err := svc.AddItem(ctx, user.ID, transport.AddToCartRequest{ProductID: p.ID})
	require.NoError(t, err)

	bump := func() error {
		return r.DB.Model(&models.Cart{}).Where("user_id = ?", user.ID).
			Update("version", gorm.Expr("version + 1")).Error
	}

	t.Run("retried until it wins", func(t *testing.T) {
		calls := 0
		cart, err := svc.mutate(ctx, user.ID, false, func(c *models.Cart) error {
			calls++
			if calls == 1 {
				require.NoError(t, bump())
			}
			c.Items[0].Quantity = 5
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.True(t, dec("20").Equal(cart.TotalPrice))
	})

	t.Run("conflict after bounded retries", func(t *testing.T) {
		calls := 0
		_, err := svc.mutate(ctx, user.ID, false, func(c *models.Cart) error {
			calls++
			return bump()
		})
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, cartSaveAttempts, calls)
	})
}

func TestCartService_DBTimeout(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	svc := &CartService{Repo: r, DBTimeout: 5 * time.Second}

	user := testutil.User(t, r.DB, "slow@example.com", models.RoleUser)
	shoe := testutil.Product(t, r.DB, "Shoe", "10", 10)
	_, err := svc.AddItem(ctx, user.ID, transport.AddToCartRequest{ProductID: shoe.ID})
	require.NoError(t, err)

	svc.DBTimeout = time.Nanosecond

	_, err = svc.Get(ctx, user.ID)
	assert.ErrorIs(t, err, ErrTimeout)
	_, err = svc.AddItem(ctx, user.ID, transport.AddToCartRequest{ProductID: shoe.ID})
	assert.ErrorIs(t, err, ErrTimeout)
	_, err = svc.UpdateQuantity(ctx, user.ID, shoe.ID, 2)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, svc.Clear(ctx, user.ID), ErrTimeout)

	svc.DBTimeout = 5 * time.Second
	cart, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}
