package service

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/transport"
)

func TestCouponCRUD(t *testing.T) {
	svc := &CouponService{Repo: newRepo(t)}
	ctx := context.Background()
	expires := time.Now().Add(48 * time.Hour)

	for _, d := range []string{"0", "-5", "100.01"} {
		_, err := svc.Create(ctx, transport.CouponRequest{Code: "BAD", Discount: decimal.RequireFromString(d), Expires: expires})
		assert.ErrorIs(t, err, ErrValidation, d)
	}

	c, err := svc.Create(ctx, transport.CouponRequest{Code: " SPRING10 ", Discount: decimal.NewFromInt(10), Expires: expires})
	require.NoError(t, err)
	assert.Equal(t, "SPRING10", c.Code)

	_, err = svc.Create(ctx, transport.CouponRequest{Code: "SPRING10", Discount: decimal.NewFromInt(5), Expires: expires})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(got.QR, "data:image/png;base64,"))
	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(got.QR, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(png[:4]))

	twenty := decimal.NewFromInt(20)
	updated, err := svc.Update(ctx, c.ID, transport.PatchCouponRequest{Discount: &twenty})
	require.NoError(t, err)
	assert.True(t, twenty.Equal(updated.Discount))
	assert.Equal(t, "SPRING10", updated.Code)

	over := decimal.NewFromInt(101)
	_, err = svc.Update(ctx, c.ID, transport.PatchCouponRequest{Discount: &over})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.Delete(ctx, c.ID))
	_, err = svc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), ErrNotFound)
}
