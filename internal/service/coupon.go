package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/query"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

var couponQuery = query.Options{
	Columns:       []string{"id", "code", "discount", "expires", "created_at", "updated_at"},
	SearchColumns: []string{"code"},
}

const qrSize = 256

type CouponService struct {
	Repo *repo.GormRepo
}

type CouponWithQR struct {
	*models.Coupon
	QR string `json:"qr"`
}

func (s *CouponService) List(ctx context.Context, params url.Values) (query.Page[models.Coupon], error) {
	q := query.New(params, couponQuery).All()
	items, total, err := s.Repo.ListCoupons(ctx, q)
	if err != nil {
		return query.Page[models.Coupon]{}, storeErr(err, "coupons")
	}
	return query.NewPage(q, items, total), nil
}

// Get returns the coupon with its code rendered as a PNG QR data URL.
func (s *CouponService) Get(ctx context.Context, id uuid.UUID) (*CouponWithQR, error) {
	c, err := s.Repo.GetCoupon(ctx, id)
	if err != nil {
		return nil, storeErr(err, "coupon")
	}
	png, err := qrcode.Encode(c.Code, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("%w: render qr: %v", ErrUpstream, err)
	}
	return &CouponWithQR{
		Coupon: c,
		QR:     "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

func (s *CouponService) Create(ctx context.Context, req transport.CouponRequest) (*models.Coupon, error) {
	if err := checkDiscount(req.Discount); err != nil {
		return nil, err
	}
	c := &models.Coupon{
		Code:     strings.TrimSpace(req.Code),
		Discount: req.Discount,
		Expires:  req.Expires.UTC(),
	}
	if err := s.Repo.CreateCoupon(ctx, c); err != nil {
		return nil, storeErr(err, "coupon")
	}
	return c, nil
}

func (s *CouponService) Update(ctx context.Context, id uuid.UUID, req transport.PatchCouponRequest) (*models.Coupon, error) {
	c, err := s.Repo.GetCoupon(ctx, id)
	if err != nil {
		return nil, storeErr(err, "coupon")
	}
	if req.Code != nil {
		c.Code = strings.TrimSpace(*req.Code)
	}
	if req.Discount != nil {
		if err := checkDiscount(*req.Discount); err != nil {
			return nil, err
		}
		c.Discount = *req.Discount
	}
	if req.Expires != nil {
		c.Expires = req.Expires.UTC()
	}
	if err := s.Repo.SaveCoupon(ctx, c); err != nil {
		return nil, storeErr(err, "coupon")
	}
	return c, nil
}

func (s *CouponService) Delete(ctx context.Context, id uuid.UUID) error {
	return storeErr(s.Repo.DeleteCoupon(ctx, id), "coupon")
}

func checkDiscount(d decimal.Decimal) error {
	if !d.IsPositive() || d.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: discount must be in (0, 100]", ErrValidation)
	}
	return nil
}
