package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CouponHTTP struct {
	Svc *service.CouponService
}

func (h *CouponHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.list")

	page, err := h.Svc.List(ctx, c.QueryParams())
	if err != nil {
		return fail(l, "list_coupons_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *CouponHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.get")

	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "get_coupon_error", err)
	}
	cp, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_coupon_error", err)
	}
	return c.JSON(http.StatusOK, cp)
}

func (h *CouponHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.create")

	var req transport.CouponRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "create_coupon_error", err)
	}
	cp, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "create_coupon_error", err)
	}
	l.Info("create_coupon_success", "coupon_id", cp.ID)
	return c.JSON(http.StatusCreated, cp)
}

func (h *CouponHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.update")

	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "update_coupon_error", err)
	}
	var req transport.PatchCouponRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_coupon_error", err)
	}
	cp, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(l, "update_coupon_error", err)
	}
	return c.JSON(http.StatusOK, cp)
}

func (h *CouponHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.delete")

	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "delete_coupon_error", err)
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_coupon_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
