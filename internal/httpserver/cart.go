package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func cartResponse(cart *models.Cart) echo.Map {
	return echo.Map{
		"message":        "success",
		"num_cart_items": len(cart.Items),
		"cart":           cart,
	}
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	cart, err := h.Svc.Get(ctx, userID)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, cartResponse(cart))
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}
	var req transport.AddToCartRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "add_to_cart_error", err)
	}
	cart, err := h.Svc.AddItem(ctx, userID, req)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("add_to_cart_success", "product_id", req.ProductID)
	return c.JSON(http.StatusOK, cartResponse(cart))
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_quantity")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "update_quantity_error", err)
	}
	productID, err := pathUUID(c, "productId")
	if err != nil {
		return fail(l, "update_quantity_error", err)
	}
	var req transport.UpdateQuantityRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_quantity_error", err)
	}
	cart, err := h.Svc.UpdateQuantity(ctx, userID, productID, req.Quantity)
	if err != nil {
		return fail(l, "update_quantity_error", err)
	}
	return c.JSON(http.StatusOK, cartResponse(cart))
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "remove_item_error", err)
	}
	itemID, err := pathUUID(c, "itemId")
	if err != nil {
		return fail(l, "remove_item_error", err)
	}
	cart, err := h.Svc.RemoveItem(ctx, userID, itemID)
	if err != nil {
		return fail(l, "remove_item_error", err)
	}
	return c.JSON(http.StatusOK, cartResponse(cart))
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "clear_cart_error", err)
	}
	if err := h.Svc.Clear(ctx, userID); err != nil {
		return fail(l, "clear_cart_error", err)
	}

	l.Info("clear_cart_success")
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) ApplyCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.apply_coupon")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "apply_coupon_error", err)
	}
	var req transport.ApplyCouponRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "apply_coupon_error", err)
	}
	cart, err := h.Svc.ApplyCoupon(ctx, userID, req.Code)
	if err != nil {
		return fail(l, "apply_coupon_error", err)
	}

	l.Info("apply_coupon_success")
	return c.JSON(http.StatusOK, cartResponse(cart))
}
