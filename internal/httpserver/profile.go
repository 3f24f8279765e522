package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type ProfileHTTP struct {
	Wishlist  *service.WishlistService
	Addresses *service.AddressService
}

func (h *ProfileHTTP) GetWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.get")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "get_wishlist_error", err)
	}
	items, err := h.Wishlist.List(ctx, userID)
	if err != nil {
		return fail(l, "get_wishlist_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"results": len(items), "data": items})
}

func (h *ProfileHTTP) AddToWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.add")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "add_to_wishlist_error", err)
	}
	var req transport.WishlistRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "add_to_wishlist_error", err)
	}
	items, err := h.Wishlist.Add(ctx, userID, req.ProductID)
	if err != nil {
		return fail(l, "add_to_wishlist_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "success", "data": items})
}

func (h *ProfileHTTP) RemoveFromWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.remove")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "remove_from_wishlist_error", err)
	}
	productID, err := pathUUID(c, "productId")
	if err != nil {
		return fail(l, "remove_from_wishlist_error", err)
	}
	items, err := h.Wishlist.Remove(ctx, userID, productID)
	if err != nil {
		return fail(l, "remove_from_wishlist_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "success", "data": items})
}

func (h *ProfileHTTP) GetAddresses(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.get")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "get_addresses_error", err)
	}
	items, err := h.Addresses.List(ctx, userID)
	if err != nil {
		return fail(l, "get_addresses_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"results": len(items), "data": items})
}

func (h *ProfileHTTP) AddAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.add")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "add_address_error", err)
	}
	var req transport.AddressRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "add_address_error", err)
	}
	items, err := h.Addresses.Add(ctx, userID, req)
	if err != nil {
		return fail(l, "add_address_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "success", "data": items})
}

func (h *ProfileHTTP) RemoveAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.remove")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "remove_address_error", err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "remove_address_error", err)
	}
	items, err := h.Addresses.Remove(ctx, userID, id)
	if err != nil {
		return fail(l, "remove_address_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "success", "data": items})
}
