package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type ReviewHTTP struct {
	Svc *service.ReviewService
}

func (h *ReviewHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.list")

	page, err := h.Svc.List(ctx, c.QueryParams())
	if err != nil {
		return fail(l, "list_reviews_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ReviewHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.get")

	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "get_review_error", err)
	}
	rv, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_review_error", err)
	}
	return c.JSON(http.StatusOK, rv)
}

func (h *ReviewHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.create")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "create_review_error", err)
	}
	var req transport.ReviewRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "create_review_error", err)
	}
	rv, err := h.Svc.Create(ctx, userID, req)
	if err != nil {
		return fail(l, "create_review_error", err)
	}

	l.Info("create_review_success", "review_id", rv.ID)
	return c.JSON(http.StatusCreated, rv)
}

func (h *ReviewHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.update")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "update_review_error", err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "update_review_error", err)
	}
	var req transport.PatchReviewRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_review_error", err)
	}
	rv, err := h.Svc.Update(ctx, userID, id, req)
	if err != nil {
		return fail(l, "update_review_error", err)
	}
	return c.JSON(http.StatusOK, rv)
}

func (h *ReviewHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.delete")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "delete_review_error", err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "delete_review_error", err)
	}
	if err := h.Svc.Delete(ctx, userID, middleware.IsAdmin(c), id); err != nil {
		return fail(l, "delete_review_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
