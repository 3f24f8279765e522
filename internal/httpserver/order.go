package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

// maxWebhookBody bounds what is read from the gateway before verification.
const maxWebhookBody = 1 << 16

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateCashOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_cash")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "create_cash_order_error", err)
	}
	cartID, err := pathUUID(c, "cartId")
	if err != nil {
		return fail(l, "create_cash_order_error", err)
	}
	var req transport.CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "create_cash_order_error", err)
	}

	order, err := h.Svc.CreateCashOrder(ctx, userID, cartID, req.ShippingAddress)
	if err != nil {
		return fail(l, "create_cash_order_error", err)
	}

	l.Info("create_cash_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, echo.Map{"message": "success", "order": order})
}

func (h *OrderHTTP) CreateCheckoutSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout_session")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "checkout_session_error", err)
	}
	cartID, err := pathUUID(c, "cartId")
	if err != nil {
		return fail(l, "checkout_session_error", err)
	}
	var req transport.CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "checkout_session_error", err)
	}

	sess, err := h.Svc.CreateCheckoutSession(ctx, userID, cartID, req.ShippingAddress)
	if err != nil {
		return fail(l, "checkout_session_error", err)
	}

	l.Info("checkout_session_success", "session_id", sess.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "success", "session": sess})
}

// Webhook must see the body exactly as sent: the signature covers the raw bytes.
func (h *OrderHTTP) Webhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.webhook")

	payload, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBody))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fail(l, "webhook_error", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "payload too large").SetInternal(err))
		}
		return fail(l, "webhook_error", fmt.Errorf("%w: read body: %v", service.ErrValidation, err))
	}
	sig := c.Request().Header.Get(payment.SignatureHeader)

	res, err := h.Svc.HandleWebhook(ctx, payload, sig)
	if err != nil {
		return fail(l, "webhook_error", err)
	}

	l.Info("webhook_success", "order_id", res.Order.ID, "duplicate", res.Duplicate)
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

func (h *OrderHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_mine")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "list_my_orders_error", err)
	}
	page, err := h.Svc.ListMine(ctx, userID, c.QueryParams())
	if err != nil {
		return fail(l, "list_my_orders_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *OrderHTTP) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_all")

	page, err := h.Svc.ListAll(ctx, c.QueryParams())
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	order, err := h.Svc.Get(ctx, userID, middleware.IsAdmin(c), id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) MarkPaid(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.mark_paid")

	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "mark_paid_error", err)
	}
	order, err := h.Svc.MarkPaid(ctx, id)
	if err != nil {
		return fail(l, "mark_paid_error", err)
	}

	l.Info("mark_paid_success", "order_id", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "success", "order": order})
}

func (h *OrderHTTP) MarkDelivered(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.mark_delivered")

	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "mark_delivered_error", err)
	}
	order, err := h.Svc.MarkDelivered(ctx, id)
	if err != nil {
		return fail(l, "mark_delivered_error", err)
	}

	l.Info("mark_delivered_success", "order_id", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "success", "order": order})
}

func (h *OrderHTTP) PaymentEvents(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.payment_events")

	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "payment_events_error", err)
	}
	recs, err := h.Svc.PaymentEvents(ctx, id)
	if err != nil {
		return fail(l, "payment_events_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"results": len(recs), "data": recs})
}
