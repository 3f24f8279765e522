package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/eventlog"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/pricing"
	"github.com/Skotchmaster/storefront/internal/query"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var orderQuery = query.Options{
	Columns: []string{
		"id", "user_id", "cart_id", "total_order_price", "payment_method", "is_paid", "paid_at",
		"is_delivered", "delivered_at", "shipping_city", "created_at", "updated_at",
	},
	SearchColumns: []string{"shipping_city", "shipping_street"},
	// preloads join on these, so a projection always keeps them
	KeyColumns:    []string{"id", "user_id", "cart_id"},
}

// Webhook outcomes as written to the payment event log.
const (
	outcomeCreated   = "order_created"
	outcomeDuplicate = "duplicate"
	outcomeIgnored   = "ignored"
	outcomeFailed    = "failed"
)

type OrderService struct {
	Repo       *repo.GormRepo
	Gateway    payment.Gateway
	Events     Publisher
	PaymentLog PaymentLog
	Now        func() time.Time

	DBTimeout      time.Duration
	GatewayTimeout time.Duration
	Currency       string
	SuccessURL     string
	CancelURL      string
	TopicPrefix    string
}

type WebhookResult struct {
	Order     *models.Order
	Duplicate bool
	EventType string
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *OrderService) topic() string { return s.TopicPrefix + events.TopicOrders }

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// ownedCart loads cartID and checks it belongs to userID.
func (s *OrderService) ownedCart(ctx context.Context, userID, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := s.Repo.GetCart(ctx, cartID)
	if err != nil {
		return nil, storeErr(err, "cart")
	}
	if cart.UserID != userID {
		return nil, fmt.Errorf("%w: cart belongs to another user", ErrForbidden)
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}
	return cart, nil
}

func snapshotItems(cart *models.Cart) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, models.OrderItem{
			ProductID:            it.ProductID,
			Quantity:             it.Quantity,
			Price:                it.Price,
			TotalProductDiscount: it.TotalProductDiscount,
		})
	}
	return items
}

// CreateCashOrder converts the caller's cart into an unpaid cash order.
func (s *OrderService) CreateCashOrder(ctx context.Context, userID, cartID uuid.UUID, addr transport.ShippingAddress) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.cash", "cart_id", cartID)
	ctx, cancel := withTimeout(ctx, s.DBTimeout)
	defer cancel()

	if _, err := s.ownedCart(ctx, userID, cartID); err != nil {
		return nil, err
	}

	conv, err := s.Repo.ConvertCart(ctx, cartID, func(cart *models.Cart) (*models.Order, error) {
		if len(cart.Items) == 0 {
			return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
		}
		return &models.Order{
			UserID:          cart.UserID,
			Items:           snapshotItems(cart),
			TotalOrderPrice: pricing.Payable(cart),
			Shipping:        models.Shipping{Street: addr.Street, City: addr.City, Phone: addr.Phone},
			PaymentMethod:   models.PaymentCash,
		}, nil
	})
	if err != nil {
		return nil, storeErr(err, "cart")
	}
	if conv.Existing {
		return nil, fmt.Errorf("%w: an order was already placed for this cart", ErrConflict)
	}
	if len(conv.MissingProducts) > 0 {
		l.Warn("stock_rows_missing", "products", conv.MissingProducts)
	}

	order := conv.Order
	l.Info("order_created", "order_id", order.ID, "total", order.TotalOrderPrice.String())
	s.publishOrder(ctx, "order_created", order)
	return s.reload(ctx, order), nil
}

// CreateCheckoutSession opens a hosted payment page for the cart. Nothing is written locally;
// the order appears when the gateway reports the completed session.
func (s *OrderService) CreateCheckoutSession(ctx context.Context, userID, cartID uuid.UUID, addr transport.ShippingAddress) (*payment.Session, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout", "cart_id", cartID)
	if s.Gateway == nil {
		return nil, fmt.Errorf("%w: card payments are not configured", ErrUpstream)
	}

	dbCtx, cancel := withTimeout(ctx, s.DBTimeout)
	defer cancel()
	cart, err := s.ownedCart(dbCtx, userID, cartID)
	if err != nil {
		return nil, err
	}
	user, err := s.Repo.GetUser(dbCtx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}

	gwCtx, gwCancel := withTimeout(ctx, s.GatewayTimeout)
	defer gwCancel()
	shipping := models.Shipping{Street: addr.Street, City: addr.City, Phone: addr.Phone}
	sess, err := s.Gateway.CreateCheckoutSession(gwCtx, payment.SessionRequest{
		CartID:        cart.ID.String(),
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		Amount:        pricing.Payable(cart),
		Currency:      s.Currency,
		SuccessURL:    s.SuccessURL,
		CancelURL:     s.CancelURL,
		Metadata:      shipping.Metadata(),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: payment gateway: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: payment gateway: %v", ErrUpstream, err)
	}
	l.Info("checkout_session_created", "session_id", sess.ID)
	return sess, nil
}

// HandleWebhook verifies a gateway notification and, for a completed checkout, creates the
// paid card order. Replays of an already converted cart succeed without side effects.
func (s *OrderService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	l := logging.FromContext(ctx).With("svc", "order.webhook")
	if s.Gateway == nil {
		return nil, fmt.Errorf("%w: card payments are not configured", ErrUpstream)
	}

	ev, err := s.Gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrSignature) {
			return nil, fmt.Errorf("%w: %v", ErrSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = s.now()
	}
	l = l.With("event_id", ev.ID, "type", ev.Type, "cart_id", ev.CartID)

	res, err := s.settle(ctx, ev)
	s.record(ctx, ev, res, err)
	if err != nil {
		l.Warn("webhook_error", "error", err)
		return nil, err
	}
	if res.Duplicate {
		l.Info("webhook_duplicate", "order_id", res.Order.ID)
	} else {
		l.Info("webhook_success", "order_id", res.Order.ID)
	}
	return res, nil
}

func (s *OrderService) settle(ctx context.Context, ev *payment.Event) (*WebhookResult, error) {
	if ev.Type != payment.EventCheckoutCompleted {
		return nil, fmt.Errorf("%w: %s", ErrUnhandledEvent, ev.Type)
	}
	cartID, err := uuid.Parse(ev.CartID)
	if err != nil {
		return nil, fmt.Errorf("%w: client_reference_id is not a cart id", ErrValidation)
	}

	ctx, cancel := withTimeout(ctx, s.DBTimeout)
	defer cancel()

	if existing, err := s.Repo.GetOrderByCart(ctx, cartID); err == nil {
		return &WebhookResult{Order: existing, Duplicate: true, EventType: ev.Type}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeErr(err, "order")
	}

	user, err := s.Repo.GetUserByEmail(ctx, normalizeEmail(ev.CustomerEmail))
	if err != nil {
		return nil, storeErr(err, "customer")
	}

	paidAt := ev.ReceivedAt
	conv, err := s.Repo.ConvertCart(ctx, cartID, func(cart *models.Cart) (*models.Order, error) {
		return &models.Order{
			UserID:          user.ID,
			Items:           snapshotItems(cart),
			TotalOrderPrice: ev.AmountTotal,
			Shipping:        models.ShippingFromMetadata(ev.Metadata),
			PaymentMethod:   models.PaymentCard,
			IsPaid:          true,
			PaidAt:          &paidAt,
			SessionID:       ev.SessionID,
		}, nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// The cart may have been converted between the check above and the transaction.
		if existing, lookupErr := s.Repo.GetOrderByCart(ctx, cartID); lookupErr == nil {
			return &WebhookResult{Order: existing, Duplicate: true, EventType: ev.Type}, nil
		}
	}
	if err != nil {
		return nil, storeErr(err, "cart")
	}
	if conv.Existing {
		return &WebhookResult{Order: conv.Order, Duplicate: true, EventType: ev.Type}, nil
	}
	if len(conv.MissingProducts) > 0 {
		logging.FromContext(ctx).Warn("stock_rows_missing", "products", conv.MissingProducts)
	}

	s.publishOrder(ctx, "order_created", conv.Order)
	s.publishOrder(ctx, "order_paid", conv.Order)
	return &WebhookResult{Order: conv.Order, EventType: ev.Type}, nil
}

// record appends the event to the payment log; failures only warn.
func (s *OrderService) record(ctx context.Context, ev *payment.Event, res *WebhookResult, err error) {
	if s.PaymentLog == nil {
		return
	}
	outcome := outcomeCreated
	switch {
	case errors.Is(err, ErrUnhandledEvent):
		outcome = outcomeIgnored
	case err != nil:
		outcome = outcomeFailed
	case res.Duplicate:
		outcome = outcomeDuplicate
	}
	rec := eventlog.Record{
		EventID:    ev.ID,
		Type:       ev.Type,
		CartID:     ev.CartID,
		SessionID:  ev.SessionID,
		Outcome:    outcome,
		Payload:    string(ev.Raw),
		ReceivedAt: ev.ReceivedAt,
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.PaymentLog.Append(ctx, rec); err != nil {
		logging.FromContext(ctx).Warn("payment_log_error", "event_id", ev.ID, "error", err)
	}
}

func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID, params url.Values) (query.Page[models.Order], error) {
	ctx, cancel := withTimeout(ctx, s.DBTimeout)
	defer cancel()
	q := query.New(params, orderQuery).All()
	items, total, err := s.Repo.ListOrdersByUser(ctx, userID, q)
	if err != nil {
		return query.Page[models.Order]{}, storeErr(err, "orders")
	}
	return query.NewPage(q, items, total), nil
}

func (s *OrderService) ListAll(ctx context.Context, params url.Values) (query.Page[models.Order], error) {
	ctx, cancel := withTimeout(ctx, s.DBTimeout)
	defer cancel()
	q := query.New(params, orderQuery).All()
	items, total, err := s.Repo.ListOrders(ctx, q)
	if err != nil {
		return query.Page[models.Order]{}, storeErr(err, "orders")
	}
	return query.NewPage(q, items, total), nil
}

func (s *OrderService) Get(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx, s.DBTimeout)
	defer cancel()
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, storeErr(err, "order")
	}
	if o.UserID != userID && !isAdmin {
		return nil, fmt.Errorf("%w: order belongs to another user", ErrForbidden)
	}
	return o, nil
}

func (s *OrderService) MarkPaid(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx, s.DBTimeout)
	defer cancel()
	ok, err := s.Repo.MarkPaid(ctx, id, s.now())
	if err != nil {
		return nil, storeErr(err, "order")
	}
	if !ok {
		return nil, fmt.Errorf("%w: order is already paid", ErrConflict)
	}
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, storeErr(err, "order")
	}
	s.publishOrder(ctx, "order_paid", o)
	return o, nil
}

func (s *OrderService) MarkDelivered(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx, s.DBTimeout)
	defer cancel()
	ok, err := s.Repo.MarkDelivered(ctx, id, s.now())
	if err != nil {
		return nil, storeErr(err, "order")
	}
	if !ok {
		return nil, fmt.Errorf("%w: order is already delivered", ErrConflict)
	}
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, storeErr(err, "order")
	}
	s.publishOrder(ctx, "order_delivered", o)
	return o, nil
}

// PaymentEvents returns the gateway notifications logged for the order's cart.
func (s *OrderService) PaymentEvents(ctx context.Context, id uuid.UUID) ([]eventlog.Record, error) {
	ctx, cancel := withTimeout(ctx, s.DBTimeout)
	defer cancel()
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, storeErr(err, "order")
	}
	if s.PaymentLog == nil {
		return []eventlog.Record{}, nil
	}
	recs, err := s.PaymentLog.ByCart(ctx, o.CartID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: payment log: %v", ErrUpstream, err)
	}
	if recs == nil {
		recs = []eventlog.Record{}
	}
	return recs, nil
}

func (s *OrderService) reload(ctx context.Context, o *models.Order) *models.Order {
	full, err := s.Repo.GetOrder(ctx, o.ID)
	if err != nil {
		logging.FromContext(ctx).Warn("order_reload_error", "order_id", o.ID, "error", err)
		return o
	}
	return full
}

func (s *OrderService) publishOrder(ctx context.Context, typ string, o *models.Order) {
	publish(ctx, s.Events, s.topic(), o.ID.String(), map[string]any{
		"type":           typ,
		"order_id":       o.ID.String(),
		"user_id":        o.UserID.String(),
		"cart_id":        o.CartID.String(),
		"total":          o.TotalOrderPrice.String(),
		"payment_method": string(o.PaymentMethod),
		"is_paid":        o.IsPaid,
		"at":             s.now().Format(time.RFC3339),
	})
}
