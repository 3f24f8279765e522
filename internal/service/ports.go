package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/eventlog"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, q string, from, size int) (int64, []uuid.UUID, error)
}

type PaymentLog interface {
	Append(ctx context.Context, rec eventlog.Record) error
	ByCart(ctx context.Context, cartID string) ([]eventlog.Record, error)
}

const publishTimeout = 5 * time.Second

// publish is best effort: failures are logged and never fail the caller.
func publish(ctx context.Context, p Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	l := logging.FromContext(ctx)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		l.Warn("publish_event_error", "topic", topic, "type", event["type"], "error", err)
	}
}
