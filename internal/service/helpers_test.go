package service

import (
	"context"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/storefront/internal/eventlog"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/hash"
)

func init() {
	hash.SetCost(bcrypt.MinCost)
}

func newRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return &repo.GormRepo{DB: testutil.NewDB(t)}
}

type published struct {
	Topic string
	Key   string
	Event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, _ := event.(map[string]any)
	p.events = append(p.events, published{Topic: topic, Key: key, Event: m})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		t, _ := e.Event["type"].(string)
		out = append(out, t)
	}
	return out
}

type memoryPaymentLog struct {
	mu   sync.Mutex
	recs []eventlog.Record
}

func (m *memoryPaymentLog) Append(_ context.Context, rec eventlog.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memoryPaymentLog) ByCart(_ context.Context, cartID string) ([]eventlog.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []eventlog.Record
	for _, r := range m.recs {
		if r.CartID == cartID {
			out = append(out, r)
		}
	}
	return out, nil
}
