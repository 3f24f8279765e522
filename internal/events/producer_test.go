package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/config"
)

func TestNop(t *testing.T) {
	require.NoError(t, Nop{}.PublishEvent(context.Background(), TopicOrders, "k", map[string]any{"type": "x"}))
	require.NoError(t, Nop{}.Close())
}

func TestProducer_PublishEvent(t *testing.T) {
	brokers := config.CSV(os.Getenv("KAFKA_BROKERS"))
	if len(brokers) == 0 {
		t.Skip("KAFKA_BROKERS not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "test_" + TopicOrders
	key := uuid.NewString()

	p := NewProducer(brokers)
	defer p.Close()

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     "storefront-test-" + key,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
	})
	defer r.Close()

	// a fresh group reads the topic from the start; skip older messages
	require.NoError(t, p.PublishEvent(ctx, topic, key, map[string]any{"type": "order_created", "order_id": key}))
	for {
		m, err := r.ReadMessage(ctx)
		require.NoError(t, err)
		if string(m.Key) != key {
			continue
		}
		var event map[string]any
		require.NoError(t, json.Unmarshal(m.Value, &event))
		require.Equal(t, "order_created", event["type"])
		require.Equal(t, key, event["order_id"])
		return
	}
}
