package eventlog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMongoLog(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	db := "storefront_test_" + uuid.NewString()[:8]
	ml, err := Connect(ctx, uri, db)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ml.client.Database(db).Drop(context.Background())
		_ = ml.Close(context.Background())
	})

	cart := uuid.NewString()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ml.Append(ctx, Record{EventID: "evt_2", CartID: cart, Outcome: "duplicate", ReceivedAt: base.Add(time.Minute)}))
	require.NoError(t, ml.Append(ctx, Record{EventID: "evt_1", CartID: cart, Outcome: "order_created", ReceivedAt: base}))
	require.NoError(t, ml.Append(ctx, Record{EventID: "evt_x", CartID: uuid.NewString(), Outcome: "ignored"}))

	recs, err := ml.ByCart(ctx, cart)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "evt_1", recs[0].EventID)
	assert.Equal(t, "evt_2", recs[1].EventID)

	none, err := ml.ByCart(ctx, "nothing")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
