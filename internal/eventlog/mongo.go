package eventlog

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collection = "payment_events"

// Record is one verified payment notification and what was done with it.
type Record struct {
	EventID    string    `bson:"event_id"    json:"event_id"`
	Type       string    `bson:"type"        json:"type"`
	CartID     string    `bson:"cart_id"     json:"cart_id"`
	SessionID  string    `bson:"session_id"  json:"session_id,omitempty"`
	Outcome    string    `bson:"outcome"     json:"outcome"`
	Payload    string    `bson:"payload"     json:"-"`
	ReceivedAt time.Time `bson:"received_at" json:"received_at"`
}

type MongoLog struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func Connect(ctx context.Context, uri, database string) (*MongoLog, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "cart_id", Value: 1}, {Key: "received_at", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: create index: %w", err)
	}
	return &MongoLog{client: client, coll: coll}, nil
}

func (m *MongoLog) Append(ctx context.Context, rec Record) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	if _, err := m.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("mongo: insert event: %w", err)
	}
	return nil
}

// ByCart returns the events recorded for one cart, oldest first.
func (m *MongoLog) ByCart(ctx context.Context, cartID string) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "received_at", Value: 1}})
	cur, err := m.coll.Find(ctx, bson.M{"cart_id": cartID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find events: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]Record, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo: decode events: %w", err)
	}
	return out, nil
}

func (m *MongoLog) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
