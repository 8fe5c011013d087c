package counters

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBBackend implements Backend as a single collection document per
// terminal, with one field per counter name, updated with an atomic
// FindOneAndUpdate + $inc + upsert.
type MongoDBBackend struct {
	client     *mongo.Client
	ownsClient bool
	collection *mongo.Collection
}

// NewMongoDBBackend opens a dedicated client for the counter collection.
func NewMongoDBBackend(connectionString, database, collectionName string) (*MongoDBBackend, error) {
	ctx, cancel := withTimeout(context.Background())
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	b := &MongoDBBackend{
		client:     client,
		ownsClient: true,
		collection: client.Database(database).Collection(collectionNameOrDefault(collectionName)),
	}
	if err := b.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return b, nil
}

// NewMongoDBBackendWithClient reuses an existing client (shared with C2's
// fallback store) instead of opening a dedicated connection.
func NewMongoDBBackendWithClient(client *mongo.Client, database, collectionName string) (*MongoDBBackend, error) {
	ctx, cancel := withTimeout(context.Background())
	defer cancel()

	b := &MongoDBBackend{
		client:     client,
		ownsClient: false,
		collection: client.Database(database).Collection(collectionNameOrDefault(collectionName)),
	}
	if err := b.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func collectionNameOrDefault(name string) string {
	if name == "" {
		return "info_terminal_counter"
	}
	return name
}

func (b *MongoDBBackend) ensureIndexes(ctx context.Context) error {
	_, err := b.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "_id", Value: 1}}},
	})
	return err
}

// Allocate increments counters.<counterName> on the terminal's document,
// upserting an empty document first if the terminal hasn't been seen.
func (b *MongoDBBackend) Allocate(ctx context.Context, terminalID, counterName string) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": terminalID}
	update := bson.M{"$inc": bson.M{"counters." + counterName: int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Counters map[string]int64 `bson:"counters"`
	}
	if err := b.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return 0, fmt.Errorf("allocate counter: %w", err)
	}
	return doc.Counters[counterName], nil
}

func (b *MongoDBBackend) Close() error {
	if !b.ownsClient {
		return nil
	}
	ctx, cancel := withTimeout(context.Background())
	defer cancel()
	return b.client.Disconnect(ctx)
}
