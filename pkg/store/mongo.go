package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures a MongoDB store.
type MongoConfig struct {
	URI        string // default mongodb://localhost:27017
	Database   string // default "archboard"
	Collection string // default "documents"
}

// mongoDocument is the stored shape: the key is the document id.
type mongoDocument struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// mongoCollection is the subset of *mongo.Collection the store uses.
type mongoCollection interface {
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	UpdateOne(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// Mongo stores one document per key.
type Mongo struct {
	coll       mongoCollection
	disconnect func(context.Context) error
}

// NewMongo connects to MongoDB and verifies the connection with a ping.
func NewMongo(ctx context.Context, cfg MongoConfig) (*Mongo, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "archboard"
	}
	if cfg.Collection == "" {
		cfg.Collection = "documents"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Mongo{
		coll:       client.Database(cfg.Database).Collection(cfg.Collection),
		disconnect: client.Disconnect,
	}, nil
}

// Get retrieves a value. mongo.ErrNoDocuments is reported as a miss.
func (m *Mongo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc mongoDocument
	err := RetryWithBackoff(ctx, func() error {
		return classifyMongo(m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc))
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("mongo find %s: %w", key, err)
	}
	return doc.Data, true, nil
}

// Set upserts the document for key.
func (m *Mongo) Set(ctx context.Context, key string, data []byte) error {
	update := bson.M{"$set": bson.M{"data": data, "updated_at": time.Now().UTC()}}
	err := RetryWithBackoff(ctx, func() error {
		_, err := m.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
		return classifyMongo(err)
	})
	if err != nil {
		return fmt.Errorf("mongo upsert %s: %w", key, err)
	}
	return nil
}

// Delete removes the document for key.
func (m *Mongo) Delete(ctx context.Context, key string) error {
	err := RetryWithBackoff(ctx, func() error {
		_, err := m.coll.DeleteOne(ctx, bson.M{"_id": key})
		return classifyMongo(err)
	})
	if err != nil {
		return fmt.Errorf("mongo delete %s: %w", key, err)
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	if m.disconnect == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.disconnect(ctx)
}

// classifyMongo marks network and timeout failures as retryable.
func classifyMongo(err error) error {
	if err == nil || errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return Retryable(err)
	}
	return err
}

var _ Store = (*Mongo)(nil)
