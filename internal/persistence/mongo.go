package persistence

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/pdch/pdch-server/internal/config"
	"github.com/pdch/pdch-server/internal/domain"
)

// Mongo wraps a connected client and the application database.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// NewMongo connects to MongoDB and verifies the primary is reachable.
func NewMongo(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*Mongo, error) {
	if cfg.URI == "" {
		return nil, errors.New("MONGODB_URI is required for the mongo store")
	}

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to mongo", zap.String("database", cfg.Database))
	return &Mongo{Client: client, DB: client.Database(cfg.Database)}, nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) {
	if m != nil && m.Client != nil {
		_ = m.Client.Disconnect(ctx)
	}
}

// Ping verifies MongoDB connectivity.
func (m *Mongo) Ping(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return errors.New("mongo client not configured")
	}
	return m.Client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes builds the unique email indexes that keep concurrent
// registrations and submissions from producing duplicates. A collection that
// already contains duplicate emails is logged and skipped.
func (m *Mongo) EnsureIndexes(ctx context.Context, uniqueEmailCollections []string, logger *zap.Logger) error {
	collections := append([]string{domain.CollectionUsers}, uniqueEmailCollections...)
	for _, name := range collections {
		model := mongo.IndexModel{
			Keys: bson.D{{Key: domain.EmailField, Value: 1}},
			Options: options.Index().
				SetName("email_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{domain.EmailField: bson.M{"$type": "string"}}),
		}
		if _, err := m.DB.Collection(name).Indexes().CreateOne(ctx, model); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// Existing duplicate emails block the build; the service still
				// runs with the lookup-before-insert check alone.
				logger.Warn("unique email index not built; collection already holds duplicate emails",
					zap.String("collection", name), zap.Error(err))
				continue
			}
			return fmt.Errorf("create email index on %s: %w", name, err)
		}
		logger.Info("ensured unique email index", zap.String("collection", name))
	}
	return nil
}
