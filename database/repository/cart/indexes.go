// FILE: database/repository/cart/indexes.go
package cartRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"parkventure/models"
)

// EnsureIndexes creates the necessary indexes on the carts collection.
// The partial unique index enforces at most one pending cart per user.
func (r *mongoCartRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_pending_per_user").
				SetPartialFilterExpression(bson.M{"status": models.CartPending}),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}
	return nil
}
