// File: database/repository/cart/interface.go
package cartRepo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"parkventure/database"
	"parkventure/models"
)

// CartRepository persists per-user pending carts. Status flips that
// must be atomic with booking settlement happen inside the booking
// repository's transactions.
type CartRepository interface {
	GetOrCreatePending(ctx context.Context, userID string) (*models.Cart, error)
	GetPending(ctx context.Context, userID string) (*models.Cart, error)
	AddItem(ctx context.Context, userID string, item models.CartItem) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID string, item models.CartItem) (*models.Cart, error)
	RemoveItems(ctx context.Context, userID string, itemIDs []string) (*models.Cart, error)
	ClearItems(ctx context.Context, userID string) (*models.Cart, error)
	ReplaceItems(ctx context.Context, userID string, items []models.CartItem) (*models.Cart, error)
	EnsureIndexes() error
}

type mongoCartRepo struct {
	coll *mongo.Collection
}

// NewMongoCartRepo constructs a new MongoDB CartRepository.
func NewMongoCartRepo() CartRepository {
	return &mongoCartRepo{coll: database.DB().Collection("Cart")}
}
