package cart

import (
	"context"

	"parkventure/models"
)

// Service manages the per-user staging cart. Nothing here reserves
// tickets; the checkout orchestrator owns the hard availability check.
type Service interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	AddToCart(ctx context.Context, userID string, req models.AddCartItemRequest) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*models.Cart, error)
	RemoveItems(ctx context.Context, userID string, itemIDs []string) (*models.Cart, error)
	ClearCart(ctx context.Context, userID string) (*models.Cart, error)
	SyncCart(ctx context.Context, userID string, items []models.AddCartItemRequest) (*models.Cart, error)
}
