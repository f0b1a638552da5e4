// File: database/repository/cart/cart.go
package cartRepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"parkventure/models"
)

func pendingFilter(userID string) bson.M {
	return bson.M{"userId": userID, "status": models.CartPending}
}

// GetOrCreatePending returns the user's pending cart, creating an empty
// one if none exists. The partial unique index makes the upsert safe
// under concurrent first-add requests.
func (r *mongoCartRepo) GetOrCreatePending(ctx context.Context, userID string) (*models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	update := bson.M{
		"$setOnInsert": bson.M{
			"id":        uuid.New().String(),
			"userId":    userID,
			"status":    models.CartPending,
			"bookings":  []models.CartItem{},
			"createdAt": now,
		},
		"$set": bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var cart models.Cart
	if err := r.coll.FindOneAndUpdate(ctx, pendingFilter(userID), update, opts).Decode(&cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *mongoCartRepo) GetPending(ctx context.Context, userID string) (*models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cart models.Cart
	if err := r.coll.FindOne(ctx, pendingFilter(userID)).Decode(&cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *mongoCartRepo) AddItem(ctx context.Context, userID string, item models.CartItem) (*models.Cart, error) {
	if _, err := r.GetOrCreatePending(ctx, userID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"bookings": item},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var cart models.Cart
	if err := r.coll.FindOneAndUpdate(ctx, pendingFilter(userID), update, opts).Decode(&cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *mongoCartRepo) UpdateItem(ctx context.Context, userID string, item models.CartItem) (*models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := pendingFilter(userID)
	filter["bookings.id"] = item.ID
	update := bson.M{
		"$set": bson.M{
			"bookings.$.quantity":   item.Quantity,
			"bookings.$.unitPrice":  item.UnitPrice,
			"bookings.$.totalPrice": item.TotalPrice,
			"updatedAt":             time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var cart models.Cart
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveItems drops the named line items. Removing the last item keeps
// the (now empty) cart document itself.
func (r *mongoCartRepo) RemoveItems(ctx context.Context, userID string, itemIDs []string) (*models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$pull": bson.M{"bookings": bson.M{"id": bson.M{"$in": itemIDs}}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var cart models.Cart
	if err := r.coll.FindOneAndUpdate(ctx, pendingFilter(userID), update, opts).Decode(&cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *mongoCartRepo) ClearItems(ctx context.Context, userID string) (*models.Cart, error) {
	return r.ReplaceItems(ctx, userID, []models.CartItem{})
}

// ReplaceItems swaps the cart's entire line set; used by client-cart
// sync where the server recomputes all prices.
func (r *mongoCartRepo) ReplaceItems(ctx context.Context, userID string, items []models.CartItem) (*models.Cart, error) {
	if _, err := r.GetOrCreatePending(ctx, userID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"bookings":  items,
			"updatedAt": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var cart models.Cart
	if err := r.coll.FindOneAndUpdate(ctx, pendingFilter(userID), update, opts).Decode(&cart); err != nil {
		return nil, err
	}
	return &cart, nil
}
