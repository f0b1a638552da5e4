// File: database/repository/pricing/pricing.go
package pricingRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"parkventure/models"
)

func (r *mongoPricingRepo) GetByID(ctx context.Context, id string) (*models.Pricing, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var pricing models.Pricing
	if err := r.pricingColl.FindOne(ctx, bson.M{"id": id}).Decode(&pricing); err != nil {
		return nil, err
	}
	return &pricing, nil
}

func (r *mongoPricingRepo) GetByIDs(ctx context.Context, ids []string) (map[string]models.Pricing, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.pricingColl.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tiers []models.Pricing
	if err := cursor.All(ctx, &tiers); err != nil {
		return nil, err
	}
	out := make(map[string]models.Pricing, len(tiers))
	for _, tier := range tiers {
		out[tier.ID] = tier
	}
	return out, nil
}

func (r *mongoPricingRepo) GetParkByID(ctx context.Context, id string) (*models.Park, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var park models.Park
	if err := r.parkColl.FindOne(ctx, bson.M{"id": id}).Decode(&park); err != nil {
		return nil, err
	}
	return &park, nil
}
