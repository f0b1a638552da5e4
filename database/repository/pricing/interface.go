// File: database/repository/pricing/interface.go
package pricingRepo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"parkventure/database"
	"parkventure/models"
)

// PricingRepository is the read-only view of ticket tiers and parks the
// booking core consumes. Park/pricing management is owned elsewhere.
type PricingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Pricing, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Pricing, error)
	GetParkByID(ctx context.Context, id string) (*models.Park, error)
}

type mongoPricingRepo struct {
	pricingColl *mongo.Collection
	parkColl    *mongo.Collection
}

// NewMongoPricingRepo constructs a new MongoDB PricingRepository.
func NewMongoPricingRepo() PricingRepository {
	db := database.DB()
	return &mongoPricingRepo{
		pricingColl: db.Collection("Pricing"),
		parkColl:    db.Collection("Park"),
	}
}
