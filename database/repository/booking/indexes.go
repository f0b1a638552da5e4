// FILE: database/repository/booking/indexes.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the bookings collection.
func (r *mongoBookingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "TicketCode", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_ticket_code"),
		},
		// Webhook settlement looks bookings up by session id.
		{
			Keys:    bson.D{{Key: "paymentId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("payment_status_idx"),
		},
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("user_date_idx"),
		},
		{
			Keys:    bson.D{{Key: "park", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("park_date_idx"),
		},
		{
			Keys:    bson.D{{Key: "timeSlotInstance", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("instance_status_idx"),
		},
	}

	if _, err := r.bookingColl.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
