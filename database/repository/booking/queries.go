// File: database/repository/booking/queries.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"parkventure/models"
)

// ActiveInstanceIDs returns the subset of the given instance ids that
// still have non-cancelled bookings against them. Template deletion
// uses this to refuse orphaning live reservations.
func (r *mongoBookingRepo) ActiveInstanceIDs(ctx context.Context, instanceIDs []string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"timeSlotInstance": bson.M{"$in": instanceIDs},
		"status":           bson.M{"$ne": models.BookingCancelled},
	}
	raw, err := r.bookingColl.Distinct(ctx, "timeSlotInstance", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query active instance ids: %w", err)
	}

	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

// StalePaymentIDs lists checkout sessions whose bookings are still
// pending/pending past the given age; the expiry sweep cancels them.
func (r *mongoBookingRepo) StalePaymentIDs(ctx context.Context, olderThan time.Time) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status":        models.BookingPending,
		"paymentStatus": models.PaymentPending,
		"createdAt":     bson.M{"$lt": olderThan},
	}
	raw, err := r.bookingColl.Distinct(ctx, "paymentId", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale payment ids: %w", err)
	}

	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			ids = append(ids, s)
		}
	}
	return ids, nil
}
