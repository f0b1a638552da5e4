// File: database/repository/booking/transaction.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"parkventure/models"
)

// ErrBookingUsed is returned when a mutation targets a consumed ticket.
var ErrBookingUsed = errors.New("booking ticket already used")

// withTxn runs fn inside a session transaction, committing on success
// and aborting on any error.
func (r *mongoBookingRepo) withTxn(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := r.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

// reserveTickets atomically decrements an instance counter, guarded so
// it can never go negative. A zero match means the slot is oversold.
func (r *mongoBookingRepo) reserveTickets(sc mongo.SessionContext, instanceID string, qty int) error {
	filter := bson.M{"id": instanceID, "availableTickets": bson.M{"$gte": qty}}
	update := bson.M{"$inc": bson.M{"availableTickets": -qty}}

	res, err := r.instanceColl.UpdateOne(sc, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve tickets on instance %s: %w", instanceID, err)
	}
	if res.MatchedCount == 0 {
		var inst models.TimeSlotInstance
		_ = r.instanceColl.FindOne(sc, bson.M{"id": instanceID}).Decode(&inst)
		return &InsufficientInventoryError{
			InstanceID: instanceID,
			Date:       inst.Date,
			Requested:  qty,
			Available:  inst.AvailableTickets,
		}
	}
	return nil
}

// releaseTickets hands quantity back, clamped at the instance's ticket
// limit. The clamp absorbs both replayed releases and cancellations of
// bookings sold before an admin lowered the limit; those tickets were
// honored, so handing back fewer than qty is the correct outcome.
func (r *mongoBookingRepo) releaseTickets(sc mongo.SessionContext, instanceID string, qty int) error {
	res, err := r.instanceColl.UpdateOne(sc, bson.M{"id": instanceID}, releaseUpdate(qty))
	if err != nil {
		return fmt.Errorf("failed to release tickets on instance %s: %w", instanceID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("instance %s not found for ticket release", instanceID)
	}
	return nil
}

// releaseUpdate builds the clamped counter increment:
// availableTickets = min(ticketLimit, availableTickets + qty).
func releaseUpdate(qty int) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "availableTickets", Value: bson.D{
				{Key: "$min", Value: bson.A{
					"$ticketLimit",
					bson.D{{Key: "$add", Value: bson.A{"$availableTickets", qty}}},
				}},
			}},
		}}},
	}
}

// checkAvailability re-validates a counter without decrementing it,
// used when inventory is only committed on payment confirmation.
func (r *mongoBookingRepo) checkAvailability(sc mongo.SessionContext, instanceID string, qty int) error {
	var inst models.TimeSlotInstance
	if err := r.instanceColl.FindOne(sc, bson.M{"id": instanceID}).Decode(&inst); err != nil {
		return fmt.Errorf("time slot instance %s not found: %w", instanceID, err)
	}
	if inst.AvailableTickets < qty {
		return &InsufficientInventoryError{
			InstanceID: instanceID,
			Date:       inst.Date,
			Requested:  qty,
			Available:  inst.AvailableTickets,
		}
	}
	return nil
}

// CreateCheckoutBookings validates availability for every line and
// inserts the pending booking rows as one atomic unit. When
// decrementNow is set (eager inventory policy) the counters are
// decremented in the same transaction; otherwise they are only checked
// and the webhook settlement commits them later.
func (r *mongoBookingRepo) CreateCheckoutBookings(ctx context.Context, bookings []models.Booking, decrementNow bool) error {
	if len(bookings) == 0 {
		return errors.New("no bookings to create")
	}

	return r.withTxn(ctx, func(sc mongo.SessionContext) error {
		// Sum quantities per instance first so several lines against
		// the same slot are checked as one demand, not one at a time.
		need := make(map[string]int)
		order := make([]string, 0, len(bookings))
		for _, b := range bookings {
			if _, ok := need[b.TimeSlotInstance]; !ok {
				order = append(order, b.TimeSlotInstance)
			}
			need[b.TimeSlotInstance] += b.Quantity
		}
		for _, instanceID := range order {
			if decrementNow {
				if err := r.reserveTickets(sc, instanceID, need[instanceID]); err != nil {
					return err
				}
			} else {
				if err := r.checkAvailability(sc, instanceID, need[instanceID]); err != nil {
					return err
				}
			}
		}

		docs := make([]interface{}, len(bookings))
		for i, b := range bookings {
			docs[i] = b
		}
		if _, err := r.bookingColl.InsertMany(sc, docs); err != nil {
			return fmt.Errorf("insert bookings failed: %w", err)
		}
		return nil
	})
}

// SettlePayment applies a gateway verdict to every pending booking
// sharing the paymentId: bookings, instance counters, and the
// originating cart move together or not at all. Replays are no-ops
// because the pending-status filter matches nothing the second time.
func (r *mongoBookingRepo) SettlePayment(ctx context.Context, paymentID string, opts SettleOptions) (*SettleResult, error) {
	var result SettleResult

	err := r.withTxn(ctx, func(sc mongo.SessionContext) error {
		cursor, err := r.bookingColl.Find(sc, bson.M{
			"paymentId": paymentID,
			"status":    models.BookingPending,
		})
		if err != nil {
			return fmt.Errorf("failed to load bookings for payment %s: %w", paymentID, err)
		}
		var pending []models.Booking
		if err := cursor.All(sc, &pending); err != nil {
			return err
		}

		if len(pending) == 0 {
			n, err := r.bookingColl.CountDocuments(sc, bson.M{"paymentId": paymentID})
			if err != nil {
				return err
			}
			if n == 0 {
				return mongo.ErrNoDocuments
			}
			result.AlreadySettled = true
			return nil
		}

		set := bson.M{}
		cartStatus := models.CartCancelled
		if opts.Paid {
			if opts.DecrementInventory {
				for _, b := range pending {
					if err := r.reserveTickets(sc, b.TimeSlotInstance, b.Quantity); err != nil {
						return err
					}
				}
			}
			set["status"] = models.BookingConfirmed
			set["paymentStatus"] = models.PaymentPaid
			set["paymentMethod"] = opts.PaymentMethod
			set["currency"] = opts.Currency
			cartStatus = models.CartCompleted
		} else {
			if opts.RestoreInventory {
				for _, b := range pending {
					if err := r.releaseTickets(sc, b.TimeSlotInstance, b.Quantity); err != nil {
						return err
					}
				}
			}
			set["status"] = models.BookingCancelled
			set["paymentStatus"] = models.PaymentFailed
		}

		if _, err := r.bookingColl.UpdateMany(sc,
			bson.M{"paymentId": paymentID, "status": models.BookingPending},
			bson.M{"$set": set},
		); err != nil {
			return fmt.Errorf("failed to update bookings for payment %s: %w", paymentID, err)
		}

		users := make([]string, 0, len(pending))
		for _, b := range pending {
			users = append(users, b.User)
		}
		if _, err := r.cartColl.UpdateMany(sc,
			bson.M{"userId": bson.M{"$in": users}, "status": models.CartPending},
			bson.M{"$set": bson.M{"status": cartStatus, "updatedAt": time.Now()}},
		); err != nil {
			return fmt.Errorf("failed to update cart for payment %s: %w", paymentID, err)
		}

		result.Settled = len(pending)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelBooking sets a booking cancelled and restores its tickets when
// they were actually reserved (eager policy, or a confirmed booking).
// Cancelling an already-cancelled booking is a no-op.
func (r *mongoBookingRepo) CancelBooking(ctx context.Context, id string, eagerInventory bool) (*models.Booking, error) {
	var out models.Booking

	err := r.withTxn(ctx, func(sc mongo.SessionContext) error {
		var b models.Booking
		if err := r.bookingColl.FindOne(sc, bson.M{"id": id}).Decode(&b); err != nil {
			return err
		}
		if b.Used {
			return ErrBookingUsed
		}
		if b.Status == models.BookingCancelled {
			out = b
			return nil
		}

		restore := eagerInventory || b.Status == models.BookingConfirmed
		if restore {
			if err := r.releaseTickets(sc, b.TimeSlotInstance, b.Quantity); err != nil {
				return err
			}
		}

		res := r.bookingColl.FindOneAndUpdate(sc,
			bson.M{"id": id, "status": b.Status},
			bson.M{"$set": bson.M{"status": models.BookingCancelled}},
		)
		if err := res.Decode(&b); err != nil {
			return fmt.Errorf("cancel update failed for booking %s: %w", id, err)
		}
		b.Status = models.BookingCancelled
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
