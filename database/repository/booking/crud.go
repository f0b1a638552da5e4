// File: database/repository/booking/crud.go
package bookingRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"parkventure/models"
)

func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	if err := r.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *mongoBookingRepo) GetAll(ctx context.Context) ([]models.Booking, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoBookingRepo) GetByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *mongoBookingRepo) GetByPark(ctx context.Context, parkID string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{"park": parkID})
}

func (r *mongoBookingRepo) GetByPaymentID(ctx context.Context, paymentID string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{"paymentId": paymentID})
}

func (r *mongoBookingRepo) find(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.bookingColl.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// MarkUsed flips the consumed flag, guarded so only a confirmed, unused
// ticket matches. Callers diagnose a zero match by re-reading.
func (r *mongoBookingRepo) MarkUsed(ctx context.Context, id string, usedAt time.Time) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":     id,
		"status": models.BookingConfirmed,
		"used":   false,
	}
	update := bson.M{"$set": bson.M{
		"used":   true,
		"usedAt": usedAt,
		"status": models.BookingConfirmed,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var b models.Booking
	if err := r.bookingColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateStatus is the admin override; it bypasses the state machine on
// purpose and must stay behind the admin role gate.
func (r *mongoBookingRepo) UpdateStatus(ctx context.Context, id string, status models.BookingStatus, paymentStatus models.PaymentStatus) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"status": status}
	if paymentStatus != "" {
		set["paymentStatus"] = paymentStatus
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var b models.Booking
	if err := r.bookingColl.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *mongoBookingRepo) DeleteByID(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.bookingColl.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
