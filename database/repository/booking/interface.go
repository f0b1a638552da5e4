// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"parkventure/database"
	"parkventure/models"
)

// SettleOptions drives how a gateway verdict is applied to the
// bookings sharing a paymentId.
type SettleOptions struct {
	Paid          bool
	PaymentMethod string
	Currency      string
	// DecrementInventory commits tickets on confirmation (the default
	// inventory policy).
	DecrementInventory bool
	// RestoreInventory hands tickets back on failure; only meaningful
	// when they were decremented eagerly at checkout.
	RestoreInventory bool
}

// SettleResult reports what a settlement actually did.
type SettleResult struct {
	Settled int
	// AlreadySettled is true when every matching booking had left the
	// pending state before this call (webhook replay).
	AlreadySettled bool
}

// BookingRepository is the durable ticket ledger. The three write paths
// that touch booking rows together with instance counters and cart
// status run as multi-document transactions.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetAll(ctx context.Context) ([]models.Booking, error)
	GetByUser(ctx context.Context, userID string) ([]models.Booking, error)
	GetByPark(ctx context.Context, parkID string) ([]models.Booking, error)
	GetByPaymentID(ctx context.Context, paymentID string) ([]models.Booking, error)
	ActiveInstanceIDs(ctx context.Context, instanceIDs []string) ([]string, error)
	StalePaymentIDs(ctx context.Context, olderThan time.Time) ([]string, error)

	MarkUsed(ctx context.Context, id string, usedAt time.Time) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus, paymentStatus models.PaymentStatus) (*models.Booking, error)
	DeleteByID(ctx context.Context, id string) error

	CreateCheckoutBookings(ctx context.Context, bookings []models.Booking, decrementNow bool) error
	SettlePayment(ctx context.Context, paymentID string, opts SettleOptions) (*SettleResult, error)
	CancelBooking(ctx context.Context, id string, eagerInventory bool) (*models.Booking, error)

	EnsureIndexes() error
}

type mongoBookingRepo struct {
	bookingColl  *mongo.Collection
	instanceColl *mongo.Collection
	cartColl     *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository.
func NewMongoBookingRepo() BookingRepository {
	db := database.DB()
	return &mongoBookingRepo{
		bookingColl:  db.Collection("Booking"),
		instanceColl: db.Collection("TimeSlotInstance"),
		cartColl:     db.Collection("Cart"),
	}
}
