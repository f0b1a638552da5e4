package booking

import (
	"context"
	"time"

	"parkventure/models"
)

// Service is the booking ledger and checkout orchestrator.
type Service interface {
	CreateCheckout(ctx context.Context, userID string) (*models.CheckoutSession, error)

	CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	MarkBookingAsUsed(ctx context.Context, bookingID string) (*models.Booking, error)

	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetAllBookings(ctx context.Context) ([]models.Booking, error)
	GetUserBookings(ctx context.Context, userID, window string) ([]models.Booking, error)
	GetBookingsByPark(ctx context.Context, parkID string) ([]models.Booking, error)
	GetBookingsByPaymentID(ctx context.Context, paymentID string) ([]models.Booking, error)
	GetQRCode(ctx context.Context, bookingID string) (string, error)

	OverrideStatus(ctx context.Context, id string, update models.BookingStatusUpdate) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// ExpiryScheduler is the outbound port to the delayed-task queue that
// reaps abandoned checkout sessions.
type ExpiryScheduler interface {
	ScheduleCheckoutExpiry(ctx context.Context, paymentID string, delay time.Duration) error
}
