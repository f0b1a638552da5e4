package booking

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	bookingRepo "parkventure/database/repository/booking"
	"parkventure/models"
	"parkventure/utils"
)

// Booking-list windows for GetUserBookings.
const (
	WindowAll      = ""
	WindowUpcoming = "upcoming"
	WindowPast     = "past"
)

// CancelBooking cancels a pending or confirmed, unused booking and
// restores any tickets it actually held. Cancelling twice is a no-op.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.CancelBooking(ctx, bookingID, s.EagerInventory)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NewNotFoundError("booking %s not found", bookingID)
		}
		if errors.Is(err, bookingRepo.ErrBookingUsed) {
			return nil, utils.NewInvariantError("cannot cancel a booking whose ticket was already used")
		}
		return nil, err
	}
	s.Logger.Info("booking cancelled", zap.String("bookingId", bookingID))
	return b, nil
}

// MarkBookingAsUsed is the admission gate: it succeeds exactly once,
// and only for a confirmed, paid, not-yet-used ticket.
func (s *DefaultBookingService) MarkBookingAsUsed(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.MarkUsed(ctx, bookingID, time.Now())
	if err == nil {
		s.Logger.Info("ticket consumed",
			zap.String("bookingId", b.ID), zap.String("ticketCode", b.TicketCode))
		return b, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// The guarded update matched nothing; re-read to say why.
	current, err := s.Bookings.GetByID(ctx, bookingID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NewNotFoundError("booking %s not found", bookingID)
	}
	if err != nil {
		return nil, err
	}
	switch {
	case current.Used:
		return nil, utils.NewInvariantError("ticket %s was already used at %s",
			current.TicketCode, current.UsedAt.Format(time.RFC3339))
	case current.Status == models.BookingCancelled:
		return nil, utils.NewInvariantError("booking is cancelled")
	default:
		return nil, utils.NewInvariantError("booking is not paid; current status %q/%q",
			current.Status, current.PaymentStatus)
	}
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NewNotFoundError("booking %s not found", id)
	}
	return b, err
}

func (s *DefaultBookingService) GetAllBookings(ctx context.Context) ([]models.Booking, error) {
	return s.Bookings.GetAll(ctx)
}

// GetUserBookings lists a user's bookings, optionally filtered to
// upcoming or past relative to today at midnight.
func (s *DefaultBookingService) GetUserBookings(ctx context.Context, userID, window string) ([]models.Booking, error) {
	bookings, err := s.Bookings.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	switch window {
	case WindowAll:
		return bookings, nil
	case WindowUpcoming, WindowPast:
		return filterByWindow(bookings, window, utils.Today()), nil
	default:
		return nil, utils.NewValidationError("unknown window %q", window)
	}
}

func (s *DefaultBookingService) GetBookingsByPark(ctx context.Context, parkID string) ([]models.Booking, error) {
	return s.Bookings.GetByPark(ctx, parkID)
}

func (s *DefaultBookingService) GetBookingsByPaymentID(ctx context.Context, paymentID string) ([]models.Booking, error) {
	bookings, err := s.Bookings.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, utils.NewNotFoundError("no bookings for payment %s", paymentID)
	}
	return bookings, nil
}

func (s *DefaultBookingService) GetQRCode(ctx context.Context, bookingID string) (string, error) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return "", err
	}
	return b.QrCode, nil
}

func (s *DefaultBookingService) OverrideStatus(ctx context.Context, id string, update models.BookingStatusUpdate) (*models.Booking, error) {
	switch update.Status {
	case models.BookingPending, models.BookingConfirmed, models.BookingCancelled:
	default:
		return nil, utils.NewValidationError("unknown status %q", update.Status)
	}
	b, err := s.Bookings.UpdateStatus(ctx, id, update.Status, update.PaymentStatus)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NewNotFoundError("booking %s not found", id)
	}
	return b, err
}

func (s *DefaultBookingService) DeleteBooking(ctx context.Context, id string) error {
	err := s.Bookings.DeleteByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return utils.NewNotFoundError("booking %s not found", id)
	}
	return err
}

// filterByWindow splits on date relative to today; today's bookings
// count as upcoming.
func filterByWindow(bookings []models.Booking, window, today string) []models.Booking {
	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		upcoming := b.Date >= today
		if (window == WindowUpcoming) == upcoming {
			out = append(out, b)
		}
	}
	return out
}
