package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	bookingRepo "parkventure/database/repository/booking"
	cartRepo "parkventure/database/repository/cart"
	timeslotRepo "parkventure/database/repository/timeslot"
	"parkventure/models"
	"parkventure/services/payment"
	"parkventure/utils"
)

// DefaultBookingService implements Service.
type DefaultBookingService struct {
	Carts    cartRepo.CartRepository
	Bookings bookingRepo.BookingRepository
	Slots    timeslotRepo.TimeSlotRepository
	Gateway  payment.Gateway
	Reaper   ExpiryScheduler
	// QREncode renders the ticket payload; injected so tests can stub
	// the image step.
	QREncode func(payload interface{}) (string, error)
	// EagerInventory decrements counters at checkout creation instead
	// of on payment confirmation.
	EagerInventory bool
	Currency       string
	SuccessURL     string
	CheckoutTTL    time.Duration
	Logger         *zap.Logger
}

// CreateCheckout converts the user's pending cart into pending
// bookings and an external payment session. The cart stays pending
// until the webhook settles it; under the default inventory policy the
// counters are only checked here, not decremented, so abandoned
// checkouts never hold tickets hostage.
func (s *DefaultBookingService) CreateCheckout(ctx context.Context, userID string) (*models.CheckoutSession, error) {
	cart, err := s.Carts.GetPending(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NewConflictError("cart is empty")
	}
	if err != nil {
		return nil, err
	}
	if len(cart.Bookings) == 0 {
		return nil, utils.NewConflictError("cart is empty")
	}

	instances, templates, err := s.loadSlots(ctx, cart)
	if err != nil {
		return nil, err
	}

	// Early availability pass so an obviously oversold cart fails with
	// a friendly message before the gateway is involved. Quantities are
	// summed per instance: two lines against the same slot compete for
	// the same tickets. The authoritative check runs inside the booking
	// transaction.
	demand := make(map[string]int)
	for _, item := range cart.Bookings {
		demand[item.TimeSlotInstance] += item.Quantity
	}
	for instanceID, qty := range demand {
		inst := instances[instanceID]
		if inst.AvailableTickets < qty {
			return nil, utils.NewConflictError("only %d tickets left for %s on %s",
				inst.AvailableTickets, instanceID, inst.Date)
		}
	}

	total := cart.Total()
	if total <= 0 {
		return nil, utils.NewValidationError("cart total must be positive")
	}
	amountMinor := int64(math.Round(total * 100))

	sess, err := s.Gateway.CreateCheckoutSession(ctx, amountMinor, s.Currency, s.SuccessURL, map[string]string{
		"userId": userID,
		"cartId": cart.ID,
	})
	if err != nil {
		return nil, utils.NewGatewayError(err, "payment gateway rejected checkout session")
	}

	bookings, err := s.buildBookings(cart, sess.ID, instances, templates)
	if err != nil {
		return nil, err
	}

	if err := s.Bookings.CreateCheckoutBookings(ctx, bookings, s.EagerInventory); err != nil {
		var insufficient *bookingRepo.InsufficientInventoryError
		if errors.As(err, &insufficient) {
			// The abandoned gateway session expires on its own.
			return nil, utils.NewConflictError("only %d tickets left for slot %s on %s",
				insufficient.Available, insufficient.InstanceID, insufficient.Date)
		}
		return nil, err
	}

	if s.Reaper != nil {
		if err := s.Reaper.ScheduleCheckoutExpiry(ctx, sess.ID, s.CheckoutTTL); err != nil {
			// The periodic sweep catches sessions whose task was lost.
			s.Logger.Warn("failed to schedule checkout expiry",
				zap.String("paymentId", sess.ID), zap.Error(err))
		}
	}

	s.Logger.Info("checkout created",
		zap.String("userId", userID),
		zap.String("paymentId", sess.ID),
		zap.Int("bookings", len(bookings)),
		zap.Float64("total", total),
	)
	return sess, nil
}

func (s *DefaultBookingService) loadSlots(ctx context.Context, cart *models.Cart) (map[string]models.TimeSlotInstance, map[string]models.TimeSlotTemplate, error) {
	instanceIDs := make([]string, 0, len(cart.Bookings))
	for _, item := range cart.Bookings {
		instanceIDs = append(instanceIDs, item.TimeSlotInstance)
	}
	instances, err := s.Slots.GetInstancesByIDs(ctx, instanceIDs)
	if err != nil {
		return nil, nil, err
	}

	templateIDs := make([]string, 0, len(instances))
	for _, item := range cart.Bookings {
		inst, ok := instances[item.TimeSlotInstance]
		if !ok {
			return nil, nil, utils.NewNotFoundError("time slot %s no longer exists", item.TimeSlotInstance)
		}
		templateIDs = append(templateIDs, inst.TemplateID)
	}
	templates, err := s.Slots.GetTemplatesByIDs(ctx, templateIDs)
	if err != nil {
		return nil, nil, err
	}
	return instances, templates, nil
}

func (s *DefaultBookingService) buildBookings(cart *models.Cart, paymentID string, instances map[string]models.TimeSlotInstance, templates map[string]models.TimeSlotTemplate) ([]models.Booking, error) {
	now := time.Now()
	bookings := make([]models.Booking, 0, len(cart.Bookings))
	for _, item := range cart.Bookings {
		inst := instances[item.TimeSlotInstance]
		tpl := templates[inst.TemplateID]

		code, err := utils.GenerateTicketCode()
		if err != nil {
			return nil, err
		}
		id := uuid.New().String()
		qr, err := s.QREncode(models.QRPayload{
			BookingID:  id,
			InstanceID: inst.ID,
			Quantity:   item.Quantity,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to render ticket QR: %w", err)
		}

		bookings = append(bookings, models.Booking{
			ID:               id,
			User:             cart.UserID,
			Park:             item.Park,
			Pricing:          item.Pricing,
			TimeSlotInstance: item.TimeSlotInstance,
			Quantity:         item.Quantity,
			TotalPrice:       item.TotalPrice,
			Date:             inst.Date,
			StartTime:        tpl.StartTime,
			EndTime:          tpl.EndTime,
			Status:           models.BookingPending,
			PaymentStatus:    models.PaymentPending,
			PaymentID:        paymentID,
			TicketCode:       code,
			QrCode:           qr,
			CreatedAt:        now,
		})
	}
	return bookings, nil
}
