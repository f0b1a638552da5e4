package payment

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	bookingRepo "parkventure/database/repository/booking"
	"parkventure/models"
)

// eventDedupeTTL bounds how long processed event ids are remembered.
// The pending-status guard inside the settlement transaction covers
// replays beyond this window.
const eventDedupeTTL = 24 * time.Hour

// EventDeduper remembers gateway event ids that settled successfully
// so clean replays can be skipped without touching the ledger.
type EventDeduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID string) error
}

// RedisEventDeduper implements EventDeduper on a shared Redis DB.
type RedisEventDeduper struct {
	Client *redis.Client
}

func dedupeKey(eventID string) string {
	return "webhook:event:" + eventID
}

func (d *RedisEventDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := d.Client.Exists(ctx, dedupeKey(eventID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *RedisEventDeduper) MarkProcessed(ctx context.Context, eventID string) error {
	return d.Client.Set(ctx, dedupeKey(eventID), 1, eventDedupeTTL).Err()
}

// Reconciler durably applies gateway webhook verdicts to the booking
// ledger. Safe to call concurrently and to replay: the same event
// settles at most once.
type Reconciler struct {
	Bookings bookingRepo.BookingRepository
	Verifier WebhookVerifier
	Dedupe   EventDeduper
	// EagerInventory mirrors the inventory policy: when true, tickets
	// were decremented at checkout and failure must hand them back;
	// when false, confirmation is where the decrement happens.
	EagerInventory bool
	Logger         *zap.Logger
}

// HandleEvent verifies, dedupes, and settles one raw webhook delivery.
// A returned error whose status maps to 403 means the signature failed
// and the gateway must not retry; other errors should surface as 5xx
// so the gateway redelivers.
func (r *Reconciler) HandleEvent(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := r.Verifier.Verify(payload, signatureHeader)
	if err != nil {
		return err
	}

	if event.Type != models.EventCheckoutPaid && event.Type != models.EventCheckoutFailed {
		r.Logger.Debug("ignoring webhook event", zap.String("type", event.Type))
		return nil
	}

	if r.Dedupe != nil {
		seen, err := r.Dedupe.Seen(ctx, event.ID)
		if err != nil {
			// Dedupe is an optimization; the settlement transaction is
			// still replay-safe without it.
			r.Logger.Warn("webhook dedupe unavailable", zap.Error(err))
		} else if seen {
			r.Logger.Info("duplicate webhook event skipped", zap.String("eventId", event.ID))
			return nil
		}
	}

	var settleErr error
	switch event.Type {
	case models.EventCheckoutPaid:
		settleErr = r.settlePaid(ctx, event)
	default:
		settleErr = r.settleFailed(ctx, event.PaymentID)
	}
	if settleErr != nil {
		// Leave the event unmarked so the gateway's redelivery gets
		// another shot at the ledger.
		return settleErr
	}

	if r.Dedupe != nil {
		if err := r.Dedupe.MarkProcessed(ctx, event.ID); err != nil {
			r.Logger.Warn("failed to record processed webhook event", zap.Error(err))
		}
	}
	return nil
}

func (r *Reconciler) settlePaid(ctx context.Context, event *models.PaymentEvent) error {
	res, err := r.Bookings.SettlePayment(ctx, event.PaymentID, bookingRepo.SettleOptions{
		Paid:               true,
		PaymentMethod:      event.PaymentMethod,
		Currency:           event.Currency,
		DecrementInventory: !r.EagerInventory,
	})
	if err != nil {
		var insufficient *bookingRepo.InsufficientInventoryError
		if errors.As(err, &insufficient) {
			// Paid but the slot filled up between checkout and
			// confirmation. Cancel the bookings; the payment needs a
			// refund follow-up.
			r.Logger.Error("paid checkout lost the inventory race, cancelling; refund required",
				zap.String("paymentId", event.PaymentID),
				zap.String("instanceId", insufficient.InstanceID),
				zap.String("date", insufficient.Date),
			)
			return r.settleFailed(ctx, event.PaymentID)
		}
		if errors.Is(err, mongo.ErrNoDocuments) {
			// A session whose booking insert never committed; nothing
			// to settle and nothing retriable.
			r.Logger.Warn("webhook for unknown payment id", zap.String("paymentId", event.PaymentID))
			return nil
		}
		return err
	}

	if res.AlreadySettled {
		r.Logger.Info("webhook replay ignored, bookings already settled",
			zap.String("paymentId", event.PaymentID))
		return nil
	}
	r.Logger.Info("checkout confirmed",
		zap.String("paymentId", event.PaymentID),
		zap.Int("bookings", res.Settled),
	)
	return nil
}

func (r *Reconciler) settleFailed(ctx context.Context, paymentID string) error {
	res, err := r.Bookings.SettlePayment(ctx, paymentID, bookingRepo.SettleOptions{
		Paid:             false,
		RestoreInventory: r.EagerInventory,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.Logger.Warn("webhook for unknown payment id", zap.String("paymentId", paymentID))
			return nil
		}
		return err
	}
	if !res.AlreadySettled {
		r.Logger.Info("checkout cancelled",
			zap.String("paymentId", paymentID),
			zap.Int("bookings", res.Settled),
		)
	}
	return nil
}
