package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"parkventure/models"
	"parkventure/utils"
)

// StripeGateway implements Gateway on Stripe Checkout Sessions.
type StripeGateway struct {
	Logger *zap.Logger
}

func NewStripeGateway(logger *zap.Logger) *StripeGateway {
	return &StripeGateway{Logger: logger}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, amountMinor int64, currency, successURL string, metadata map[string]string) (*models.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(amountMinor),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Park tickets"),
					},
				},
			},
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session creation failed: %w", err)
	}

	g.Logger.Info("created checkout session",
		zap.String("sessionId", sess.ID),
		zap.Int64("amountMinor", amountMinor),
	)
	return &models.CheckoutSession{ID: sess.ID, CheckoutURL: sess.URL}, nil
}

// StripeWebhookVerifier recomputes the HMAC over the raw body with the
// shared endpoint secret and normalizes the event.
type StripeWebhookVerifier struct {
	Secret string
}

func NewStripeWebhookVerifier(secret string) *StripeWebhookVerifier {
	return &StripeWebhookVerifier{Secret: secret}
}

func (v *StripeWebhookVerifier) Verify(payload []byte, signatureHeader string) (*models.PaymentEvent, error) {
	// Accounts upgrade their API version independently of the SDK pin;
	// a version drift on a correctly signed event must not look like a
	// forgery.
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.Secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		if errors.Is(err, webhook.ErrNotSigned) ||
			errors.Is(err, webhook.ErrNoValidSignature) ||
			errors.Is(err, webhook.ErrInvalidHeader) ||
			errors.Is(err, webhook.ErrTooOld) {
			return nil, utils.NewForbiddenError("invalid webhook signature")
		}
		return nil, utils.NewValidationError("malformed webhook payload: %v", err)
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, utils.NewValidationError("malformed webhook payload: %v", err)
	}

	out := &models.PaymentEvent{
		ID:        event.ID,
		PaymentID: sess.ID,
		Currency:  string(sess.Currency),
	}
	if len(sess.PaymentMethodTypes) > 0 {
		out.PaymentMethod = string(sess.PaymentMethodTypes[0])
	}

	switch string(event.Type) {
	case "checkout.session.completed":
		out.Type = models.EventCheckoutPaid
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		out.Type = models.EventCheckoutFailed
	default:
		// Unknown event types pass through and are ignored downstream.
		out.Type = string(event.Type)
	}
	return out, nil
}
