package payment

import (
	"context"

	"parkventure/models"
)

// Gateway is the outbound port to the hosted payment provider. Amounts
// are in minor units (cents).
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, amountMinor int64, currency, successURL string, metadata map[string]string) (*models.CheckoutSession, error)
}

// WebhookVerifier authenticates an inbound gateway callback against the
// raw request body and returns the normalized event. Verification is a
// hard security boundary; there is no skip path.
type WebhookVerifier interface {
	Verify(payload []byte, signatureHeader string) (*models.PaymentEvent, error)
}
