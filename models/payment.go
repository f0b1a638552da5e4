package models

// CheckoutSession describes an externally hosted gateway transaction.
// The ID doubles as the bookings' paymentId.
type CheckoutSession struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkout_url"`
}

// PaymentEvent is a verified, normalized gateway webhook event.
type PaymentEvent struct {
	ID            string // gateway event id, used for dedupe
	Type          string // e.g. "checkout.paid", "checkout.failed"
	PaymentID     string // checkout session id
	PaymentMethod string
	Currency      string
}

// Normalized webhook event types.
const (
	EventCheckoutPaid   = "checkout.paid"
	EventCheckoutFailed = "checkout.failed"
)

// Principal is the already-authenticated caller supplied by the
// identity middleware. The core never re-authenticates.
type Principal struct {
	ID     string `json:"id"`
	Role   string `json:"role"`
	ParkID string `json:"parkId,omitempty"`
}

// Roles recognized by the role gate.
const (
	RoleUser  = "user"
	RoleStaff = "staff"
	RoleOwner = "park-owner"
	RoleAdmin = "admin"
)
