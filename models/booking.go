package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// PaymentStatus tracks the gateway verdict for a booking.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Booking is one ledger row: quantity tickets reserved against a single
// time-slot instance. TicketCode and QrCode are generated once at
// creation and never change.
type Booking struct {
	ID               string        `bson:"id" json:"id"`
	User             string        `bson:"user" json:"user"`
	Park             string        `bson:"park" json:"park"`
	Pricing          string        `bson:"pricing" json:"pricing"`
	TimeSlotInstance string        `bson:"timeSlotInstance" json:"timeSlotInstance"`
	Quantity         int           `bson:"quantity" json:"quantity"`
	TotalPrice       float64       `bson:"totalPrice" json:"totalPrice"`
	Date             string        `bson:"date" json:"date"` // "YYYY-MM-DD"
	StartTime        string        `bson:"startTime" json:"startTime"`
	EndTime          string        `bson:"endTime" json:"endTime"`
	Status           BookingStatus `bson:"status" json:"status"`
	PaymentStatus    PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	PaymentID        string        `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	PaymentMethod    string        `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	Currency         string        `bson:"currency,omitempty" json:"currency,omitempty"`
	TicketCode       string        `bson:"TicketCode" json:"TicketCode"`
	QrCode           string        `bson:"QrCode" json:"QrCode"` // base64 PNG data URL
	Used             bool          `bson:"used" json:"used"`
	UsedAt           *time.Time    `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
	CreatedAt        time.Time     `bson:"createdAt" json:"createdAt"`
}

// Active reports whether the booking still holds (or may come to hold)
// tickets: anything not cancelled.
func (b *Booking) Active() bool {
	return b.Status != BookingCancelled
}

// QRPayload is the JSON document encoded into a booking's QR image.
type QRPayload struct {
	BookingID  string `json:"bookingId"`
	InstanceID string `json:"instanceId"`
	Quantity   int    `json:"quantity"`
}

// BookingStatusUpdate is the admin payload for overriding statuses.
type BookingStatusUpdate struct {
	Status        BookingStatus `json:"status" binding:"required"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}
