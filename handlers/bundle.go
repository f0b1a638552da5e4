package handlers

// HandlerBundle aggregates the HTTP handlers so route registration
// takes a single argument.
type HandlerBundle struct {
	Bookings  *BookingHandler
	Carts     *CartHandler
	Payments  *PaymentHandler
	TimeSlots *TimeSlotHandler
}
