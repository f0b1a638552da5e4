package models

import "time"

// CartStatus tracks the checkout lifecycle of a cart.
type CartStatus string

const (
	CartPending   CartStatus = "pending"
	CartCompleted CartStatus = "completed"
	CartCancelled CartStatus = "cancelled"
)

// CartItem is one tentative booking line. Nothing is reserved by being
// in a cart; the hard availability check happens at checkout.
type CartItem struct {
	ID               string  `bson:"id" json:"id"`
	Park             string  `bson:"park" json:"park"`
	Pricing          string  `bson:"pricing" json:"pricing"`
	TimeSlotInstance string  `bson:"timeSlotInstance" json:"timeSlotInstance"`
	Quantity         int     `bson:"quantity" json:"quantity"`
	UnitPrice        float64 `bson:"unitPrice" json:"unitPrice"`
	TotalPrice       float64 `bson:"totalPrice" json:"totalPrice"`
	Date             string  `bson:"date" json:"date"`
}

// Cart is a per-user staging area. At most one pending cart exists per
// user, enforced by a partial unique index.
type Cart struct {
	ID        string     `bson:"id" json:"id"`
	UserID    string     `bson:"userId" json:"userId"`
	Status    CartStatus `bson:"status" json:"status"`
	Bookings  []CartItem `bson:"bookings" json:"bookings"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Total sums the line totals.
func (c *Cart) Total() float64 {
	var sum float64
	for _, item := range c.Bookings {
		sum += item.TotalPrice
	}
	return sum
}

// AddCartItemRequest is the payload for adding a line to the cart.
// Prices are deliberately absent: the server computes them.
type AddCartItemRequest struct {
	Park             string `json:"park" binding:"required"`
	Pricing          string `json:"pricing" binding:"required"`
	TimeSlotInstance string `json:"timeSlotInstance" binding:"required"`
	Quantity         int    `json:"quantity" binding:"required"`
}

// SyncCartRequest replaces the server cart's lines with a client-held
// set, e.g. one built before the user signed in.
type SyncCartRequest struct {
	Items []AddCartItemRequest `json:"items" binding:"required"`
}

// UpdateCartItemRequest changes a line's quantity.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// RemoveCartItemsRequest names the line items to drop.
type RemoveCartItemsRequest struct {
	ItemIDs []string `json:"itemIds" binding:"required"`
}
