package models

// TimeSlotTemplate is a recurring weekly availability rule for a park.
// Concrete bookable dates are materialized from it as TimeSlotInstance
// documents; the template itself carries no live inventory.
type TimeSlotTemplate struct {
	ID              string   `bson:"id" json:"id"`
	ParkID          string   `bson:"parkId" json:"parkId"`
	PricingIDs      []string `bson:"pricingIds" json:"pricingIds"`
	StartTime       string   `bson:"startTime" json:"startTime"` // "HH:MM"
	EndTime         string   `bson:"endTime" json:"endTime"`     // "HH:MM"
	DaysOfWeek      []int    `bson:"daysOfWeek" json:"daysOfWeek"` // 0 = Sunday .. 6 = Saturday
	TicketLimit     int      `bson:"ticketLimit" json:"ticketLimit"`
	PriceAdjustment float64  `bson:"priceAdjustment" json:"priceAdjustment"` // added to each pricing tier's unit price
	ValidFrom       string   `bson:"validFrom" json:"validFrom"`             // "YYYY-MM-DD"
	ValidUntil      string   `bson:"validUntil,omitempty" json:"validUntil,omitempty"`
}

// TimeSlotInstance is one bookable date derived from a template. Its
// availableTickets counter is the unit of inventory and is only ever
// mutated through guarded atomic updates.
type TimeSlotInstance struct {
	ID               string `bson:"id" json:"id"`
	TemplateID       string `bson:"templateId" json:"templateId"`
	Date             string `bson:"date" json:"date"` // "YYYY-MM-DD"
	TicketLimit      int    `bson:"ticketLimit" json:"ticketLimit"`
	AvailableTickets int    `bson:"availableTickets" json:"availableTickets"`
}

// OverlapQuery describes a candidate recurring rule checked against
// existing templates before creation.
type OverlapQuery struct {
	ParkID     string   `json:"parkId" binding:"required"`
	ValidFrom  string   `json:"validFrom" binding:"required"`
	ValidUntil string   `json:"validUntil"`
	StartTime  string   `json:"startTime" binding:"required"`
	EndTime    string   `json:"endTime" binding:"required"`
	DaysOfWeek []int    `json:"daysOfWeek" binding:"required"`
	PricingIDs []string `json:"pricingIds"`
}

// CreateTemplateRequest is the payload for creating a recurring rule.
type CreateTemplateRequest struct {
	PricingIDs      []string `json:"pricingIds" binding:"required"`
	StartTime       string   `json:"startTime" binding:"required"`
	EndTime         string   `json:"endTime" binding:"required"`
	DaysOfWeek      []int    `json:"daysOfWeek" binding:"required"`
	TicketLimit     int      `json:"ticketLimit" binding:"required"`
	PriceAdjustment float64  `json:"priceAdjustment"`
	ValidFrom       string   `json:"validFrom" binding:"required"`
	ValidUntil      string   `json:"validUntil"`
}

// UpdateTemplateRequest carries the mutable template fields. Identity
// fields (park, days, times) are fixed at creation.
type UpdateTemplateRequest struct {
	TicketLimit     *int     `json:"ticketLimit,omitempty"`
	PriceAdjustment *float64 `json:"priceAdjustment,omitempty"`
	ValidUntil      *string  `json:"validUntil,omitempty"`
	PricingIDs      []string `json:"pricingIds,omitempty"`
}

// AvailabilityEntry is one bookable slot returned to clients.
type AvailabilityEntry struct {
	InstanceID       string   `json:"instanceId"`
	TemplateID       string   `json:"templateId"`
	Date             string   `json:"date"`
	StartTime        string   `json:"startTime"`
	EndTime          string   `json:"endTime"`
	AvailableTickets int      `json:"availableTickets"`
	TicketLimit      int      `json:"ticketLimit"`
	PricingIDs       []string `json:"pricingIds"`
	PriceAdjustment  float64  `json:"priceAdjustment"`
}
