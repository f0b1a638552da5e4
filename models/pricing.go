package models

// Pricing is a ticket tier for a park (e.g. adult, child, group). The
// stored price is the authority; client-supplied prices are ignored.
type Pricing struct {
	ID       string  `bson:"id" json:"id"`
	ParkID   string  `bson:"parkId" json:"parkId"`
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Category string  `bson:"category,omitempty" json:"category,omitempty"`
}
