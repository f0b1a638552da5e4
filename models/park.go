package models

// Park is the minimal park projection the booking core needs. Full park
// content management lives outside this service.
type Park struct {
	ID      string `bson:"id" json:"id"`
	Name    string `bson:"name" json:"name"`
	OwnerID string `bson:"ownerId" json:"ownerId"`
}
