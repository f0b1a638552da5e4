// File: database/repository/timeslot/templates.go
package timeslotRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"parkventure/models"
)

func (r *mongoTimeSlotRepo) CreateTemplate(ctx context.Context, tpl *models.TimeSlotTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if tpl.ID == "" {
		tpl.ID = uuid.New().String()
	}
	if _, err := r.templateColl.InsertOne(ctx, tpl); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("duplicate recurring rule for park %s: %w", tpl.ParkID, err)
		}
		return fmt.Errorf("failed to insert template: %w", err)
	}
	return nil
}

func (r *mongoTimeSlotRepo) GetTemplateByID(ctx context.Context, id string) (*models.TimeSlotTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var tpl models.TimeSlotTemplate
	if err := r.templateColl.FindOne(ctx, bson.M{"id": id}).Decode(&tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *mongoTimeSlotRepo) GetTemplatesByPark(ctx context.Context, parkID string) ([]models.TimeSlotTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.templateColl.Find(ctx, bson.M{"parkId": parkID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []models.TimeSlotTemplate
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *mongoTimeSlotRepo) GetTemplatesByIDs(ctx context.Context, ids []string) (map[string]models.TimeSlotTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.templateColl.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make(map[string]models.TimeSlotTemplate, len(ids))
	var templates []models.TimeSlotTemplate
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	for _, tpl := range templates {
		out[tpl.ID] = tpl
	}
	return out, nil
}

func (r *mongoTimeSlotRepo) UpdateTemplate(ctx context.Context, tpl *models.TimeSlotTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"pricingIds":      tpl.PricingIDs,
		"ticketLimit":     tpl.TicketLimit,
		"priceAdjustment": tpl.PriceAdjustment,
		"validUntil":      tpl.ValidUntil,
	}}
	res, err := r.templateColl.UpdateOne(ctx, bson.M{"id": tpl.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update template %s: %w", tpl.ID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoTimeSlotRepo) DeleteTemplate(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.templateColl.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
