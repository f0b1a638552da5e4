// File: database/repository/timeslot/instances.go
package timeslotRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"parkventure/models"
)

// EnsureInstances upserts one instance per date. Existing instances are
// left untouched so re-running materialization never resets a counter
// that already has reservations against it. Returns the number of
// instances actually created.
func (r *mongoTimeSlotRepo) EnsureInstances(ctx context.Context, tpl *models.TimeSlotTemplate, dates []string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	created := 0
	for _, date := range dates {
		filter := bson.M{"templateId": tpl.ID, "date": date}
		update := bson.M{"$setOnInsert": models.TimeSlotInstance{
			ID:               uuid.New().String(),
			TemplateID:       tpl.ID,
			Date:             date,
			TicketLimit:      tpl.TicketLimit,
			AvailableTickets: tpl.TicketLimit,
		}}
		res, err := r.instanceColl.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err != nil {
			// A concurrent materialization can race the upsert into the
			// unique index; treat that as "already exists".
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return created, fmt.Errorf("failed to materialize instance %s/%s: %w", tpl.ID, date, err)
		}
		if res.UpsertedCount > 0 {
			created++
		}
	}
	return created, nil
}

func (r *mongoTimeSlotRepo) GetInstanceByID(ctx context.Context, id string) (*models.TimeSlotInstance, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var inst models.TimeSlotInstance
	if err := r.instanceColl.FindOne(ctx, bson.M{"id": id}).Decode(&inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *mongoTimeSlotRepo) GetInstancesByIDs(ctx context.Context, ids []string) (map[string]models.TimeSlotInstance, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.instanceColl.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var instances []models.TimeSlotInstance
	if err := cursor.All(ctx, &instances); err != nil {
		return nil, err
	}
	out := make(map[string]models.TimeSlotInstance, len(instances))
	for _, inst := range instances {
		out[inst.ID] = inst
	}
	return out, nil
}

func (r *mongoTimeSlotRepo) GetInstancesForTemplates(ctx context.Context, templateIDs []string, from, to string) ([]models.TimeSlotInstance, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	dateFilter := bson.M{"$gte": from}
	if to != "" {
		dateFilter["$lte"] = to
	}
	filter := bson.M{
		"templateId": bson.M{"$in": templateIDs},
		"date":       dateFilter,
	}
	cursor, err := r.instanceColl.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var instances []models.TimeSlotInstance
	if err := cursor.All(ctx, &instances); err != nil {
		return nil, err
	}
	return instances, nil
}

// DeleteFutureInstances removes a template's instances on or after
// fromDate, except those whose ids are listed in keepIDs (instances
// still referenced by active bookings must survive).
func (r *mongoTimeSlotRepo) DeleteFutureInstances(ctx context.Context, templateID, fromDate string, keepIDs []string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"templateId": templateID,
		"date":       bson.M{"$gte": fromDate},
	}
	if len(keepIDs) > 0 {
		filter["id"] = bson.M{"$nin": keepIDs}
	}
	res, err := r.instanceColl.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete future instances of template %s: %w", templateID, err)
	}
	return res.DeletedCount, nil
}

// ApplyTicketLimitChange moves future instances of a template to a new
// ticket limit. The available counter shifts by the same delta but is
// clamped to [0, newLimit]; tickets already reserved are never clawed
// back below zero availability.
func (r *mongoTimeSlotRepo) ApplyTicketLimitChange(ctx context.Context, templateID, fromDate string, newLimit int) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"templateId": templateID,
		"date":       bson.M{"$gte": fromDate},
	}
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "availableTickets", Value: bson.D{
				{Key: "$max", Value: bson.A{
					0,
					bson.D{{Key: "$min", Value: bson.A{
						newLimit,
						bson.D{{Key: "$add", Value: bson.A{
							"$availableTickets",
							bson.D{{Key: "$subtract", Value: bson.A{newLimit, "$ticketLimit"}}},
						}}},
					}}},
				}},
			}},
			{Key: "ticketLimit", Value: newLimit},
		}}},
	}
	if _, err := r.instanceColl.UpdateMany(ctx, filter, pipeline); err != nil {
		return fmt.Errorf("failed to apply ticket limit change for template %s: %w", templateID, err)
	}
	return nil
}
