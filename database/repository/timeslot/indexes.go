// FILE: database/repository/timeslot/indexes.go
package timeslotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the template and
// instance collections.
func (r *mongoTimeSlotRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	templateModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Guards against duplicate recurring rules for the same park.
		{
			Keys: bson.D{
				{Key: "parkId", Value: 1},
				{Key: "daysOfWeek", Value: 1},
				{Key: "startTime", Value: 1},
				{Key: "endTime", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("unique_park_rule"),
		},
		{
			Keys:    bson.D{{Key: "parkId", Value: 1}},
			Options: options.Index().SetName("park_idx"),
		},
	}
	if _, err := r.templateColl.Indexes().CreateMany(ctx, templateModels); err != nil {
		return fmt.Errorf("failed to create template indexes: %w", err)
	}

	instanceModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// One instance per (template, date); materialization upserts
		// race against this.
		{
			Keys:    bson.D{{Key: "templateId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_template_date"),
		},
	}
	if _, err := r.instanceColl.Indexes().CreateMany(ctx, instanceModels); err != nil {
		return fmt.Errorf("failed to create instance indexes: %w", err)
	}
	return nil
}
