// File: database/repository/timeslot/interface.go
package timeslotRepo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"parkventure/database"
	"parkventure/models"
)

// TimeSlotRepository persists recurring templates and their materialized
// instances. Counter mutations that must be atomic with booking writes
// live in the booking repository's transactions, not here.
type TimeSlotRepository interface {
	CreateTemplate(ctx context.Context, tpl *models.TimeSlotTemplate) error
	GetTemplateByID(ctx context.Context, id string) (*models.TimeSlotTemplate, error)
	GetTemplatesByPark(ctx context.Context, parkID string) ([]models.TimeSlotTemplate, error)
	GetTemplatesByIDs(ctx context.Context, ids []string) (map[string]models.TimeSlotTemplate, error)
	UpdateTemplate(ctx context.Context, tpl *models.TimeSlotTemplate) error
	DeleteTemplate(ctx context.Context, id string) error

	EnsureInstances(ctx context.Context, tpl *models.TimeSlotTemplate, dates []string) (int, error)
	GetInstanceByID(ctx context.Context, id string) (*models.TimeSlotInstance, error)
	GetInstancesByIDs(ctx context.Context, ids []string) (map[string]models.TimeSlotInstance, error)
	GetInstancesForTemplates(ctx context.Context, templateIDs []string, from, to string) ([]models.TimeSlotInstance, error)
	DeleteFutureInstances(ctx context.Context, templateID, fromDate string, keepIDs []string) (int64, error)
	ApplyTicketLimitChange(ctx context.Context, templateID, fromDate string, newLimit int) error

	EnsureIndexes() error
}

type mongoTimeSlotRepo struct {
	templateColl *mongo.Collection
	instanceColl *mongo.Collection
}

// NewMongoTimeSlotRepo constructs a new MongoDB TimeSlotRepository.
func NewMongoTimeSlotRepo() TimeSlotRepository {
	db := database.DB()
	return &mongoTimeSlotRepo{
		templateColl: db.Collection("TimeSlotTemplate"),
		instanceColl: db.Collection("TimeSlotInstance"),
	}
}
