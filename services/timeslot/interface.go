package timeslot

import (
	"context"

	"parkventure/models"
)

// Service manages recurring availability rules and their materialized
// instances.
type Service interface {
	CreateTemplate(ctx context.Context, parkID string, req models.CreateTemplateRequest) (*models.TimeSlotTemplate, error)
	UpdateTemplate(ctx context.Context, id string, req models.UpdateTemplateRequest) (*models.TimeSlotTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
	GetTemplate(ctx context.Context, id string) (*models.TimeSlotTemplate, error)
	CheckOverlap(ctx context.Context, q models.OverlapQuery) (bool, error)
	Availability(ctx context.Context, parkID, from, to string) ([]models.AvailabilityEntry, error)
}
