package timeslot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	bookingRepo "parkventure/database/repository/booking"
	timeslotRepo "parkventure/database/repository/timeslot"
	"parkventure/models"
	"parkventure/utils"
)

const availabilityCacheTTL = 30 * time.Second

// DefaultService implements Service on the Mongo repositories.
type DefaultService struct {
	Repo        timeslotRepo.TimeSlotRepository
	Bookings    bookingRepo.BookingRepository
	Cache       *redis.Client
	HorizonDays int
	Logger      *zap.Logger
}

func (s *DefaultService) CreateTemplate(ctx context.Context, parkID string, req models.CreateTemplateRequest) (*models.TimeSlotTemplate, error) {
	tpl := &models.TimeSlotTemplate{
		ParkID:          parkID,
		PricingIDs:      req.PricingIDs,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DaysOfWeek:      req.DaysOfWeek,
		TicketLimit:     req.TicketLimit,
		PriceAdjustment: req.PriceAdjustment,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
	}
	if err := validateTemplate(tpl); err != nil {
		return nil, err
	}

	overlaps, err := s.CheckOverlap(ctx, models.OverlapQuery{
		ParkID:     parkID,
		ValidFrom:  tpl.ValidFrom,
		ValidUntil: tpl.ValidUntil,
		StartTime:  tpl.StartTime,
		EndTime:    tpl.EndTime,
		DaysOfWeek: tpl.DaysOfWeek,
		PricingIDs: tpl.PricingIDs,
	})
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, utils.NewConflictError("an overlapping recurring rule already exists for this park")
	}

	if err := s.Repo.CreateTemplate(ctx, tpl); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, utils.NewConflictError("an identical recurring rule already exists for this park")
		}
		return nil, err
	}

	if _, err := s.materialize(ctx, tpl); err != nil {
		s.Logger.Error("instance materialization failed after template create",
			zap.String("templateId", tpl.ID), zap.Error(err))
	}
	return tpl, nil
}

func (s *DefaultService) GetTemplate(ctx context.Context, id string) (*models.TimeSlotTemplate, error) {
	tpl, err := s.Repo.GetTemplateByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NewNotFoundError("template %s not found", id)
	}
	return tpl, err
}

func (s *DefaultService) UpdateTemplate(ctx context.Context, id string, req models.UpdateTemplateRequest) (*models.TimeSlotTemplate, error) {
	tpl, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	limitChanged := false
	if req.TicketLimit != nil && *req.TicketLimit != tpl.TicketLimit {
		if *req.TicketLimit < 1 {
			return nil, utils.NewValidationError("ticketLimit must be at least 1")
		}
		tpl.TicketLimit = *req.TicketLimit
		limitChanged = true
	}
	if req.PriceAdjustment != nil {
		tpl.PriceAdjustment = *req.PriceAdjustment
	}
	if len(req.PricingIDs) > 0 {
		tpl.PricingIDs = req.PricingIDs
	}
	oldUntil := tpl.ValidUntil
	if req.ValidUntil != nil {
		if *req.ValidUntil != "" {
			if _, err := utils.ParseDate(*req.ValidUntil); err != nil {
				return nil, utils.NewValidationError("%v", err)
			}
			if *req.ValidUntil < tpl.ValidFrom {
				return nil, utils.NewValidationError("validUntil precedes validFrom")
			}
		}
		tpl.ValidUntil = *req.ValidUntil
	}

	if err := s.Repo.UpdateTemplate(ctx, tpl); err != nil {
		return nil, err
	}

	today := utils.Today()
	if limitChanged {
		// Future counters shift by the limit delta, clamped so tickets
		// already reserved are never clawed back.
		if err := s.Repo.ApplyTicketLimitChange(ctx, tpl.ID, today, tpl.TicketLimit); err != nil {
			return nil, err
		}
	}

	if req.ValidUntil != nil && tpl.ValidUntil != oldUntil {
		if tpl.ValidUntil == "" || oldUntil == "" || tpl.ValidUntil > oldUntil {
			if _, err := s.materialize(ctx, tpl); err != nil {
				s.Logger.Error("materialization after window extension failed",
					zap.String("templateId", tpl.ID), zap.Error(err))
			}
		}
		if tpl.ValidUntil != "" && (oldUntil == "" || tpl.ValidUntil < oldUntil) {
			if err := s.pruneAfter(ctx, tpl.ID, tpl.ValidUntil); err != nil {
				return nil, err
			}
		}
	}
	return tpl, nil
}

// DeleteTemplate refuses to delete a rule with future active bookings;
// cascading cancellation is a manual, per-booking operation.
func (s *DefaultService) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := s.GetTemplate(ctx, id); err != nil {
		return err
	}

	today := utils.Today()
	future, err := s.Repo.GetInstancesForTemplates(ctx, []string{id}, today, "")
	if err != nil {
		return err
	}
	if len(future) > 0 {
		ids := make([]string, len(future))
		for i, inst := range future {
			ids[i] = inst.ID
		}
		active, err := s.Bookings.ActiveInstanceIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return utils.NewConflictError("template has %d future slots with active bookings; cancel them first", len(active))
		}
	}

	if _, err := s.Repo.DeleteFutureInstances(ctx, id, today, nil); err != nil {
		return err
	}
	if err := s.Repo.DeleteTemplate(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.NewNotFoundError("template %s not found", id)
		}
		return err
	}
	return nil
}

func (s *DefaultService) CheckOverlap(ctx context.Context, q models.OverlapQuery) (bool, error) {
	candidate := rule{
		validFrom:  q.ValidFrom,
		validUntil: q.ValidUntil,
		days:       q.DaysOfWeek,
		pricingIDs: q.PricingIDs,
	}
	var err error
	if candidate.startMin, err = utils.ParseClockMinutes(q.StartTime); err != nil {
		return false, utils.NewValidationError("%v", err)
	}
	if candidate.endMin, err = utils.ParseClockMinutes(q.EndTime); err != nil {
		return false, utils.NewValidationError("%v", err)
	}

	existing, err := s.Repo.GetTemplatesByPark(ctx, q.ParkID)
	if err != nil {
		return false, err
	}
	for _, tpl := range existing {
		if rulesOverlap(candidate, ruleFromTemplate(tpl)) {
			return true, nil
		}
	}
	return false, nil
}

func (s *DefaultService) Availability(ctx context.Context, parkID, from, to string) ([]models.AvailabilityEntry, error) {
	if from == "" {
		from = utils.Today()
	}
	cacheKey := "availability:" + parkID + ":" + from + ":" + to
	if s.Cache != nil {
		if cached, err := s.Cache.Get(ctx, cacheKey).Result(); err == nil {
			var entries []models.AvailabilityEntry
			if json.Unmarshal([]byte(cached), &entries) == nil {
				return entries, nil
			}
		}
	}

	templates, err := s.Repo.GetTemplatesByPark(ctx, parkID)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return []models.AvailabilityEntry{}, nil
	}

	byID := make(map[string]models.TimeSlotTemplate, len(templates))
	templateIDs := make([]string, len(templates))
	for i, tpl := range templates {
		templateIDs[i] = tpl.ID
		byID[tpl.ID] = tpl
	}

	instances, err := s.Repo.GetInstancesForTemplates(ctx, templateIDs, from, to)
	if err != nil {
		return nil, err
	}

	entries := make([]models.AvailabilityEntry, 0, len(instances))
	for _, inst := range instances {
		tpl := byID[inst.TemplateID]
		entries = append(entries, models.AvailabilityEntry{
			InstanceID:       inst.ID,
			TemplateID:       inst.TemplateID,
			Date:             inst.Date,
			StartTime:        tpl.StartTime,
			EndTime:          tpl.EndTime,
			AvailableTickets: inst.AvailableTickets,
			TicketLimit:      inst.TicketLimit,
			PricingIDs:       tpl.PricingIDs,
			PriceAdjustment:  tpl.PriceAdjustment,
		})
	}

	if s.Cache != nil {
		if data, err := json.Marshal(entries); err == nil {
			s.Cache.Set(ctx, cacheKey, data, availabilityCacheTTL)
		}
	}
	return entries, nil
}

// materialize ensures instances exist from today (or validFrom if
// later) up to validUntil, capped at the rolling horizon.
func (s *DefaultService) materialize(ctx context.Context, tpl *models.TimeSlotTemplate) (int, error) {
	from, err := utils.ParseDate(tpl.ValidFrom)
	if err != nil {
		return 0, utils.NewValidationError("%v", err)
	}
	today, _ := utils.ParseDate(utils.Today())
	if from.Before(today) {
		from = today
	}

	horizon := today.AddDate(0, 0, s.HorizonDays)
	to := horizon
	if tpl.ValidUntil != "" {
		until, err := utils.ParseDate(tpl.ValidUntil)
		if err != nil {
			return 0, utils.NewValidationError("%v", err)
		}
		if until.Before(to) {
			to = until
		}
	}
	if to.Before(from) {
		return 0, nil
	}

	dates := materializeDates(tpl, from, to)
	created, err := s.Repo.EnsureInstances(ctx, tpl, dates)
	if err != nil {
		return created, err
	}
	if created > 0 {
		s.Logger.Info("materialized time slot instances",
			zap.String("templateId", tpl.ID), zap.Int("created", created))
	}
	return created, nil
}

// pruneAfter removes instances past a shortened validUntil, keeping any
// that still carry active bookings.
func (s *DefaultService) pruneAfter(ctx context.Context, templateID, until string) error {
	u, err := utils.ParseDate(until)
	if err != nil {
		return utils.NewValidationError("%v", err)
	}
	fromDate := u.AddDate(0, 0, 1).Format(utils.DateLayout)

	doomed, err := s.Repo.GetInstancesForTemplates(ctx, []string{templateID}, fromDate, "")
	if err != nil {
		return err
	}
	if len(doomed) == 0 {
		return nil
	}
	ids := make([]string, len(doomed))
	for i, inst := range doomed {
		ids[i] = inst.ID
	}
	keep, err := s.Bookings.ActiveInstanceIDs(ctx, ids)
	if err != nil {
		return err
	}
	_, err = s.Repo.DeleteFutureInstances(ctx, templateID, fromDate, keep)
	return err
}

func validateTemplate(tpl *models.TimeSlotTemplate) error {
	if len(tpl.DaysOfWeek) == 0 {
		return utils.NewValidationError("daysOfWeek must not be empty")
	}
	seen := make(map[int]bool, len(tpl.DaysOfWeek))
	for _, d := range tpl.DaysOfWeek {
		if d < 0 || d > 6 {
			return utils.NewValidationError("daysOfWeek entries must be 0-6, got %d", d)
		}
		if seen[d] {
			return utils.NewValidationError("daysOfWeek contains duplicate %d", d)
		}
		seen[d] = true
	}

	start, err := utils.ParseClockMinutes(tpl.StartTime)
	if err != nil {
		return utils.NewValidationError("%v", err)
	}
	end, err := utils.ParseClockMinutes(tpl.EndTime)
	if err != nil {
		return utils.NewValidationError("%v", err)
	}
	if start >= end {
		return utils.NewValidationError("startTime must precede endTime")
	}

	if _, err := utils.ParseDate(tpl.ValidFrom); err != nil {
		return utils.NewValidationError("%v", err)
	}
	if tpl.ValidUntil != "" {
		if _, err := utils.ParseDate(tpl.ValidUntil); err != nil {
			return utils.NewValidationError("%v", err)
		}
		if tpl.ValidFrom > tpl.ValidUntil {
			return utils.NewValidationError("validFrom must not be after validUntil")
		}
	}

	if tpl.TicketLimit < 1 {
		return utils.NewValidationError("ticketLimit must be at least 1")
	}
	return nil
}
