package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	cartRepo "parkventure/database/repository/cart"
	pricingRepo "parkventure/database/repository/pricing"
	timeslotRepo "parkventure/database/repository/timeslot"
	"parkventure/models"
	"parkventure/utils"
)

// DefaultService implements Service. Prices are always recomputed from
// the stored pricing tier plus the template's adjustment; client-sent
// prices never enter a cart.
type DefaultService struct {
	Carts   cartRepo.CartRepository
	Slots   timeslotRepo.TimeSlotRepository
	Pricing pricingRepo.PricingRepository
	Logger  *zap.Logger
}

func (s *DefaultService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.Carts.GetOrCreatePending(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *DefaultService) AddToCart(ctx context.Context, userID string, req models.AddCartItemRequest) (*models.Cart, error) {
	item, err := s.buildItem(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.Carts.AddItem(ctx, userID, *item)
}

func (s *DefaultService) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, utils.NewValidationError("quantity must be at least 1")
	}

	cart, err := s.Carts.GetPending(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NewNotFoundError("no pending cart for user")
	}
	if err != nil {
		return nil, err
	}

	var line *models.CartItem
	for i := range cart.Bookings {
		if cart.Bookings[i].ID == itemID {
			line = &cart.Bookings[i]
			break
		}
	}
	if line == nil {
		return nil, utils.NewNotFoundError("cart item %s not found", itemID)
	}

	if err := s.softCheckAvailability(ctx, line.TimeSlotInstance, quantity); err != nil {
		return nil, err
	}

	line.Quantity = quantity
	line.TotalPrice = line.UnitPrice * float64(quantity)
	return s.Carts.UpdateItem(ctx, userID, *line)
}

func (s *DefaultService) RemoveItems(ctx context.Context, userID string, itemIDs []string) (*models.Cart, error) {
	if len(itemIDs) == 0 {
		return nil, utils.NewValidationError("itemIds must not be empty")
	}
	cart, err := s.Carts.RemoveItems(ctx, userID, itemIDs)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NewNotFoundError("no pending cart for user")
	}
	return cart, err
}

func (s *DefaultService) ClearCart(ctx context.Context, userID string) (*models.Cart, error) {
	return s.Carts.ClearItems(ctx, userID)
}

// SyncCart replaces the server cart with a client-held line set, e.g.
// one accumulated before sign-in. Only ids and quantities are taken
// from the client; every price is recomputed here.
func (s *DefaultService) SyncCart(ctx context.Context, userID string, items []models.AddCartItemRequest) (*models.Cart, error) {
	lines := make([]models.CartItem, 0, len(items))
	for _, req := range items {
		item, err := s.buildItem(ctx, req)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *item)
	}
	return s.Carts.ReplaceItems(ctx, userID, lines)
}

func (s *DefaultService) buildItem(ctx context.Context, req models.AddCartItemRequest) (*models.CartItem, error) {
	if req.Quantity < 1 {
		return nil, utils.NewValidationError("quantity must be at least 1")
	}

	inst, err := s.Slots.GetInstanceByID(ctx, req.TimeSlotInstance)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NewNotFoundError("time slot %s not found", req.TimeSlotInstance)
	}
	if err != nil {
		return nil, err
	}
	if inst.AvailableTickets < req.Quantity {
		return nil, utils.NewConflictError("only %d tickets left for %s", inst.AvailableTickets, inst.Date)
	}

	tpl, err := s.Slots.GetTemplateByID(ctx, inst.TemplateID)
	if err != nil {
		return nil, err
	}
	if tpl.ParkID != req.Park {
		return nil, utils.NewValidationError("time slot does not belong to park %s", req.Park)
	}

	pricing, err := s.Pricing.GetByID(ctx, req.Pricing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NewNotFoundError("pricing %s not found", req.Pricing)
	}
	if err != nil {
		return nil, err
	}
	if !pricingAllowed(tpl.PricingIDs, pricing.ID) {
		return nil, utils.NewValidationError("pricing %s is not sold in this time slot", pricing.ID)
	}

	unit := pricing.Price + tpl.PriceAdjustment
	return &models.CartItem{
		ID:               uuid.New().String(),
		Park:             req.Park,
		Pricing:          req.Pricing,
		TimeSlotInstance: req.TimeSlotInstance,
		Quantity:         req.Quantity,
		UnitPrice:        unit,
		TotalPrice:       unit * float64(req.Quantity),
		Date:             inst.Date,
	}, nil
}

func (s *DefaultService) softCheckAvailability(ctx context.Context, instanceID string, qty int) error {
	inst, err := s.Slots.GetInstanceByID(ctx, instanceID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return utils.NewNotFoundError("time slot %s not found", instanceID)
	}
	if err != nil {
		return err
	}
	if inst.AvailableTickets < qty {
		return utils.NewConflictError("only %d tickets left for %s", inst.AvailableTickets, inst.Date)
	}
	return nil
}

func pricingAllowed(allowed []string, id string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == id {
			return true
		}
	}
	return false
}
