package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"parkventure/models"
	"parkventure/utils"
)

// Mock doubles.

type MockCartRepo struct {
	mock.Mock
}

func (m *MockCartRepo) GetOrCreatePending(ctx context.Context, userID string) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartRepo) GetPending(ctx context.Context, userID string) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartRepo) AddItem(ctx context.Context, userID string, item models.CartItem) (*models.Cart, error) {
	args := m.Called(ctx, userID, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartRepo) UpdateItem(ctx context.Context, userID string, item models.CartItem) (*models.Cart, error) {
	args := m.Called(ctx, userID, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartRepo) RemoveItems(ctx context.Context, userID string, itemIDs []string) (*models.Cart, error) {
	args := m.Called(ctx, userID, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartRepo) ClearItems(ctx context.Context, userID string) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartRepo) ReplaceItems(ctx context.Context, userID string, items []models.CartItem) (*models.Cart, error) {
	args := m.Called(ctx, userID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartRepo) EnsureIndexes() error {
	args := m.Called()
	return args.Error(0)
}

type MockSlotRepo struct {
	mock.Mock
}

func (m *MockSlotRepo) CreateTemplate(ctx context.Context, tpl *models.TimeSlotTemplate) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *MockSlotRepo) GetTemplateByID(ctx context.Context, id string) (*models.TimeSlotTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TimeSlotTemplate), args.Error(1)
}

func (m *MockSlotRepo) GetTemplatesByPark(ctx context.Context, parkID string) ([]models.TimeSlotTemplate, error) {
	args := m.Called(ctx, parkID)
	return args.Get(0).([]models.TimeSlotTemplate), args.Error(1)
}

func (m *MockSlotRepo) GetTemplatesByIDs(ctx context.Context, ids []string) (map[string]models.TimeSlotTemplate, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[string]models.TimeSlotTemplate), args.Error(1)
}

func (m *MockSlotRepo) UpdateTemplate(ctx context.Context, tpl *models.TimeSlotTemplate) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *MockSlotRepo) DeleteTemplate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSlotRepo) EnsureInstances(ctx context.Context, tpl *models.TimeSlotTemplate, dates []string) (int, error) {
	args := m.Called(ctx, tpl, dates)
	return args.Int(0), args.Error(1)
}

func (m *MockSlotRepo) GetInstanceByID(ctx context.Context, id string) (*models.TimeSlotInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TimeSlotInstance), args.Error(1)
}

func (m *MockSlotRepo) GetInstancesByIDs(ctx context.Context, ids []string) (map[string]models.TimeSlotInstance, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[string]models.TimeSlotInstance), args.Error(1)
}

func (m *MockSlotRepo) GetInstancesForTemplates(ctx context.Context, templateIDs []string, from, to string) ([]models.TimeSlotInstance, error) {
	args := m.Called(ctx, templateIDs, from, to)
	return args.Get(0).([]models.TimeSlotInstance), args.Error(1)
}

func (m *MockSlotRepo) DeleteFutureInstances(ctx context.Context, templateID, fromDate string, keepIDs []string) (int64, error) {
	args := m.Called(ctx, templateID, fromDate, keepIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSlotRepo) ApplyTicketLimitChange(ctx context.Context, templateID, fromDate string, newLimit int) error {
	args := m.Called(ctx, templateID, fromDate, newLimit)
	return args.Error(0)
}

func (m *MockSlotRepo) EnsureIndexes() error {
	args := m.Called()
	return args.Error(0)
}

type MockPricingRepo struct {
	mock.Mock
}

func (m *MockPricingRepo) GetByID(ctx context.Context, id string) (*models.Pricing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pricing), args.Error(1)
}

func (m *MockPricingRepo) GetByIDs(ctx context.Context, ids []string) (map[string]models.Pricing, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[string]models.Pricing), args.Error(1)
}

func (m *MockPricingRepo) GetParkByID(ctx context.Context, id string) (*models.Park, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Park), args.Error(1)
}

// Helpers.

func newTestService(carts *MockCartRepo, slots *MockSlotRepo, pricing *MockPricingRepo) *DefaultService {
	return &DefaultService{Carts: carts, Slots: slots, Pricing: pricing, Logger: zap.NewNop()}
}

func stubSlot(slots *MockSlotRepo, available int) {
	slots.On("GetInstanceByID", mock.Anything, "inst-1").Return(&models.TimeSlotInstance{
		ID:               "inst-1",
		TemplateID:       "tpl-1",
		Date:             "2026-09-05",
		TicketLimit:      50,
		AvailableTickets: available,
	}, nil)
	slots.On("GetTemplateByID", mock.Anything, "tpl-1").Return(&models.TimeSlotTemplate{
		ID:              "tpl-1",
		ParkID:          "park-1",
		PricingIDs:      []string{"pricing-adult", "pricing-child"},
		PriceAdjustment: 5,
	}, nil)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

// Tests.

func TestAddToCartPricesServerSide(t *testing.T) {
	carts := new(MockCartRepo)
	slots := new(MockSlotRepo)
	pricing := new(MockPricingRepo)
	svc := newTestService(carts, slots, pricing)

	stubSlot(slots, 10)
	pricing.On("GetByID", mock.Anything, "pricing-adult").Return(&models.Pricing{
		ID: "pricing-adult", ParkID: "park-1", Price: 20,
	}, nil)

	var added models.CartItem
	carts.On("AddItem", mock.Anything, "user-1", mock.Anything).
		Run(func(args mock.Arguments) {
			added = args.Get(2).(models.CartItem)
		}).
		Return(&models.Cart{UserID: "user-1"}, nil)

	_, err := svc.AddToCart(context.Background(), "user-1", models.AddCartItemRequest{
		Park:             "park-1",
		Pricing:          "pricing-adult",
		TimeSlotInstance: "inst-1",
		Quantity:         3,
	})
	require.NoError(t, err)

	// Unit price = tier price + template adjustment, regardless of what
	// the client believes.
	assert.Equal(t, 25.0, added.UnitPrice)
	assert.Equal(t, 75.0, added.TotalPrice)
	assert.Equal(t, "2026-09-05", added.Date)
	assert.NotEmpty(t, added.ID)
}

func TestAddToCartRejectsWrongPark(t *testing.T) {
	svc := newTestService(new(MockCartRepo), func() *MockSlotRepo {
		slots := new(MockSlotRepo)
		stubSlot(slots, 10)
		return slots
	}(), new(MockPricingRepo))

	_, err := svc.AddToCart(context.Background(), "user-1", models.AddCartItemRequest{
		Park:             "park-other",
		Pricing:          "pricing-adult",
		TimeSlotInstance: "inst-1",
		Quantity:         1,
	})
	assertCode(t, err, utils.CodeValidation)
}

func TestAddToCartRejectsPricingNotSoldInSlot(t *testing.T) {
	slots := new(MockSlotRepo)
	pricing := new(MockPricingRepo)
	svc := newTestService(new(MockCartRepo), slots, pricing)

	stubSlot(slots, 10)
	pricing.On("GetByID", mock.Anything, "pricing-vip").Return(&models.Pricing{
		ID: "pricing-vip", ParkID: "park-1", Price: 99,
	}, nil)

	_, err := svc.AddToCart(context.Background(), "user-1", models.AddCartItemRequest{
		Park:             "park-1",
		Pricing:          "pricing-vip",
		TimeSlotInstance: "inst-1",
		Quantity:         1,
	})
	assertCode(t, err, utils.CodeValidation)
}

func TestAddToCartSoftAvailability(t *testing.T) {
	slots := new(MockSlotRepo)
	svc := newTestService(new(MockCartRepo), slots, new(MockPricingRepo))

	stubSlot(slots, 2)
	_, err := svc.AddToCart(context.Background(), "user-1", models.AddCartItemRequest{
		Park:             "park-1",
		Pricing:          "pricing-adult",
		TimeSlotInstance: "inst-1",
		Quantity:         3,
	})
	assertCode(t, err, utils.CodeConflict)
}

func TestAddToCartUnknownInstance(t *testing.T) {
	slots := new(MockSlotRepo)
	svc := newTestService(new(MockCartRepo), slots, new(MockPricingRepo))

	slots.On("GetInstanceByID", mock.Anything, "gone").Return(nil, mongo.ErrNoDocuments)
	_, err := svc.AddToCart(context.Background(), "user-1", models.AddCartItemRequest{
		Park:             "park-1",
		Pricing:          "pricing-adult",
		TimeSlotInstance: "gone",
		Quantity:         1,
	})
	assertCode(t, err, utils.CodeNotFound)
}

func TestAddToCartRejectsZeroQuantity(t *testing.T) {
	svc := newTestService(new(MockCartRepo), new(MockSlotRepo), new(MockPricingRepo))

	_, err := svc.AddToCart(context.Background(), "user-1", models.AddCartItemRequest{
		Park:             "park-1",
		Pricing:          "pricing-adult",
		TimeSlotInstance: "inst-1",
		Quantity:         0,
	})
	assertCode(t, err, utils.CodeValidation)
}

func TestUpdateItemRepricesLine(t *testing.T) {
	carts := new(MockCartRepo)
	slots := new(MockSlotRepo)
	svc := newTestService(carts, slots, new(MockPricingRepo))

	stubSlot(slots, 10)
	carts.On("GetPending", mock.Anything, "user-1").Return(&models.Cart{
		UserID: "user-1",
		Bookings: []models.CartItem{
			{ID: "item-1", TimeSlotInstance: "inst-1", Quantity: 1, UnitPrice: 25, TotalPrice: 25},
		},
	}, nil)

	var updated models.CartItem
	carts.On("UpdateItem", mock.Anything, "user-1", mock.Anything).
		Run(func(args mock.Arguments) {
			updated = args.Get(2).(models.CartItem)
		}).
		Return(&models.Cart{UserID: "user-1"}, nil)

	_, err := svc.UpdateItem(context.Background(), "user-1", "item-1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)
	assert.Equal(t, 100.0, updated.TotalPrice)
}

func TestUpdateItemUnknownLine(t *testing.T) {
	carts := new(MockCartRepo)
	svc := newTestService(carts, new(MockSlotRepo), new(MockPricingRepo))

	carts.On("GetPending", mock.Anything, "user-1").Return(&models.Cart{UserID: "user-1"}, nil)
	_, err := svc.UpdateItem(context.Background(), "user-1", "ghost", 2)
	assertCode(t, err, utils.CodeNotFound)
}

func TestSyncCartRebuildsEveryLine(t *testing.T) {
	carts := new(MockCartRepo)
	slots := new(MockSlotRepo)
	pricing := new(MockPricingRepo)
	svc := newTestService(carts, slots, pricing)

	stubSlot(slots, 10)
	pricing.On("GetByID", mock.Anything, "pricing-adult").Return(&models.Pricing{
		ID: "pricing-adult", ParkID: "park-1", Price: 20,
	}, nil)
	pricing.On("GetByID", mock.Anything, "pricing-child").Return(&models.Pricing{
		ID: "pricing-child", ParkID: "park-1", Price: 10,
	}, nil)

	var replaced []models.CartItem
	carts.On("ReplaceItems", mock.Anything, "user-1", mock.Anything).
		Run(func(args mock.Arguments) {
			replaced = args.Get(2).([]models.CartItem)
		}).
		Return(&models.Cart{UserID: "user-1"}, nil)

	_, err := svc.SyncCart(context.Background(), "user-1", []models.AddCartItemRequest{
		{Park: "park-1", Pricing: "pricing-adult", TimeSlotInstance: "inst-1", Quantity: 2},
		{Park: "park-1", Pricing: "pricing-child", TimeSlotInstance: "inst-1", Quantity: 1},
	})
	require.NoError(t, err)

	require.Len(t, replaced, 2)
	assert.Equal(t, 50.0, replaced[0].TotalPrice)
	assert.Equal(t, 15.0, replaced[1].TotalPrice)
}

func TestRemoveItemsRequiresIDs(t *testing.T) {
	svc := newTestService(new(MockCartRepo), new(MockSlotRepo), new(MockPricingRepo))

	_, err := svc.RemoveItems(context.Background(), "user-1", nil)
	assertCode(t, err, utils.CodeValidation)
}
