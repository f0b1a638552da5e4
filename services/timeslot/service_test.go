package timeslot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingRepo "parkventure/database/repository/booking"
	"parkventure/models"
	"parkventure/utils"
)

// Mock doubles.

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

type MockBookingLedger struct {
	mock.Mock
}

func (m *MockBookingLedger) ActiveInstanceIDs(ctx context.Context, instanceIDs []string) ([]string, error) {
	args := m.Called(ctx, instanceIDs)
	return args.Get(0).([]string), args.Error(1)
}

// The remaining ledger methods are unused by this service's tests.

func (m *MockBookingLedger) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	panic("not used")
}
func (m *MockBookingLedger) GetAll(ctx context.Context) ([]models.Booking, error) {
	panic("not used")
}
func (m *MockBookingLedger) GetByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	panic("not used")
}
func (m *MockBookingLedger) GetByPark(ctx context.Context, parkID string) ([]models.Booking, error) {
	panic("not used")
}
func (m *MockBookingLedger) GetByPaymentID(ctx context.Context, paymentID string) ([]models.Booking, error) {
	panic("not used")
}
func (m *MockBookingLedger) StalePaymentIDs(ctx context.Context, olderThan time.Time) ([]string, error) {
	panic("not used")
}
func (m *MockBookingLedger) MarkUsed(ctx context.Context, id string, usedAt time.Time) (*models.Booking, error) {
	panic("not used")
}
func (m *MockBookingLedger) UpdateStatus(ctx context.Context, id string, status models.BookingStatus, paymentStatus models.PaymentStatus) (*models.Booking, error) {
	panic("not used")
}
func (m *MockBookingLedger) DeleteByID(ctx context.Context, id string) error { panic("not used") }
func (m *MockBookingLedger) CreateCheckoutBookings(ctx context.Context, bookings []models.Booking, decrementNow bool) error {
	panic("not used")
}
func (m *MockBookingLedger) SettlePayment(ctx context.Context, paymentID string, opts bookingRepo.SettleOptions) (*bookingRepo.SettleResult, error) {
	panic("not used")
}
func (m *MockBookingLedger) CancelBooking(ctx context.Context, id string, eagerInventory bool) (*models.Booking, error) {
	panic("not used")
}
func (m *MockBookingLedger) EnsureIndexes() error { panic("not used") }

// Helpers.

func baseRule() rule {
	return rule{
		validFrom:  "2026-09-01",
		validUntil: "2026-12-31",
		startMin:   9 * 60,
		endMin:     11 * 60,
		days:       []int{6, 0}, // weekend
		pricingIDs: []string{"adult"},
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

// Tests.

func TestRulesOverlapMatrix(t *testing.T) {
	base := baseRule()

	tests := []struct {
		name    string
		mutate  func(r *rule)
		overlap bool
	}{
		{"identical rules", func(r *rule) {}, true},
		{"disjoint weekdays", func(r *rule) { r.days = []int{2, 3} }, false},
		{"later date window", func(r *rule) { r.validFrom = "2027-01-01"; r.validUntil = "2027-06-30" }, false},
		{"adjacent time ranges", func(r *rule) { r.startMin = 11 * 60; r.endMin = 13 * 60 }, false},
		{"overlapping time ranges", func(r *rule) { r.startMin = 10 * 60; r.endMin = 12 * 60 }, true},
		{"disjoint pricing tiers", func(r *rule) { r.pricingIDs = []string{"child"} }, false},
		{"empty pricing matches all", func(r *rule) { r.pricingIDs = nil }, true},
		{"open-ended window reaches base", func(r *rule) { r.validFrom = "2026-12-01"; r.validUntil = "" }, true},
		{"single shared weekday", func(r *rule) { r.days = []int{0, 1} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := baseRule()
			tt.mutate(&other)
			assert.Equal(t, tt.overlap, rulesOverlap(base, other))
			assert.Equal(t, tt.overlap, rulesOverlap(other, base), "overlap must be symmetric")
		})
	}
}

func TestDateWindowsIntersectOpenEnded(t *testing.T) {
	assert.True(t, dateWindowsIntersect("2026-01-01", "", "2030-01-01", ""))
	assert.True(t, dateWindowsIntersect("2026-01-01", "2026-06-30", "2026-06-30", ""))
	assert.False(t, dateWindowsIntersect("2026-01-01", "2026-06-30", "2026-07-01", ""))
}

func TestMaterializeDatesPicksMatchingWeekdays(t *testing.T) {
	tpl := &models.TimeSlotTemplate{DaysOfWeek: []int{6}} // Saturdays
	from, _ := utils.ParseDate("2026-09-01")              // a Tuesday
	to, _ := utils.ParseDate("2026-09-30")

	dates := materializeDates(tpl, from, to)
	assert.Equal(t, []string{"2026-09-05", "2026-09-12", "2026-09-19", "2026-09-26"}, dates)
}

func TestCreateTemplateRejectsOverlap(t *testing.T) {
	repo := new(MockSlotRepo)
	svc := &DefaultService{Repo: repo, HorizonDays: 60, Logger: zap.NewNop()}

	existing := models.TimeSlotTemplate{
		ID:         "tpl-existing",
		ParkID:     "park-1",
		StartTime:  "09:00",
		EndTime:    "11:00",
		DaysOfWeek: []int{6},
		ValidFrom:  "2026-09-01",
		PricingIDs: []string{"adult"},
	}
	repo.On("GetTemplatesByPark", mock.Anything, "park-1").Return([]models.TimeSlotTemplate{existing}, nil)

	_, err := svc.CreateTemplate(context.Background(), "park-1", models.CreateTemplateRequest{
		PricingIDs:  []string{"adult"},
		StartTime:   "10:00",
		EndTime:     "12:00",
		DaysOfWeek:  []int{6},
		TicketLimit: 30,
		ValidFrom:   "2026-09-01",
	})
	assertCode(t, err, utils.CodeConflict)
	repo.AssertNotCalled(t, "CreateTemplate", mock.Anything, mock.Anything)
}

func TestCreateTemplateValidation(t *testing.T) {
	svc := &DefaultService{Repo: new(MockSlotRepo), Logger: zap.NewNop()}

	base := models.CreateTemplateRequest{
		PricingIDs:  []string{"adult"},
		StartTime:   "09:00",
		EndTime:     "11:00",
		DaysOfWeek:  []int{6},
		TicketLimit: 30,
		ValidFrom:   "2026-09-01",
	}

	tests := []struct {
		name   string
		mutate func(r *models.CreateTemplateRequest)
	}{
		{"no weekdays", func(r *models.CreateTemplateRequest) { r.DaysOfWeek = nil }},
		{"weekday out of range", func(r *models.CreateTemplateRequest) { r.DaysOfWeek = []int{7} }},
		{"duplicate weekday", func(r *models.CreateTemplateRequest) { r.DaysOfWeek = []int{6, 6} }},
		{"end before start", func(r *models.CreateTemplateRequest) { r.StartTime = "11:00"; r.EndTime = "09:00" }},
		{"malformed time", func(r *models.CreateTemplateRequest) { r.StartTime = "9am" }},
		{"malformed date", func(r *models.CreateTemplateRequest) { r.ValidFrom = "Sept 1" }},
		{"window inverted", func(r *models.CreateTemplateRequest) { r.ValidUntil = "2026-08-01" }},
		{"zero ticket limit", func(r *models.CreateTemplateRequest) { r.TicketLimit = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := svc.CreateTemplate(context.Background(), "park-1", req)
			assertCode(t, err, utils.CodeValidation)
		})
	}
}

func TestDeleteTemplateRejectsActiveFutureBookings(t *testing.T) {
	repo := new(MockSlotRepo)
	ledger := new(MockBookingLedger)
	svc := &DefaultService{Repo: repo, Bookings: ledger, Logger: zap.NewNop()}

	repo.On("GetTemplateByID", mock.Anything, "tpl-1").Return(&models.TimeSlotTemplate{ID: "tpl-1"}, nil)
	repo.On("GetInstancesForTemplates", mock.Anything, []string{"tpl-1"}, mock.Anything, "").
		Return([]models.TimeSlotInstance{{ID: "inst-1"}, {ID: "inst-2"}}, nil)
	ledger.On("ActiveInstanceIDs", mock.Anything, []string{"inst-1", "inst-2"}).
		Return([]string{"inst-2"}, nil)

	err := svc.DeleteTemplate(context.Background(), "tpl-1")
	assertCode(t, err, utils.CodeConflict)
	repo.AssertNotCalled(t, "DeleteTemplate", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "DeleteFutureInstances", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteTemplateWithNoActiveBookings(t *testing.T) {
	repo := new(MockSlotRepo)
	ledger := new(MockBookingLedger)
	svc := &DefaultService{Repo: repo, Bookings: ledger, Logger: zap.NewNop()}

	repo.On("GetTemplateByID", mock.Anything, "tpl-1").Return(&models.TimeSlotTemplate{ID: "tpl-1"}, nil)
	repo.On("GetInstancesForTemplates", mock.Anything, []string{"tpl-1"}, mock.Anything, "").
		Return([]models.TimeSlotInstance{{ID: "inst-1"}}, nil)
	ledger.On("ActiveInstanceIDs", mock.Anything, []string{"inst-1"}).Return([]string{}, nil)
	repo.On("DeleteFutureInstances", mock.Anything, "tpl-1", mock.Anything, []string(nil)).Return(int64(1), nil)
	repo.On("DeleteTemplate", mock.Anything, "tpl-1").Return(nil)

	require.NoError(t, svc.DeleteTemplate(context.Background(), "tpl-1"))
	repo.AssertExpectations(t)
}

func TestUpdateTemplateTicketLimitTriggersReconcile(t *testing.T) {
	repo := new(MockSlotRepo)
	svc := &DefaultService{Repo: repo, HorizonDays: 60, Logger: zap.NewNop()}

	repo.On("GetTemplateByID", mock.Anything, "tpl-1").Return(&models.TimeSlotTemplate{
		ID:          "tpl-1",
		ParkID:      "park-1",
		StartTime:   "09:00",
		EndTime:     "11:00",
		DaysOfWeek:  []int{6},
		TicketLimit: 30,
		ValidFrom:   "2026-09-01",
	}, nil)
	repo.On("UpdateTemplate", mock.Anything, mock.Anything).Return(nil)
	repo.On("ApplyTicketLimitChange", mock.Anything, "tpl-1", mock.Anything, 45).Return(nil)

	newLimit := 45
	tpl, err := svc.UpdateTemplate(context.Background(), "tpl-1", models.UpdateTemplateRequest{TicketLimit: &newLimit})
	require.NoError(t, err)
	assert.Equal(t, 45, tpl.TicketLimit)
	repo.AssertExpectations(t)
}

func TestUpdateTemplateUnchangedLimitSkipsReconcile(t *testing.T) {
	repo := new(MockSlotRepo)
	svc := &DefaultService{Repo: repo, Logger: zap.NewNop()}

	repo.On("GetTemplateByID", mock.Anything, "tpl-1").Return(&models.TimeSlotTemplate{
		ID:          "tpl-1",
		TicketLimit: 30,
		ValidFrom:   "2026-09-01",
	}, nil)
	repo.On("UpdateTemplate", mock.Anything, mock.Anything).Return(nil)

	same := 30
	_, err := svc.UpdateTemplate(context.Background(), "tpl-1", models.UpdateTemplateRequest{TicketLimit: &same})
	require.NoError(t, err)
	repo.AssertNotCalled(t, "ApplyTicketLimitChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAvailabilityWithoutTemplates(t *testing.T) {
	repo := new(MockSlotRepo)
	svc := &DefaultService{Repo: repo, Logger: zap.NewNop()}

	repo.On("GetTemplatesByPark", mock.Anything, "park-1").Return([]models.TimeSlotTemplate{}, nil)

	entries, err := svc.Availability(context.Background(), "park-1", "2026-09-01", "2026-09-30")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAvailabilityJoinsTemplateFields(t *testing.T) {
	repo := new(MockSlotRepo)
	svc := &DefaultService{Repo: repo, Logger: zap.NewNop()}

	repo.On("GetTemplatesByPark", mock.Anything, "park-1").Return([]models.TimeSlotTemplate{
		{ID: "tpl-1", StartTime: "09:00", EndTime: "11:00", PricingIDs: []string{"adult"}, PriceAdjustment: 2.5},
	}, nil)
	repo.On("GetInstancesForTemplates", mock.Anything, []string{"tpl-1"}, "2026-09-01", "2026-09-30").
		Return([]models.TimeSlotInstance{
			{ID: "inst-1", TemplateID: "tpl-1", Date: "2026-09-05", TicketLimit: 50, AvailableTickets: 12},
		}, nil)

	entries, err := svc.Availability(context.Background(), "park-1", "2026-09-01", "2026-09-30")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "09:00", e.StartTime)
	assert.Equal(t, 12, e.AvailableTickets)
	assert.Equal(t, 2.5, e.PriceAdjustment)
	assert.Equal(t, []string{"adult"}, e.PricingIDs)
}
