package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"parkventure/config"
	bookingRepo "parkventure/database/repository/booking"
	"parkventure/models"
)

// MockLedger mocks only the methods the reaper touches; the rest of
// the ledger surface panics if reached.
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) SettlePayment(ctx context.Context, paymentID string, opts bookingRepo.SettleOptions) (*bookingRepo.SettleResult, error) {
	args := m.Called(ctx, paymentID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookingRepo.SettleResult), args.Error(1)
}

func (m *MockLedger) StalePaymentIDs(ctx context.Context, olderThan time.Time) ([]string, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockLedger) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	panic("not used")
}
func (m *MockLedger) GetAll(ctx context.Context) ([]models.Booking, error)               { panic("not used") }
func (m *MockLedger) GetByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	panic("not used")
}
func (m *MockLedger) GetByPark(ctx context.Context, parkID string) ([]models.Booking, error) {
	panic("not used")
}
func (m *MockLedger) GetByPaymentID(ctx context.Context, paymentID string) ([]models.Booking, error) {
	panic("not used")
}
func (m *MockLedger) ActiveInstanceIDs(ctx context.Context, instanceIDs []string) ([]string, error) {
	panic("not used")
}
func (m *MockLedger) MarkUsed(ctx context.Context, id string, usedAt time.Time) (*models.Booking, error) {
	panic("not used")
}
func (m *MockLedger) UpdateStatus(ctx context.Context, id string, status models.BookingStatus, paymentStatus models.PaymentStatus) (*models.Booking, error) {
	panic("not used")
}
func (m *MockLedger) DeleteByID(ctx context.Context, id string) error { panic("not used") }
func (m *MockLedger) CreateCheckoutBookings(ctx context.Context, bookings []models.Booking, decrementNow bool) error {
	panic("not used")
}
func (m *MockLedger) CancelBooking(ctx context.Context, id string, eagerInventory bool) (*models.Booking, error) {
	panic("not used")
}
func (m *MockLedger) EnsureIndexes() error { panic("not used") }

func TestExpireSessionSettlesFailed(t *testing.T) {
	config.AppConfig.InventoryPolicy = config.InventoryOnConfirmation
	ledger := new(MockLedger)
	ledger.On("SettlePayment", mock.Anything, "cs_1", bookingRepo.SettleOptions{
		Paid:             false,
		RestoreInventory: false,
	}).Return(&bookingRepo.SettleResult{Settled: 2}, nil)

	err := expireSession(context.Background(), ledger, "cs_1")
	require.NoError(t, err)
	ledger.AssertExpectations(t)
}

func TestExpireSessionRestoresUnderEagerPolicy(t *testing.T) {
	config.AppConfig.InventoryPolicy = config.InventoryOnCheckout
	defer func() { config.AppConfig.InventoryPolicy = config.InventoryOnConfirmation }()

	ledger := new(MockLedger)
	ledger.On("SettlePayment", mock.Anything, "cs_2", bookingRepo.SettleOptions{
		Paid:             false,
		RestoreInventory: true,
	}).Return(&bookingRepo.SettleResult{Settled: 1}, nil)

	err := expireSession(context.Background(), ledger, "cs_2")
	require.NoError(t, err)
	ledger.AssertExpectations(t)
}

func TestExpireSessionUnknownPaymentIsSwallowed(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("SettlePayment", mock.Anything, "cs_gone", mock.Anything).
		Return(nil, mongo.ErrNoDocuments)

	assert.NoError(t, expireSession(context.Background(), ledger, "cs_gone"))
}

func TestExpireSessionAlreadySettledIsNoop(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("SettlePayment", mock.Anything, "cs_paid", mock.Anything).
		Return(&bookingRepo.SettleResult{AlreadySettled: true}, nil)

	assert.NoError(t, expireSession(context.Background(), ledger, "cs_paid"))
}

func TestHandleCheckoutExpireDecodesPayload(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("SettlePayment", mock.Anything, "cs_42", mock.Anything).
		Return(&bookingRepo.SettleResult{Settled: 1}, nil)

	b, err := json.Marshal(expirePayload{PaymentID: "cs_42"})
	require.NoError(t, err)
	task := asynq.NewTask(TypeCheckoutExpire, b)

	require.NoError(t, handleCheckoutExpire(ledger)(context.Background(), task))
	ledger.AssertExpectations(t)
}

func TestHandleCheckoutSweepExpiresEveryStaleSession(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("StalePaymentIDs", mock.Anything, mock.Anything).
		Return([]string{"cs_a", "cs_b"}, nil)
	ledger.On("SettlePayment", mock.Anything, "cs_a", mock.Anything).
		Return(&bookingRepo.SettleResult{Settled: 1}, nil)
	// One failing session must not stop the sweep.
	ledger.On("SettlePayment", mock.Anything, "cs_b", mock.Anything).
		Return(nil, errors.New("mongo unavailable"))

	task := asynq.NewTask(TypeCheckoutSweep, nil)
	require.NoError(t, handleCheckoutSweep(ledger)(context.Background(), task))
	ledger.AssertNumberOfCalls(t, "SettlePayment", 2)
}
