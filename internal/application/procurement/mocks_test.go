package procurement

import (
	"context"

	"github.com/farmerp/backend/internal/domain/finance"
	"github.com/farmerp/backend/internal/domain/procurement"
	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/farmerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPurchaseOrderRepository is a mock implementation of PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, firmID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]procurement.PurchaseOrder, error) {
	args := m.Called(ctx, firmID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) CountForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, firmID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Create(ctx context.Context, order *procurement.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *procurement.PurchaseOrder) error {
	args := m.Called(ctx, order)
	if args.Error(0) == nil {
		order.IncrementVersion()
	}
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) DeleteWithLock(ctx context.Context, order *procurement.PurchaseOrder, status procurement.Status) error {
	args := m.Called(ctx, order, status)
	return args.Error(0)
}

// MockExpenseRepository is a mock implementation of ExpenseRepository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) InsertBatch(ctx context.Context, expenses []*finance.Expense) error {
	args := m.Called(ctx, expenses)
	return args.Error(0)
}

func (m *MockExpenseRepository) FindByPurchaseOrder(ctx context.Context, firmID, orderID uuid.UUID, autoGeneratedOnly bool) ([]finance.Expense, error) {
	args := m.Called(ctx, firmID, orderID, autoGeneratedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) UpdateStatusByPurchaseOrder(ctx context.Context, firmID, orderID uuid.UUID, from []finance.ExpenseStatus, to finance.ExpenseStatus) (int64, error) {
	args := m.Called(ctx, firmID, orderID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpenseRepository) DeleteByPurchaseOrder(ctx context.Context, firmID, orderID uuid.UUID, statuses []finance.ExpenseStatus) (int64, error) {
	args := m.Called(ctx, firmID, orderID, statuses)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpenseRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*finance.Expense, error) {
	args := m.Called(ctx, firmID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) SaveWithLock(ctx context.Context, expense *finance.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

// MockOrderNumberGenerator is a mock implementation of OrderNumberGenerator
type MockOrderNumberGenerator struct {
	mock.Mock
}

func (m *MockOrderNumberGenerator) Next(ctx context.Context, firmID uuid.UUID) (int64, error) {
	args := m.Called(ctx, firmID)
	return args.Get(0).(int64), args.Error(1)
}

// MockFirmDirectory is a mock implementation of FirmDirectory
type MockFirmDirectory struct {
	mock.Mock
}

func (m *MockFirmDirectory) BaseCurrency(ctx context.Context, firmID uuid.UUID) (valueobject.Currency, error) {
	args := m.Called(ctx, firmID)
	return args.Get(0).(valueobject.Currency), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockTransactionManager runs fn in place and records the error it returned
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	err := fn(ctx)
	m.Called(ctx, err)
	return err
}
