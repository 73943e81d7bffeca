package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"sales-dashboard/internal/domain"
	"sales-dashboard/internal/repository"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockProductRepository struct {
	mock.Mock
}

type MockImportHistoryRepository struct {
	mock.Mock
}

type MockReportRepository struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, pattern string, data any) error {
	args := m.Called(ctx, pattern, data)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByCode(ctx context.Context, code string) (*domain.Order, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateItem(ctx context.Context, item *domain.OrderItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter repository.OrderFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) FindBetween(ctx context.Context, start, end time.Time) ([]domain.Order, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByNames(ctx context.Context, names []string) ([]domain.Product, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter repository.ProductFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockImportHistoryRepository) Save(ctx context.Context, h *domain.ImportHistory) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockImportHistoryRepository) List(ctx context.Context, filter repository.HistoryFilter) ([]domain.ImportHistory, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ImportHistory), args.Error(1)
}

func (m *MockImportHistoryRepository) Count(ctx context.Context, filter repository.HistoryFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockImportHistoryRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockImportHistoryRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) SalesTotals(ctx context.Context) (repository.SalesTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(repository.SalesTotals), args.Error(1)
}

func (m *MockReportRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) GroupOrders(ctx context.Context, by repository.GroupField, limit int) ([]repository.GroupRow, error) {
	args := m.Called(ctx, by, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.GroupRow), args.Error(1)
}

func (m *MockReportRepository) TopProducts(ctx context.Context, limit int) ([]repository.ProductQuantity, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ProductQuantity), args.Error(1)
}
