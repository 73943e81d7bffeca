package repository

import (
	"context"
	"time"

	"sales-dashboard/internal/domain"
)

// Find* methods return nil, nil when the record does not exist.

type OrderRepository interface {
	FindByCode(ctx context.Context, code string) (*domain.Order, error)
	Create(ctx context.Context, order *domain.Order) error
	CreateItem(ctx context.Context, item *domain.OrderItem) error
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	Count(ctx context.Context, filter OrderFilter) (int64, error)
	FindBetween(ctx context.Context, start, end time.Time) ([]domain.Order, error)
}

type ProductRepository interface {
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	FindByNames(ctx context.Context, names []string) ([]domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
}

type ImportHistoryRepository interface {
	Save(ctx context.Context, h *domain.ImportHistory) error
	List(ctx context.Context, filter HistoryFilter) ([]domain.ImportHistory, error)
	Count(ctx context.Context, filter HistoryFilter) (int64, error)
	Delete(ctx context.Context, id uint64) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type ReportRepository interface {
	SalesTotals(ctx context.Context) (SalesTotals, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	GroupOrders(ctx context.Context, by GroupField, limit int) ([]GroupRow, error)
	TopProducts(ctx context.Context, limit int) ([]ProductQuantity, error)
}

type Page struct {
	Offset int
	Limit  int
}

type OrderFilter struct {
	Page
	Search string
}

type ProductFilter struct {
	Page
	Search   string
	Category string
}

type HistoryFilter struct {
	Page
	FileType domain.FileType
}

type SalesTotals struct {
	OrderCount    int64
	TotalSales    float64
	DeliveryFees  float64
	AvgOrderValue float64
}

// GroupField is an orders column that reports may group by.
type GroupField string

const (
	GroupByStatus        GroupField = "status"
	GroupByCity          GroupField = "city"
	GroupByDistrict      GroupField = "district"
	GroupByPaymentMethod GroupField = "payment_method"
)

// GroupRow is one bucket of GroupOrders. Label is nil for the NULL bucket.
type GroupRow struct {
	Label       *string
	OrderCount  int64
	TotalAmount float64
}

type ProductQuantity struct {
	ProductName   string
	TotalQuantity int64
	OrderCount    int64
}
