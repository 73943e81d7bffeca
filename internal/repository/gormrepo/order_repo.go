package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"sales-dashboard/internal/domain"
	"sales-dashboard/internal/repository"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) FindByCode(ctx context.Context, code string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Where("code = ?", code).Take(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order %q: %w", code, err)
	}
	return &o, nil
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	result := r.db.WithContext(ctx).Omit("Items").Create(order)
	if result.Error != nil {
		return fmt.Errorf("create order %q: %w", order.Code, result.Error)
	}
	if order.ID == 0 {
		slog.Warn("order saved without id", "code", order.Code, "rows", result.RowsAffected)
		return errors.New("failed to assign order ID")
	}
	return nil
}

func (r *orderRepo) CreateItem(ctx context.Context, item *domain.OrderItem) error {
	if err := r.db.WithContext(ctx).Omit("Product").Create(item).Error; err != nil {
		return fmt.Errorf("create order item %q: %w", item.ProductName, err)
	}
	return nil
}

func (r *orderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).
		Scopes(orderSearch(filter.Search), paginate(filter.Page)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

func (r *orderRepo) Count(ctx context.Context, filter repository.OrderFilter) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Scopes(orderSearch(filter.Search)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

// FindBetween returns orders created in [start, end] with their items and the
// linked products, newest first.
func (r *orderRepo) FindBetween(ctx context.Context, start, end time.Time) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", start.UTC(), end.UTC()).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product").
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("find orders between %s and %s: %w", start.Format(time.RFC3339), end.Format(time.RFC3339), err)
	}
	return out, nil
}

func orderSearch(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		like := "%" + search + "%"
		return db.Where("code LIKE ? OR customer LIKE ? OR phone LIKE ? OR email LIKE ?", like, like, like, like)
	}
}

func paginate(p repository.Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Limit <= 0 {
			return db
		}
		return db.Offset(p.Offset).Limit(p.Limit)
	}
}
