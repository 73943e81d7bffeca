package gormrepo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"sales-dashboard/internal/domain"
	"sales-dashboard/internal/repository"
)

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) repository.ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) SalesTotals(ctx context.Context) (repository.SalesTotals, error) {
	var t repository.SalesTotals
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("COUNT(id) AS order_count, " +
			"COALESCE(SUM(total_amount), 0) AS total_sales, " +
			"COALESCE(SUM(delivery_fee), 0) AS delivery_fees, " +
			"COALESCE(AVG(total_amount), 0) AS avg_order_value").
		Scan(&t).Error
	if err != nil {
		return t, fmt.Errorf("sales totals: %w", err)
	}
	return t, nil
}

func (r *reportRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Where("created_at >= ?", since.UTC()).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count orders since %s: %w", since.Format(time.RFC3339), err)
	}
	return n, nil
}

func (r *reportRepo) GroupOrders(ctx context.Context, by repository.GroupField, limit int) ([]repository.GroupRow, error) {
	switch by {
	case repository.GroupByStatus, repository.GroupByCity, repository.GroupByDistrict, repository.GroupByPaymentMethod:
	default:
		return nil, fmt.Errorf("group orders: unsupported field %q", by)
	}
	col := string(by)

	q := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select(col + " AS label, COUNT(id) AS order_count, COALESCE(SUM(total_amount), 0) AS total_amount").
		Group(col).
		Order("order_count DESC").Order(col)
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []repository.GroupRow
	if err := q.Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("group orders by %s: %w", col, err)
	}
	return out, nil
}

func (r *reportRepo) TopProducts(ctx context.Context, limit int) ([]repository.ProductQuantity, error) {
	q := r.db.WithContext(ctx).Model(&domain.OrderItem{}).
		Select("product_name, COALESCE(SUM(quantity), 0) AS total_quantity, COUNT(id) AS order_count").
		Group("product_name").
		Order("total_quantity DESC").Order("product_name")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []repository.ProductQuantity
	if err := q.Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return out, nil
}
