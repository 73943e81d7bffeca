package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"sales-dashboard/internal/domain"
	"sales-dashboard/internal/repository"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Where("name = ?", name).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product %q: %w", name, err)
	}
	return &p, nil
}

func (r *productRepo) FindByNames(ctx context.Context, names []string) ([]domain.Product, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var out []domain.Product
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("find products by name: %w", err)
	}
	return out, nil
}

func (r *productRepo) Create(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("create product %q: %w", product.Name, err)
	}
	return nil
}

// Update writes the catalog fields of product, including nil ones.
func (r *productRepo) Update(ctx context.Context, product *domain.Product) error {
	err := r.db.WithContext(ctx).
		Model(product).
		Select("Price", "SalePrice", "Categories", "Stock", "UpdatedAt").
		Updates(product).Error
	if err != nil {
		return fmt.Errorf("update product %q: %w", product.Name, err)
	}
	return nil
}

func (r *productRepo) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.WithContext(ctx).
		Scopes(productSearch(filter), paginate(filter.Page)).
		Order("name ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func (r *productRepo) Count(ctx context.Context, filter repository.ProductFilter) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Scopes(productSearch(filter)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func productSearch(filter repository.ProductFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Search != "" {
			db = db.Where("name LIKE ?", "%"+filter.Search+"%")
		}
		if filter.Category != "" {
			db = db.Where("categories LIKE ?", "%"+filter.Category+"%")
		}
		return db
	}
}
