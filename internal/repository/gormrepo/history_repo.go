package gormrepo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"sales-dashboard/internal/domain"
	"sales-dashboard/internal/repository"
)

type historyRepo struct {
	db *gorm.DB
}

func NewImportHistoryRepository(db *gorm.DB) repository.ImportHistoryRepository {
	return &historyRepo{db: db}
}

func (r *historyRepo) Save(ctx context.Context, h *domain.ImportHistory) error {
	if err := r.db.WithContext(ctx).Create(h).Error; err != nil {
		return fmt.Errorf("save import history %s: %w", h.BatchID, err)
	}
	return nil
}

func (r *historyRepo) List(ctx context.Context, filter repository.HistoryFilter) ([]domain.ImportHistory, error) {
	var out []domain.ImportHistory
	err := r.db.WithContext(ctx).
		Scopes(historyType(filter.FileType), paginate(filter.Page)).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list import history: %w", err)
	}
	return out, nil
}

func (r *historyRepo) Count(ctx context.Context, filter repository.HistoryFilter) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.ImportHistory{}).Scopes(historyType(filter.FileType)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count import history: %w", err)
	}
	return n, nil
}

func (r *historyRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&domain.ImportHistory{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("delete import history %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *historyRepo) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&domain.ImportHistory{})
	if result.Error != nil {
		return 0, fmt.Errorf("clear import history: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func historyType(ft domain.FileType) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if ft == "" {
			return db
		}
		return db.Where("file_type = ?", ft)
	}
}
