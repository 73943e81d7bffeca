package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/domain"
	"sales-dashboard/internal/repository"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type PageRequest struct {
	Page  int
	Limit int
}

// normalize applies the paging defaults: page 1, limit 20, limit at most 100.
func (p PageRequest) normalize() PageRequest {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

func (p PageRequest) window() repository.Page {
	return repository.Page{Offset: (p.Page - 1) * p.Limit, Limit: p.Limit}
}

func (p PageRequest) pagination(total int64) Pagination {
	limit := int64(p.Limit)
	return Pagination{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}
}

type OrderPage struct {
	Orders     []domain.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

type ProductPage struct {
	Products   []domain.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

type HistoryPage struct {
	History    []domain.ImportHistory `json:"history"`
	Pagination Pagination             `json:"pagination"`
}

type CatalogService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	history  repository.ImportHistoryRepository
}

func NewCatalogService(o repository.OrderRepository, p repository.ProductRepository, h repository.ImportHistoryRepository) *CatalogService {
	return &CatalogService{orders: o, products: p, history: h}
}

func (s *CatalogService) ListOrders(ctx context.Context, page PageRequest, search string) (*OrderPage, error) {
	page = page.normalize()
	filter := repository.OrderFilter{Page: page.window(), Search: search}

	var (
		orders []domain.Order
		total  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		orders, err = s.orders.List(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.orders.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if orders == nil {
		orders = []domain.Order{}
	}
	return &OrderPage{Orders: orders, Pagination: page.pagination(total)}, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, page PageRequest, search, category string) (*ProductPage, error) {
	page = page.normalize()
	filter := repository.ProductFilter{Page: page.window(), Search: search, Category: category}

	var (
		products []domain.Product
		total    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = s.products.List(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.products.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if products == nil {
		products = []domain.Product{}
	}
	return &ProductPage{Products: products, Pagination: page.pagination(total)}, nil
}

func (s *CatalogService) ListImportHistory(ctx context.Context, page PageRequest, fileType domain.FileType) (*HistoryPage, error) {
	page = page.normalize()
	filter := repository.HistoryFilter{Page: page.window(), FileType: fileType}

	var (
		entries []domain.ImportHistory
		total   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		entries, err = s.history.List(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.history.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if entries == nil {
		entries = []domain.ImportHistory{}
	}
	return &HistoryPage{History: entries, Pagination: page.pagination(total)}, nil
}

// DeleteImportHistory reports whether an entry with id existed.
func (s *CatalogService) DeleteImportHistory(ctx context.Context, id uint64) (bool, error) {
	return s.history.Delete(ctx, id)
}

func (s *CatalogService) ClearImportHistory(ctx context.Context) (int64, error) {
	return s.history.DeleteAll(ctx)
}
