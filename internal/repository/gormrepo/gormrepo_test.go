package gormrepo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/domain"
	"sales-dashboard/internal/infra/database"
	"sales-dashboard/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver:       "sqlite",
		SQLitePath:   filepath.Join(t.TempDir(), "repo.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func strPtr(s string) *string { return &s }

func seedOrder(t *testing.T, repo repository.OrderRepository, code string, total float64, city *string, at time.Time, items ...domain.OrderItem) *domain.Order {
	t.Helper()
	o := &domain.Order{Code: code, TotalAmount: total, City: city, CreatedAt: at}
	require.NoError(t, repo.Create(context.Background(), o))
	for i := range items {
		items[i].OrderID = o.ID
		require.NoError(t, repo.CreateItem(context.Background(), &items[i]))
	}
	return o
}

func TestOrderRepo_FindByCode(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	ctx := context.Background()

	got, err := repo.FindByCode(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	created := seedOrder(t, repo, "A-1", 10, nil, time.Now().UTC())
	assert.NotZero(t, created.ID)

	got, err = repo.FindByCode(ctx, "A-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	err = repo.Create(ctx, &domain.Order{Code: "A-1"})
	assert.Error(t, err, "codes are unique")
}

func TestOrderRepo_ListAndBetween(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	products := NewProductRepository(db)
	ctx := context.Background()

	latte := &domain.Product{Name: "Latte"}
	require.NoError(t, products.Create(ctx, latte))

	jan := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)
	seedOrder(t, repo, "JAN-1", 100, nil, jan,
		domain.OrderItem{ProductName: "Latte", ProductID: &latte.ID, Quantity: 2},
		domain.OrderItem{ProductName: "Ghost", Quantity: 1},
	)
	seedOrder(t, repo, "FEB-1", 200, nil, feb)

	list, err := repo.List(ctx, repository.OrderFilter{Page: repository.Page{Limit: 10}})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "FEB-1", list[0].Code, "newest first")
	assert.Len(t, list[1].Items, 2)

	n, err := repo.Count(ctx, repository.OrderFilter{Search: "JAN"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	between, err := repo.FindBetween(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, between, 1)
	require.Len(t, between[0].Items, 2)
	require.NotNil(t, between[0].Items[0].Product)
	assert.Equal(t, "Latte", between[0].Items[0].Product.Name)
	assert.Nil(t, between[0].Items[1].Product)
}

func TestProductRepo_UpdateWritesNulls(t *testing.T) {
	repo := NewProductRepository(newTestDB(t))
	ctx := context.Background()

	price, stock := 5000.0, 3
	p := &domain.Product{Name: "Mocha", Price: &price, Stock: &stock, Categories: strPtr("Coffee")}
	require.NoError(t, repo.Create(ctx, p))

	p.Price, p.Stock = nil, nil
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.FindByName(ctx, "Mocha")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Price)
	assert.Nil(t, got.Stock)
	assert.Equal(t, strPtr("Coffee"), got.Categories)

	found, err := repo.FindByNames(ctx, []string{"Mocha", "Nope"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	n, err := repo.Count(ctx, repository.ProductFilter{Category: "Tea"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReportRepo(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db)
	reports := NewReportRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	ub := strPtr("Улаанбаатар")
	seedOrder(t, orders, "R-1", 100, ub, now, domain.OrderItem{ProductName: "Latte", Quantity: 2})
	seedOrder(t, orders, "R-2", 300, ub, now.AddDate(0, 0, -30), domain.OrderItem{ProductName: "Latte", Quantity: 1}, domain.OrderItem{ProductName: "Tea", Quantity: 5})
	seedOrder(t, orders, "R-3", 200, nil, now)

	totals, err := reports.SalesTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, repository.SalesTotals{OrderCount: 3, TotalSales: 600, AvgOrderValue: 200}, totals)

	recent, err := reports.CountSince(ctx, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, int64(2), recent)

	groups, err := reports.GroupOrders(ctx, repository.GroupByCity, 0)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, ub, groups[0].Label)
	assert.Equal(t, int64(2), groups[0].OrderCount)
	assert.Equal(t, 400.0, groups[0].TotalAmount)
	assert.Nil(t, groups[1].Label)

	limited, err := reports.GroupOrders(ctx, repository.GroupByCity, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = reports.GroupOrders(ctx, repository.GroupField("code; DROP TABLE orders"), 0)
	assert.ErrorContains(t, err, "unsupported field")

	top, err := reports.TopProducts(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []repository.ProductQuantity{
		{ProductName: "Tea", TotalQuantity: 5, OrderCount: 1},
		{ProductName: "Latte", TotalQuantity: 3, OrderCount: 2},
	}, top)
}

func TestHistoryRepo(t *testing.T) {
	repo := NewImportHistoryRepository(newTestDB(t))
	ctx := context.Background()

	for i, ft := range []domain.FileType{domain.FileTypeOrders, domain.FileTypeProducts, domain.FileTypeOrders} {
		require.NoError(t, repo.Save(ctx, &domain.ImportHistory{
			BatchID:  string(rune('a'+i)) + "-batch",
			FileName: "f.xlsx",
			FileType: ft,
		}))
	}

	n, err := repo.Count(ctx, repository.HistoryFilter{FileType: domain.FileTypeOrders})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	page, err := repo.List(ctx, repository.HistoryFilter{Page: repository.Page{Offset: 0, Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	ok, err := repo.Delete(ctx, page[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	cleared, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)
}
