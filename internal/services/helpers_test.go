package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/domain"
	"sales-dashboard/internal/infra/database"
	rabbit "sales-dashboard/internal/infra/rabbitmq"
	"sales-dashboard/internal/repository/gormrepo"
	"sales-dashboard/internal/sheet"
)

const (
	TestOrderCode   = "ORD-1001"
	TestProductName = "Caffe Latte"
)

type testStack struct {
	db      *gorm.DB
	imports *ImportService
	catalog *CatalogService
	reports *ReportService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver:       "sqlite",
		SQLitePath:   filepath.Join(t.TempDir(), "dashboard.db"),
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

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	db := newTestDB(t)
	orders := gormrepo.NewOrderRepository(db)
	products := gormrepo.NewProductRepository(db)
	history := gormrepo.NewImportHistoryRepository(db)

	imports := NewImportService(orders, products, history, rabbit.NopPublisher{})
	t.Cleanup(imports.Drain)

	return &testStack{
		db:      db,
		imports: imports,
		catalog: NewCatalogService(orders, products, history),
		reports: NewReportService(gormrepo.NewReportRepository(db), orders, products),
	}
}

func orderRow(code string, products string, total float64) sheet.Row {
	row := sheet.Row{sheet.ColOrderTotalAmount: total}
	if code != "" {
		row[sheet.ColOrderCode] = code
	}
	if products != "" {
		row[sheet.ColOrderProducts] = products
	}
	return row
}

func productRow(name string, price any) sheet.Row {
	row := sheet.Row{sheet.ColProductName: name, sheet.ColProductCategories: "Coffee"}
	if price != nil {
		row[sheet.ColProductPrice] = price
	}
	return row
}

func ordersRequest(rows ...sheet.Row) ImportRequest {
	return ImportRequest{FileName: "orders.xlsx", FileType: domain.FileTypeOrders, Rows: rows}
}

func productsRequest(rows ...sheet.Row) ImportRequest {
	return ImportRequest{FileName: "products.xlsx", FileType: domain.FileTypeProducts, Rows: rows}
}

func ptr[T any](v T) *T {
	return &v
}
