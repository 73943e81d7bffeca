package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/domain"
	"sales-dashboard/internal/repository"
)

const (
	unknownLabel        = "Unknown"
	recentWindow        = 7 * 24 * time.Hour
	districtLimit       = 20
	DefaultTopProducts  = 20
	dateLayout          = "2006-01-02"
	exportTimeLayout    = "2006-01-02 15:04"
	exportOrdersSheet   = "Orders"
	exportProductsSheet = "Products"
)

var ErrInvalidDateRange = errors.New("invalid date range")

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseDateRange accepts YYYY-MM-DD or RFC 3339 bounds, read as UTC. The end
// is extended to the last millisecond of its day.
func ParseDateRange(start, end string) (DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return DateRange{}, fmt.Errorf("%w: start and end dates are required", ErrInvalidDateRange)
	}

	from, err := parseDay(start)
	if err != nil {
		return DateRange{}, err
	}
	to, err := parseDay(end)
	if err != nil {
		return DateRange{}, err
	}

	y, m, d := to.Date()
	to = time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	if to.Before(from) {
		return DateRange{}, fmt.Errorf("%w: end date is before start date", ErrInvalidDateRange)
	}
	return DateRange{Start: from, End: to}, nil
}

func parseDay(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid date format %q", ErrInvalidDateRange, s)
}

type StatusShare struct {
	Status string  `json:"status"`
	Count  int64   `json:"count"`
	Total  float64 `json:"total"`
}

type SalesReport struct {
	TotalSales       float64       `json:"totalSales"`
	DeliveryFees     float64       `json:"deliveryFees"`
	OrderCount       int64         `json:"orderCount"`
	AvgOrderValue    float64       `json:"avgOrderValue"`
	RecentOrderCount int64         `json:"recentOrderCount"`
	OrdersByStatus   []StatusShare `json:"ordersByStatus"`
}

type RankedProduct struct {
	Rank          int    `json:"rank"`
	ProductName   string `json:"productName"`
	TotalQuantity int64  `json:"totalQuantity"`
}

type TopProductsReport struct {
	Products []RankedProduct `json:"products"`
}

type CityShare struct {
	City        string  `json:"city"`
	OrderCount  int64   `json:"orderCount"`
	TotalAmount float64 `json:"totalAmount"`
}

type DistrictShare struct {
	District    string  `json:"district"`
	OrderCount  int64   `json:"orderCount"`
	TotalAmount float64 `json:"totalAmount"`
}

type PaymentShare struct {
	PaymentMethod string  `json:"paymentMethod"`
	OrderCount    int64   `json:"orderCount"`
	TotalAmount   float64 `json:"totalAmount"`
}

type DistributionReport struct {
	ByCity          []CityShare     `json:"byCity"`
	ByDistrict      []DistrictShare `json:"byDistrict"`
	ByPaymentMethod []PaymentShare  `json:"byPaymentMethod"`
}

type OrdersSummary struct {
	TotalOrders       int     `json:"totalOrders"`
	TotalSales        float64 `json:"totalSales"`
	TotalDeliveryFees float64 `json:"totalDeliveryFees"`
	AvgOrderValue     float64 `json:"avgOrderValue"`
}

type OrdersByDateReport struct {
	Orders    []domain.Order `json:"orders"`
	Summary   OrdersSummary  `json:"summary"`
	DateRange DateRange      `json:"dateRange"`
}

type SoldItem struct {
	OrderCode   string    `json:"orderCode"`
	OrderDate   time.Time `json:"orderDate"`
	OrderStatus *string   `json:"orderStatus"`
	Customer    *string   `json:"customer"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	Price       *float64  `json:"price"`
	Categories  *string   `json:"categories"`
}

type ProductSales struct {
	Rank          int      `json:"rank"`
	ProductName   string   `json:"productName"`
	TotalQuantity int64    `json:"totalQuantity"`
	OrderCount    int64    `json:"orderCount"`
	Price         *float64 `json:"price"`
}

type ProductsByDateReport struct {
	Items          []SoldItem     `json:"items"`
	Summary        []ProductSales `json:"summary"`
	TotalItems     int            `json:"totalItems"`
	UniqueProducts int            `json:"uniqueProducts"`
}

type ReportService struct {
	reports  repository.ReportRepository
	orders   repository.OrderRepository
	products repository.ProductRepository
	now      func() time.Time
}

func NewReportService(r repository.ReportRepository, o repository.OrderRepository, p repository.ProductRepository) *ReportService {
	return &ReportService{reports: r, orders: o, products: p, now: time.Now}
}

func (s *ReportService) Sales(ctx context.Context) (*SalesReport, error) {
	var (
		totals repository.SalesTotals
		groups []repository.GroupRow
		recent int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = s.reports.SalesTotals(gctx)
		return err
	})
	g.Go(func() (err error) {
		groups, err = s.reports.GroupOrders(gctx, repository.GroupByStatus, 0)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.reports.CountSince(gctx, s.now().Add(-recentWindow))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byStatus := make([]StatusShare, 0, len(groups))
	for _, row := range groups {
		byStatus = append(byStatus, StatusShare{
			Status: labelOrUnknown(row.Label),
			Count:  row.OrderCount,
			Total:  row.TotalAmount,
		})
	}

	return &SalesReport{
		TotalSales:       totals.TotalSales,
		DeliveryFees:     totals.DeliveryFees,
		OrderCount:       totals.OrderCount,
		AvgOrderValue:    totals.AvgOrderValue,
		RecentOrderCount: recent,
		OrdersByStatus:   byStatus,
	}, nil
}

func (s *ReportService) TopProducts(ctx context.Context, limit int) (*TopProductsReport, error) {
	if limit <= 0 {
		limit = DefaultTopProducts
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	rows, err := s.reports.TopProducts(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]RankedProduct, 0, len(rows))
	for i, row := range rows {
		out = append(out, RankedProduct{
			Rank:          i + 1,
			ProductName:   row.ProductName,
			TotalQuantity: row.TotalQuantity,
		})
	}
	return &TopProductsReport{Products: out}, nil
}

func (s *ReportService) Distribution(ctx context.Context) (*DistributionReport, error) {
	var cities, districts, payments []repository.GroupRow

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cities, err = s.reports.GroupOrders(gctx, repository.GroupByCity, 0)
		return err
	})
	g.Go(func() (err error) {
		districts, err = s.reports.GroupOrders(gctx, repository.GroupByDistrict, districtLimit)
		return err
	})
	g.Go(func() (err error) {
		payments, err = s.reports.GroupOrders(gctx, repository.GroupByPaymentMethod, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &DistributionReport{
		ByCity:          make([]CityShare, 0, len(cities)),
		ByDistrict:      make([]DistrictShare, 0, len(districts)),
		ByPaymentMethod: make([]PaymentShare, 0, len(payments)),
	}
	for _, r := range cities {
		report.ByCity = append(report.ByCity, CityShare{City: labelOrUnknown(r.Label), OrderCount: r.OrderCount, TotalAmount: r.TotalAmount})
	}
	for _, r := range districts {
		report.ByDistrict = append(report.ByDistrict, DistrictShare{District: labelOrUnknown(r.Label), OrderCount: r.OrderCount, TotalAmount: r.TotalAmount})
	}
	for _, r := range payments {
		report.ByPaymentMethod = append(report.ByPaymentMethod, PaymentShare{PaymentMethod: labelOrUnknown(r.Label), OrderCount: r.OrderCount, TotalAmount: r.TotalAmount})
	}
	return report, nil
}

func (s *ReportService) OrdersByDate(ctx context.Context, rng DateRange) (*OrdersByDateReport, error) {
	orders, err := s.orders.FindBetween(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	sales, fees := decimal.Zero, decimal.Zero
	for _, o := range orders {
		sales = sales.Add(decimal.NewFromFloat(o.TotalAmount))
		fees = fees.Add(decimal.NewFromFloat(o.DeliveryFee))
	}
	avg := decimal.Zero
	if len(orders) > 0 {
		avg = sales.Div(decimal.NewFromInt(int64(len(orders))))
	}

	return &OrdersByDateReport{
		Orders: orders,
		Summary: OrdersSummary{
			TotalOrders:       len(orders),
			TotalSales:        sales.InexactFloat64(),
			TotalDeliveryFees: fees.InexactFloat64(),
			AvgOrderValue:     avg.InexactFloat64(),
		},
		DateRange: rng,
	}, nil
}

// ProductsByDate lists every sold item in the range. Items whose product link
// is missing are priced from a catalog product of the same name.
func (s *ReportService) ProductsByDate(ctx context.Context, rng DateRange) (*ProductsByDateReport, error) {
	orders, err := s.orders.FindBetween(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}

	var names []string
	seen := make(map[string]struct{})
	for _, o := range orders {
		for _, it := range o.Items {
			if _, ok := seen[it.ProductName]; !ok {
				seen[it.ProductName] = struct{}{}
				names = append(names, it.ProductName)
			}
		}
	}

	catalog := make(map[string]*domain.Product, len(names))
	if len(names) > 0 {
		found, err := s.products.FindByNames(ctx, names)
		if err != nil {
			return nil, err
		}
		for i := range found {
			catalog[found[i].Name] = &found[i]
		}
	}

	items := make([]SoldItem, 0)
	totals := make(map[string]*ProductSales, len(names))
	for _, o := range orders {
		for _, it := range o.Items {
			info := it.Product
			if info == nil {
				info = catalog[it.ProductName]
			}

			var categories *string
			if info != nil {
				categories = info.Categories
			}
			items = append(items, SoldItem{
				OrderCode:   o.Code,
				OrderDate:   o.CreatedAt,
				OrderStatus: o.Status,
				Customer:    o.Customer,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				Price:       info.EffectivePrice(),
				Categories:  categories,
			})

			ps, ok := totals[it.ProductName]
			if !ok {
				ps = &ProductSales{
					ProductName: it.ProductName,
					Price:       catalog[it.ProductName].EffectivePrice(),
				}
				totals[it.ProductName] = ps
			}
			ps.TotalQuantity += int64(it.Quantity)
			ps.OrderCount++
		}
	}

	summary := make([]ProductSales, 0, len(totals))
	for _, ps := range totals {
		summary = append(summary, *ps)
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].TotalQuantity != summary[j].TotalQuantity {
			return summary[i].TotalQuantity > summary[j].TotalQuantity
		}
		return summary[i].ProductName < summary[j].ProductName
	})
	for i := range summary {
		summary[i].Rank = i + 1
	}

	return &ProductsByDateReport{
		Items:          items,
		Summary:        summary,
		TotalItems:     len(items),
		UniqueProducts: len(summary),
	}, nil
}

// Export renders both date reports for rng as an xlsx workbook.
func (s *ReportService) Export(ctx context.Context, rng DateRange) ([]byte, error) {
	byOrder, err := s.OrdersByDate(ctx, rng)
	if err != nil {
		return nil, err
	}
	byProduct, err := s.ProductsByDate(ctx, rng)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), exportOrdersSheet); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if _, err := f.NewSheet(exportProductsSheet); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	orderRows := [][]any{{"Code", "Date", "Status", "Customer", "City", "Payment", "Delivery fee", "Total"}}
	for _, o := range byOrder.Orders {
		orderRows = append(orderRows, []any{
			o.Code,
			o.CreatedAt.UTC().Format(exportTimeLayout),
			strOrEmpty(o.Status),
			strOrEmpty(o.Customer),
			strOrEmpty(o.City),
			strOrEmpty(o.PaymentMethod),
			o.DeliveryFee,
			o.TotalAmount,
		})
	}
	orderRows = append(orderRows, []any{"Total", "", "", "", "", "", byOrder.Summary.TotalDeliveryFees, byOrder.Summary.TotalSales})

	productRows := [][]any{{"Rank", "Product", "Quantity", "Orders", "Price"}}
	for _, p := range byProduct.Summary {
		productRows = append(productRows, []any{p.Rank, p.ProductName, p.TotalQuantity, p.OrderCount, floatOrEmpty(p.Price)})
	}

	for sheetName, rows := range map[string][][]any{exportOrdersSheet: orderRows, exportProductsSheet: productRows} {
		if err := writeRows(f, sheetName, rows, header); err != nil {
			return nil, fmt.Errorf("export %s: %w", sheetName, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheetName string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheetName, "A1", last, headerStyle)
}

func labelOrUnknown(label *string) string {
	if label == nil || *label == "" {
		return unknownLabel
	}
	return *label
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(f *float64) any {
	if f == nil {
		return ""
	}
	return *f
}
