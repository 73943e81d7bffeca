package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"sales-dashboard/internal/convert"
	"sales-dashboard/internal/domain"
	rabbit "sales-dashboard/internal/infra/rabbitmq"
	"sales-dashboard/internal/orderitems"
	"sales-dashboard/internal/repository"
	"sales-dashboard/internal/sheet"
)

const EventImportCompleted = "import.completed"

var ErrUnknownFileType = errors.New("unknown file type")

type ImportRequest struct {
	FileName string
	FileType domain.FileType
	Rows     []sheet.Row
}

// ImportService reconciles decoded spreadsheet rows with the store. Rows are
// processed one at a time in file order and a failing row never aborts the
// batch.
type ImportService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	history   repository.ImportHistoryRepository
	publisher rabbit.PublisherInterface

	pending sync.WaitGroup
}

func NewImportService(o repository.OrderRepository, p repository.ProductRepository, h repository.ImportHistoryRepository, pub rabbit.PublisherInterface) *ImportService {
	return &ImportService{
		orders:    o,
		products:  p,
		history:   h,
		publisher: pub,
	}
}

// batch is the state of one Import call. seen holds the natural keys already
// handled in this file.
type batch struct {
	result     *domain.ImportResult
	seen       map[string]struct{}
	errorCount int
}

func newBatch(ft domain.FileType, total int) *batch {
	return &batch{
		result: &domain.ImportResult{Type: ft, Total: total},
		seen:   make(map[string]struct{}, total),
	}
}

// markSeen reports whether key was new to the batch.
func (b *batch) markSeen(key string) bool {
	if _, dup := b.seen[key]; dup {
		return false
	}
	b.seen[key] = struct{}{}
	return true
}

func (b *batch) addError(msg string) {
	b.errorCount++
	if len(b.result.Errors) < domain.MaxReportedErrors {
		b.result.Errors = append(b.result.Errors, msg)
	}
}

func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*domain.ImportResult, error) {
	// An import that has started runs to completion even if the client goes away.
	ctx = context.WithoutCancel(ctx)
	started := time.Now()

	b := newBatch(req.FileType, len(req.Rows))
	switch req.FileType {
	case domain.FileTypeOrders:
		s.importOrders(ctx, req.Rows, b)
	case domain.FileTypeProducts:
		s.importProducts(ctx, req.Rows, b)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFileType, req.FileType)
	}

	res := b.result
	slog.Info("import finished",
		"file", req.FileName,
		"type", req.FileType,
		"total", res.Total,
		"imported", res.Imported,
		"skipped", res.Skipped,
		"duplicatesInFile", res.DuplicatesInFile,
		"errors", b.errorCount,
		"took", time.Since(started),
	)

	s.record(ctx, req.FileName, b)
	return res, nil
}

func (s *ImportService) importOrders(ctx context.Context, rows []sheet.Row, b *batch) {
	res := b.result
	res.Message = "Orders uploaded successfully"
	dupInDB := 0
	res.DuplicatesInDB = &dupInDB

	for _, row := range rows {
		code := convert.StringOrNull(row[sheet.ColOrderCode])
		if code == nil {
			res.Skipped++
			continue
		}

		if !b.markSeen(*code) {
			res.DuplicatesInFile++
			b.addError(fmt.Sprintf("Давхардсан код файл дотор: %s", *code))
			continue
		}

		existing, err := s.orders.FindByCode(ctx, *code)
		if err != nil {
			s.orderFailed(b, *code, err)
			continue
		}
		if existing != nil {
			dupInDB++
			continue
		}

		if err := s.createOrder(ctx, *code, row); err != nil {
			s.orderFailed(b, *code, err)
			continue
		}
		res.Imported++
	}
}

func (s *ImportService) createOrder(ctx context.Context, code string, row sheet.Row) error {
	order := &domain.Order{
		Code:          code,
		Status:        convert.StringOrNull(row[sheet.ColOrderStatus]),
		PaymentMethod: convert.StringOrNull(row[sheet.ColOrderPayment]),
		Customer:      convert.StringOrNull(row[sheet.ColOrderCustomer]),
		Phone:         convert.StringOrNull(row[sheet.ColOrderPhone]),
		AddressDetail: convert.StringOrNull(row[sheet.ColOrderAddressDetail]),
		Email:         convert.StringOrNull(row[sheet.ColOrderEmail]),
		City:          convert.StringOrNull(row[sheet.ColOrderCity]),
		District:      convert.StringOrNull(row[sheet.ColOrderDistrict]),
		Khoroo:        convert.StringOrNull(row[sheet.ColOrderKhoroo]),
		DeliveryFee:   orZero(convert.Float(row[sheet.ColOrderDeliveryFee])),
		TotalAmount:   orZero(convert.Float(row[sheet.ColOrderTotalAmount])),
		CouponCode:    convert.StringOrNull(row[sheet.ColOrderCouponCode]),
		CouponPercent: orZero(convert.Float(row[sheet.ColOrderCouponPercent])),
		Note:          convert.StringOrNull(row[sheet.ColOrderNote]),
		ProductsRaw:   convert.StringOrNull(row[sheet.ColOrderProducts]),
		CreatedAt:     convert.Date(row[sheet.ColOrderDate]).UTC(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return err
	}

	var raw string
	if order.ProductsRaw != nil {
		raw = *order.ProductsRaw
	}
	for _, it := range orderitems.Parse(raw) {
		product, err := s.products.FindByName(ctx, it.Name)
		if err != nil {
			return err
		}

		item := &domain.OrderItem{
			OrderID:     order.ID,
			ProductName: it.Name,
			Quantity:    it.Quantity,
		}
		if product != nil {
			item.ProductID = &product.ID
		}
		if err := s.orders.CreateItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *ImportService) orderFailed(b *batch, code string, err error) {
	slog.Warn("order row failed", "code", code, "error", err)
	b.addError(fmt.Sprintf("Row with code %s: %v", code, err))
	b.result.Skipped++
}

func (s *ImportService) importProducts(ctx context.Context, rows []sheet.Row, b *batch) {
	res := b.result
	res.Message = "Products uploaded successfully"
	updated := 0
	res.Updated = &updated

	for _, row := range rows {
		name := convert.StringOrNull(row[sheet.ColProductName])
		if name == nil {
			res.Skipped++
			continue
		}

		if !b.markSeen(*name) {
			res.DuplicatesInFile++
			b.addError(fmt.Sprintf("Давхардсан нэр файл дотор: %s", *name))
			continue
		}

		created, err := s.upsertProduct(ctx, *name, row)
		if err != nil {
			slog.Warn("product row failed", "name", *name, "error", err)
			b.addError(fmt.Sprintf("Product %s: %v", *name, err))
			res.Skipped++
			continue
		}
		if created {
			res.Imported++
		} else {
			updated++
		}
	}
}

// upsertProduct overwrites the catalog fields of an existing product,
// including with nil, or creates a new one.
func (s *ImportService) upsertProduct(ctx context.Context, name string, row sheet.Row) (created bool, err error) {
	existing, err := s.products.FindByName(ctx, name)
	if err != nil {
		return false, err
	}

	p := existing
	if p == nil {
		p = &domain.Product{Name: name}
	}
	p.Price = convert.Float(row[sheet.ColProductPrice])
	p.SalePrice = convert.Float(row[sheet.ColProductSalePrice])
	p.Categories = convert.StringOrNull(row[sheet.ColProductCategories])
	p.Stock = convert.Int(row[sheet.ColProductStock])

	if existing != nil {
		return false, s.products.Update(ctx, p)
	}
	return true, s.products.Create(ctx, p)
}

// record stores the import history entry and announces the import. Neither
// affects the summary already computed.
func (s *ImportService) record(ctx context.Context, fileName string, b *batch) {
	res := b.result
	h := &domain.ImportHistory{
		BatchID:          uuid.NewString(),
		FileName:         fileName,
		FileType:         res.Type,
		Imported:         res.Imported,
		Updated:          deref(res.Updated),
		Skipped:          res.Skipped,
		DuplicatesInFile: res.DuplicatesInFile,
		DuplicatesInDB:   deref(res.DuplicatesInDB),
		Total:            res.Total,
		ErrorCount:       b.errorCount,
	}
	if err := s.history.Save(ctx, h); err != nil {
		slog.Error("failed to save import history", "batch", h.BatchID, "error", err)
	}

	evt := domain.ImportCompletedEvent{
		BatchID:          h.BatchID,
		FileName:         h.FileName,
		FileType:         h.FileType,
		Imported:         h.Imported,
		Updated:          h.Updated,
		Skipped:          h.Skipped,
		DuplicatesInFile: h.DuplicatesInFile,
		DuplicatesInDB:   h.DuplicatesInDB,
		Total:            h.Total,
		CompletedAt:      time.Now().UTC(),
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.publishImportCompleted(context.Background(), evt)
	}()
}

func (s *ImportService) publishImportCompleted(ctx context.Context, evt domain.ImportCompletedEvent) {
	if err := s.publisher.Publish(ctx, EventImportCompleted, evt); err != nil {
		slog.Error("failed to publish import event", "batch", evt.BatchID, "error", err)
		return
	}
	slog.Debug("published import event", "batch", evt.BatchID)
}

// Drain waits for in-flight event publications.
func (s *ImportService) Drain() {
	s.pending.Wait()
}

func orZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func deref(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
