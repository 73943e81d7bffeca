package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sales-dashboard/internal/domain"
	"sales-dashboard/internal/infra/cache"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/sheet"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	imports   *services.ImportService
	catalog   *services.CatalogService
	reports   *services.ReportService
	cache     cache.ReportCacheInterface
	maxUpload int64
}

func NewHandler(i *services.ImportService, c *services.CatalogService, r *services.ReportService, rc cache.ReportCacheInterface, maxUploadBytes int64) *Handler {
	return &Handler{imports: i, catalog: c, reports: r, cache: rc, maxUpload: maxUploadBytes}
}

// RegisterRoutes mounts the API. auth guards every /api route when non-nil.
func (h *Handler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	if auth != nil {
		api.Use(auth)
	}

	api.POST("/upload", h.Upload)
	api.GET("/orders", h.ListOrders)
	api.GET("/products", h.ListProducts)
	api.GET("/import-history", h.ListImportHistory)
	api.DELETE("/import-history", h.DeleteImportHistory)

	report := api.Group("/report")
	report.GET("/sales", h.SalesReport)
	report.GET("/top-products", h.TopProductsReport)
	report.GET("/distribution", h.DistributionReport)
	report.POST("/by-date", h.OrdersByDate)
	report.POST("/products-by-date", h.ProductsByDate)
	report.GET("/export", h.Export)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No file uploaded"})
		return
	}
	if !sheet.AllowedExtension(fh.Filename) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "File must be an Excel file (.xlsx or .xls)"})
		return
	}
	if fh.Size == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Empty file"})
		return
	}
	if h.maxUpload > 0 && fh.Size > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: fmt.Sprintf("File exceeds %d bytes", h.maxUpload)})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.uploadFailed(c, fh.Filename, err)
		return
	}
	defer f.Close()

	s, err := sheet.Decode(fh.Filename, f)
	if err != nil {
		h.uploadFailed(c, fh.Filename, err)
		return
	}
	if len(s.Rows) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Empty file"})
		return
	}

	fileType := sheet.DetectFileType(s.Headers)
	if fileType == domain.FileTypeUnknown {
		expected := make(map[string][]string, len(sheet.ExpectedHeaders))
		for ft, labels := range sheet.ExpectedHeaders {
			expected[string(ft)] = labels
		}
		c.JSON(http.StatusBadRequest, UnknownFormatResponse{
			Error:           "Unknown file format. Please check column headers.",
			ExpectedHeaders: expected,
		})
		return
	}

	ctx := c.Request.Context()
	result, err := h.imports.Import(ctx, services.ImportRequest{
		FileName: fh.Filename,
		FileType: fileType,
		Rows:     s.Rows,
	})
	if err != nil {
		h.uploadFailed(c, fh.Filename, err)
		return
	}

	h.cache.Invalidate(context.WithoutCancel(ctx))
	c.JSON(http.StatusOK, result)
}

func (h *Handler) uploadFailed(c *gin.Context, file string, err error) {
	slog.Error("upload failed", "file", file, "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process file", Details: err.Error()})
}

func (h *Handler) ListOrders(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}

	page, err := h.catalog.ListOrders(c.Request.Context(), services.PageRequest{Page: q.Page, Limit: q.Limit}, q.Search)
	if err != nil {
		internalError(c, "Failed to fetch orders", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) ListProducts(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}

	page, err := h.catalog.ListProducts(c.Request.Context(), services.PageRequest{Page: q.Page, Limit: q.Limit}, q.Search, q.Category)
	if err != nil {
		internalError(c, "Failed to fetch products", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) ListImportHistory(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}

	page, err := h.catalog.ListImportHistory(c.Request.Context(), services.PageRequest{Page: q.Page, Limit: q.Limit}, domain.FileType(q.FileType))
	if err != nil {
		internalError(c, "Failed to fetch import history", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// DeleteImportHistory removes one entry when ?id= is given, otherwise all of
// them.
func (h *Handler) DeleteImportHistory(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := c.Query("id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid id"})
			return
		}
		found, err := h.catalog.DeleteImportHistory(ctx, id)
		if err != nil {
			internalError(c, "Failed to delete import history", err)
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Import history not found"})
			return
		}
		c.JSON(http.StatusOK, MessageResponse{Message: "Import history deleted", Deleted: 1})
		return
	}

	n, err := h.catalog.ClearImportHistory(ctx)
	if err != nil {
		internalError(c, "Failed to delete import history", err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "All import history deleted", Deleted: n})
}

func (h *Handler) SalesReport(c *gin.Context) {
	serveCached(c, h.cache, "sales", "Failed to generate sales report", h.reports.Sales)
}

func (h *Handler) TopProductsReport(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 {
		limit = services.DefaultTopProducts
	}
	serveCached(c, h.cache, "top-products:"+strconv.Itoa(limit), "Failed to generate top products report",
		func(ctx context.Context) (*services.TopProductsReport, error) {
			return h.reports.TopProducts(ctx, limit)
		})
}

func (h *Handler) DistributionReport(c *gin.Context) {
	serveCached(c, h.cache, "distribution", "Failed to generate distribution report", h.reports.Distribution)
}

func (h *Handler) OrdersByDate(c *gin.Context) {
	rng, ok := bindDateRange(c, c.ShouldBindJSON)
	if !ok {
		return
	}
	report, err := h.reports.OrdersByDate(c.Request.Context(), rng)
	if err != nil {
		internalError(c, "Failed to fetch orders", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) ProductsByDate(c *gin.Context) {
	rng, ok := bindDateRange(c, c.ShouldBindJSON)
	if !ok {
		return
	}
	report, err := h.reports.ProductsByDate(c.Request.Context(), rng)
	if err != nil {
		internalError(c, "Failed to generate products report", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) Export(c *gin.Context) {
	rng, ok := bindDateRange(c, c.ShouldBindQuery)
	if !ok {
		return
	}
	data, err := h.reports.Export(c.Request.Context(), rng)
	if err != nil {
		internalError(c, "Failed to export report", err)
		return
	}

	name := fmt.Sprintf("sales-report-%s-%s.xlsx", rng.Start.Format("20060102"), rng.End.Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func bindListQuery(c *gin.Context) (ListQuery, bool) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query: " + err.Error()})
		return ListQuery{}, false
	}
	return q, true
}

func bindDateRange(c *gin.Context, bind func(any) error) (services.DateRange, bool) {
	var req DateRangeRequest
	if err := bind(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return services.DateRange{}, false
	}
	rng, err := services.ParseDateRange(req.Start, req.End)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDateRange) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else {
			internalError(c, "Failed to parse date range", err)
		}
		return services.DateRange{}, false
	}
	return rng, true
}

// serveCached answers from the report cache when it can and fills it after a
// fresh load.
func serveCached[T any](c *gin.Context, rc cache.ReportCacheInterface, key, failMsg string, load func(context.Context) (*T, error)) {
	ctx := c.Request.Context()

	var hit T
	if rc.Get(ctx, key, &hit) {
		c.JSON(http.StatusOK, hit)
		return
	}

	report, err := load(ctx)
	if err != nil {
		internalError(c, failMsg, err)
		return
	}
	rc.Set(ctx, key, report)
	c.JSON(http.StatusOK, report)
}

func internalError(c *gin.Context, msg string, err error) {
	slog.Error(msg, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msg})
}
