package sheet

import "sales-dashboard/internal/domain"

// Order sheet columns.
const (
	ColOrderCode          = "Код"
	ColOrderProducts      = "Бараанууд"
	ColOrderStatus        = "Төлөв"
	ColOrderPayment       = "Т.Х"
	ColOrderCustomer      = "Харилцагч"
	ColOrderPhone         = "Утас"
	ColOrderAddressDetail = "Дэлгэрэнгүй хаяг"
	ColOrderEmail         = "И-мэйл"
	ColOrderCity          = "Хот/аймаг"
	ColOrderDistrict      = "Сум/дүүрэг"
	ColOrderKhoroo        = "Хороо/баг"
	ColOrderDeliveryFee   = "Хүргэлтийн үнэ"
	ColOrderTotalAmount   = "Нийт дүн"
	ColOrderCouponCode    = "Купон код"
	ColOrderCouponPercent = "Купон хувь"
	ColOrderNote          = "Нэмэлт тайлбар"
	ColOrderDate          = "Огноо"
)

// Product sheet columns.
const (
	ColProductName       = "Нэр"
	ColProductCategories = "Ангилалууд"
	ColProductPrice      = "Үнэ"
	ColProductSalePrice  = "Хямдралтай үнэ"
	ColProductStock      = "Үлдэглэл"
)

// ExpectedHeaders is shown to the uploader when a sheet cannot be classified.
var ExpectedHeaders = map[domain.FileType][]string{
	domain.FileTypeOrders:   {ColOrderCode, ColOrderProducts, ColOrderStatus, ColOrderPayment, ColOrderCustomer, "..."},
	domain.FileTypeProducts: {ColProductName, ColProductCategories, ColProductPrice, "..."},
}

// DetectFileType classifies a sheet by exact, case-sensitive header labels.
// Orders win when both label pairs are present.
func DetectFileType(headers []string) domain.FileType {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		set[h] = struct{}{}
	}
	has := func(label string) bool {
		_, ok := set[label]
		return ok
	}

	switch {
	case has(ColOrderCode) && has(ColOrderProducts):
		return domain.FileTypeOrders
	case has(ColProductName) && has(ColProductCategories):
		return domain.FileTypeProducts
	default:
		return domain.FileTypeUnknown
	}
}
