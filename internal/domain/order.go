package domain

import "time"

type Order struct {
	ID            uint64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Code          string      `json:"code" gorm:"size:191;not null;uniqueIndex"`
	Status        *string     `json:"status"`
	PaymentMethod *string     `json:"paymentMethod"`
	Customer      *string     `json:"customer" gorm:"index"`
	Phone         *string     `json:"phone"`
	Email         *string     `json:"email"`
	City          *string     `json:"city"`
	District      *string     `json:"district"`
	Khoroo        *string     `json:"khoroo"`
	AddressDetail *string     `json:"addressDetail" gorm:"type:text"`
	DeliveryFee   float64     `json:"deliveryFee" gorm:"not null;default:0"`
	TotalAmount   float64     `json:"totalAmount" gorm:"not null;default:0"`
	CouponCode    *string     `json:"couponCode"`
	CouponPercent float64     `json:"couponPercent" gorm:"not null;default:0"`
	Note          *string     `json:"note" gorm:"type:text"`
	ProductsRaw   *string     `json:"productsRaw" gorm:"type:text"`
	CreatedAt     time.Time   `json:"createdAt" gorm:"autoCreateTime;index"`
	Items         []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is written once together with its order. ProductID is resolved by
// name at import time and is not kept in sync afterwards.
type OrderItem struct {
	ID          uint64   `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID     uint64   `json:"orderId" gorm:"not null;index"`
	ProductID   *uint64  `json:"productId" gorm:"index"`
	Product     *Product `json:"product,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL"`
	ProductName string   `json:"productName" gorm:"size:191;not null;index"`
	Quantity    int      `json:"quantity" gorm:"not null;default:1"`
}
