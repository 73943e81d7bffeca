package domain

import "time"

// Product is keyed by Name. Nil numeric fields mean "unknown": a nil Stock is
// not the same as an out-of-stock zero.
type Product struct {
	ID         uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name       string    `json:"name" gorm:"size:191;not null;uniqueIndex"`
	Price      *float64  `json:"price"`
	SalePrice  *float64  `json:"salePrice"`
	Categories *string   `json:"categories" gorm:"type:text"`
	Stock      *int      `json:"stock"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// EffectivePrice is the sale price when set, otherwise the list price.
func (p *Product) EffectivePrice() *float64 {
	if p == nil {
		return nil
	}
	if p.SalePrice != nil && *p.SalePrice != 0 {
		return p.SalePrice
	}
	if p.Price != nil && *p.Price != 0 {
		return p.Price
	}
	return nil
}
