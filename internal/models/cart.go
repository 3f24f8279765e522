package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cart struct {
	Base
	UserID                  uuid.UUID           `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Items                   []CartItem          `gorm:"foreignKey:CartID"              json:"items"`
	TotalPrice              decimal.Decimal     `gorm:"type:numeric(12,2);not null"    json:"total_price"`
	TotalPriceAfterDiscount decimal.NullDecimal `gorm:"type:numeric(12,2)"             json:"total_price_after_discount"`
	Discount                decimal.NullDecimal `gorm:"type:numeric(5,2)"              json:"discount"`
	Version                 int64               `gorm:"not null;default:0"             json:"version"`
}

type CartItem struct {
	Base
	CartID               uuid.UUID           `gorm:"type:uuid;index;not null"    json:"cart_id"`
	ProductID            uuid.UUID           `gorm:"type:uuid;not null"          json:"product_id"`
	Product              *Product            `gorm:"foreignKey:ProductID"        json:"product,omitempty"`
	Quantity             int                 `gorm:"not null;default:1"          json:"quantity"`
	Price                decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price"`
	TotalProductDiscount decimal.NullDecimal `gorm:"type:numeric(12,2)"          json:"total_product_discount"`
}

type Coupon struct {
	Base
	Code     string          `gorm:"uniqueIndex;not null"       json:"code"`
	Discount decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"discount"`
	Expires  time.Time       `gorm:"not null"                   json:"expires"`
}

// ValidAt reports whether the coupon expires strictly after now.
func (c *Coupon) ValidAt(now time.Time) bool {
	return c.Expires.After(now)
}
