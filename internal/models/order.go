package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

type Shipping struct {
	Street string `json:"street"`
	City   string `json:"city"`
	Phone  string `json:"phone"`
}

func (s Shipping) Metadata() map[string]string {
	return map[string]string{"street": s.Street, "city": s.City, "phone": s.Phone}
}

func ShippingFromMetadata(m map[string]string) Shipping {
	return Shipping{Street: m["street"], City: m["city"], Phone: m["phone"]}
}

// Order items and total are written once, when the order is created.
type Order struct {
	Base
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null"                    json:"user_id"`
	User            *User           `gorm:"foreignKey:UserID"                           json:"user,omitempty"`
	CartID          uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"              json:"cart_id"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID"                          json:"items"`
	TotalOrderPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"                 json:"total_order_price"`
	Shipping        Shipping        `gorm:"embedded;embeddedPrefix:shipping_"           json:"shipping_address"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(8);not null;default:cash"       json:"payment_method"`
	IsPaid          bool            `gorm:"not null;default:false"                      json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	IsDelivered     bool            `gorm:"not null;default:false"                      json:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	SessionID       string          `gorm:"index"                                       json:"session_id,omitempty"`
}

type OrderItem struct {
	Base
	OrderID              uuid.UUID           `gorm:"type:uuid;index;not null"    json:"order_id"`
	ProductID            uuid.UUID           `gorm:"type:uuid;not null"          json:"product_id"`
	Product              *Product            `gorm:"foreignKey:ProductID"        json:"product,omitempty"`
	Quantity             int                 `gorm:"not null"                    json:"quantity"`
	Price                decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price"`
	TotalProductDiscount decimal.NullDecimal `gorm:"type:numeric(12,2)"          json:"total_product_discount"`
}
