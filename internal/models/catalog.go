package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	Base
	Name  string `gorm:"uniqueIndex;not null" json:"name"`
	Slug  string `gorm:"index;not null"       json:"slug"`
	Image string `json:"image,omitempty"`
}

type Subcategory struct {
	Base
	Name       string    `gorm:"uniqueIndex;not null"      json:"name"`
	Slug       string    `gorm:"index;not null"            json:"slug"`
	CategoryID uuid.UUID `gorm:"type:uuid;index;not null"  json:"category_id"`
}

type Brand struct {
	Base
	Name string `gorm:"uniqueIndex;not null" json:"name"`
	Slug string `gorm:"index;not null"       json:"slug"`
	Logo string `json:"logo,omitempty"`
}

type Product struct {
	Base
	Title              string              `gorm:"uniqueIndex;not null"        json:"title"`
	Slug               string              `gorm:"index;not null"              json:"slug"`
	Description        string              `gorm:"not null"                    json:"description"`
	Price              decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price"`
	PriceAfterDiscount decimal.NullDecimal `gorm:"type:numeric(12,2)"          json:"price_after_discount"`
	Quantity           int                 `gorm:"not null;default:0"          json:"quantity"`
	Sold               int                 `gorm:"not null;default:0"          json:"sold"`
	ImgCover           string              `json:"img_cover,omitempty"`
	CategoryID         *uuid.UUID          `gorm:"type:uuid;index"             json:"category_id,omitempty"`
	SubcategoryID      *uuid.UUID          `gorm:"type:uuid;index"             json:"subcategory_id,omitempty"`
	BrandID            *uuid.UUID          `gorm:"type:uuid;index"             json:"brand_id,omitempty"`
	RatingAvg          float64             `gorm:"not null;default:0"          json:"rating_avg"`
	RatingCount        int                 `gorm:"not null;default:0"          json:"rating_count"`
}
