package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index"                json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All lists every table for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &RefreshToken{}, &Address{}, &WishlistItem{},
		&Category{}, &Subcategory{}, &Brand{}, &Product{},
		&Cart{}, &CartItem{}, &Coupon{},
		&Order{}, &OrderItem{},
		&Review{},
	}
}
