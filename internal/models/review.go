package models

import "github.com/google/uuid"

type Review struct {
	Base
	Text      string    `gorm:"not null"                                          json:"text"`
	Rating    int       `gorm:"not null"                                          json:"rating"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_user_product" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_user_product" json:"product_id"`
	User      *User     `gorm:"foreignKey:UserID"                                 json:"user,omitempty"`
}
