package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	Base
	Name              string     `gorm:"not null"                    json:"name"`
	Email             string     `gorm:"uniqueIndex;not null"        json:"email"`
	PasswordHash      string     `gorm:"not null"                    json:"-"`
	PasswordChangedAt *time.Time `json:"password_changed_at,omitempty"`
	Role              string     `gorm:"not null;default:user"       json:"role"`
	IsActive          bool       `gorm:"not null;default:true"       json:"is_active"`
	Verified          bool       `gorm:"not null;default:false"      json:"verified"`
	Blocked           bool       `gorm:"not null;default:false"      json:"blocked"`
	Addresses         []Address  `gorm:"foreignKey:UserID"           json:"addresses,omitempty"`
}

type RefreshToken struct {
	Base
	Token     string    `gorm:"uniqueIndex;not null"  json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	JTI       string    `gorm:"uniqueIndex;not null"  json:"jti"`
	ExpiresAt int64     `gorm:"not null"              json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
}

type Address struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	City   string    `gorm:"not null"                 json:"city"`
	Street string    `gorm:"not null"                 json:"street"`
	Phone  string    `gorm:"not null"                 json:"phone"`
}

type WishlistItem struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}
