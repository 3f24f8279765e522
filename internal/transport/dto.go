package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SignUpRequest struct {
	Name       string `json:"name"        validate:"required,min=2,max=50"`
	Email      string `json:"email"       validate:"required,email"`
	Password   string `json:"password"    validate:"required,min=8,max=72"`
	RePassword string `json:"re_password" validate:"required,eqfield=Password"`
}

type SignInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	Password        string `json:"password"         validate:"required,min=8,max=72"`
}

type CreateUserRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
}

type PatchUserRequest struct {
	Name     *string `json:"name"      validate:"omitempty,min=2,max=50"`
	Email    *string `json:"email"     validate:"omitempty,email"`
	Role     *string `json:"role"      validate:"omitempty,oneof=user admin"`
	IsActive *bool   `json:"is_active"`
	Blocked  *bool   `json:"blocked"`
	Verified *bool   `json:"verified"`
}

type ProductRequest struct {
	Title              string           `json:"title"                validate:"required,min=2,max=200"`
	Description        string           `json:"description"          validate:"required,min=2"`
	Price              decimal.Decimal  `json:"price"`
	PriceAfterDiscount *decimal.Decimal `json:"price_after_discount"`
	Quantity           int              `json:"quantity"             validate:"gte=0"`
	ImgCover           string           `json:"img_cover"`
	CategoryID         *uuid.UUID       `json:"category_id"`
	SubcategoryID      *uuid.UUID       `json:"subcategory_id"`
	BrandID            *uuid.UUID       `json:"brand_id"`
}

type PatchProductRequest struct {
	Title              *string          `json:"title"                validate:"omitempty,min=2,max=200"`
	Description        *string          `json:"description"          validate:"omitempty,min=2"`
	Price              *decimal.Decimal `json:"price"`
	PriceAfterDiscount *decimal.Decimal `json:"price_after_discount"`
	Quantity           *int             `json:"quantity"             validate:"omitempty,gte=0"`
	ImgCover           *string          `json:"img_cover"`
	CategoryID         *uuid.UUID       `json:"category_id"`
	SubcategoryID      *uuid.UUID       `json:"subcategory_id"`
	BrandID            *uuid.UUID       `json:"brand_id"`
}

// NamedRequest is the body for categories, subcategories and brands.
type NamedRequest struct {
	Name       string    `json:"name"        validate:"required,min=2,max=100"`
	Image      string    `json:"image"`
	CategoryID uuid.UUID `json:"category_id"`
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"   validate:"omitempty,gte=1"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

type CouponRequest struct {
	Code     string          `json:"code"     validate:"required,min=2,max=64"`
	Discount decimal.Decimal `json:"discount"`
	Expires  time.Time       `json:"expires"  validate:"required"`
}

type PatchCouponRequest struct {
	Code     *string          `json:"code"     validate:"omitempty,min=2,max=64"`
	Discount *decimal.Decimal `json:"discount"`
	Expires  *time.Time       `json:"expires"`
}

type ReviewRequest struct {
	Text      string    `json:"text"       validate:"required,min=2"`
	Rating    int       `json:"rating"     validate:"required,gte=1,lte=5"`
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type PatchReviewRequest struct {
	Text   *string `json:"text"   validate:"omitempty,min=2"`
	Rating *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
}

type WishlistRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type AddressRequest struct {
	City   string `json:"city"   validate:"required"`
	Street string `json:"street" validate:"required"`
	Phone  string `json:"phone"  validate:"required"`
}

type ShippingAddress struct {
	Street string `json:"street" validate:"required"`
	City   string `json:"city"   validate:"required"`
	Phone  string `json:"phone"  validate:"required"`
}

type CreateOrderRequest struct {
	ShippingAddress ShippingAddress `json:"shipping_address" validate:"required"`
}
