package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

const (
	APIPrefix   = "/api/v1"
	webhookPath = APIPrefix + "/orders/webhook"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	UserHandler    *UserHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	CouponHandler  *CouponHTTP
	ReviewHandler  *ReviewHTTP
	ProfileHandler *ProfileHTTP
	OrderHandler   *OrderHTTP

	Auth *middleware.AutoRefreshMiddleware

	// CSRF is nil when the double-submit check is disabled.
	CSRF *csrf.Config
	// Ready reports whether the backing stores answer; nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, errorBody{Message: "not ready"})
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group(APIPrefix)
	if d.CSRF != nil {
		cfg := *d.CSRF
		api.Use(csrf.Middleware(cfg.WithSkipper(func(c echo.Context) bool {
			return c.Path() == webhookPath || csrf.BearerSkipper(c)
		})))
	}

	authed := d.Auth.RequireAuth
	admin := d.Auth.RequireAdmin

	auth := api.Group("/auth")
	auth.POST("/signup", d.AuthHandler.SignUp)
	auth.POST("/signin", d.AuthHandler.SignIn)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.LogOut)

	users := api.Group("/users")
	users.PATCH("/change-password", d.AuthHandler.ChangePassword, authed)
	users.GET("", d.UserHandler.List, admin)
	users.POST("", d.UserHandler.Create, admin)
	users.GET("/:id", d.UserHandler.Get, admin)
	users.PATCH("/:id", d.UserHandler.Update, admin)
	users.DELETE("/:id", d.UserHandler.Delete, admin)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("", d.CatalogHandler.CreateProduct, admin)
	products.PATCH("/:id", d.CatalogHandler.PatchProduct, admin)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, admin)

	categories := api.Group("/categories")
	categories.GET("", d.CatalogHandler.ListCategories)
	categories.GET("/:id", d.CatalogHandler.GetCategory)
	categories.POST("", d.CatalogHandler.CreateCategory, admin)
	categories.PATCH("/:id", d.CatalogHandler.UpdateCategory, admin)
	categories.DELETE("/:id", d.CatalogHandler.DeleteCategory, admin)
	categories.GET("/:categoryId/subcategories", d.CatalogHandler.ListSubcategories)
	categories.POST("/:categoryId/subcategories", d.CatalogHandler.CreateSubcategory, admin)

	subcategories := api.Group("/subcategories")
	subcategories.GET("", d.CatalogHandler.ListSubcategories)
	subcategories.GET("/:id", d.CatalogHandler.GetSubcategory)
	subcategories.POST("", d.CatalogHandler.CreateSubcategory, admin)
	subcategories.PATCH("/:id", d.CatalogHandler.UpdateSubcategory, admin)
	subcategories.DELETE("/:id", d.CatalogHandler.DeleteSubcategory, admin)

	brands := api.Group("/brands")
	brands.GET("", d.CatalogHandler.ListBrands)
	brands.GET("/:id", d.CatalogHandler.GetBrand)
	brands.POST("", d.CatalogHandler.CreateBrand, admin)
	brands.PATCH("/:id", d.CatalogHandler.UpdateBrand, admin)
	brands.DELETE("/:id", d.CatalogHandler.DeleteBrand, admin)

	cart := api.Group("/cart", authed)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.POST("/apply-coupon", d.CartHandler.ApplyCoupon)
	cart.PATCH("/:productId", d.CartHandler.UpdateQuantity)
	cart.DELETE("/:itemId", d.CartHandler.RemoveItem)

	coupons := api.Group("/coupons", admin)
	coupons.GET("", d.CouponHandler.List)
	coupons.GET("/:id", d.CouponHandler.Get)
	coupons.POST("", d.CouponHandler.Create)
	coupons.PATCH("/:id", d.CouponHandler.Update)
	coupons.DELETE("/:id", d.CouponHandler.Delete)

	reviews := api.Group("/reviews")
	reviews.GET("", d.ReviewHandler.List)
	reviews.GET("/:id", d.ReviewHandler.Get)
	reviews.POST("", d.ReviewHandler.Create, authed)
	reviews.PATCH("/:id", d.ReviewHandler.Update, authed)
	reviews.DELETE("/:id", d.ReviewHandler.Delete, authed)

	wishlist := api.Group("/wishlist", authed)
	wishlist.GET("", d.ProfileHandler.GetWishlist)
	wishlist.PATCH("", d.ProfileHandler.AddToWishlist)
	wishlist.DELETE("/:productId", d.ProfileHandler.RemoveFromWishlist)

	addresses := api.Group("/addresses", authed)
	addresses.GET("", d.ProfileHandler.GetAddresses)
	addresses.PATCH("", d.ProfileHandler.AddAddress)
	addresses.DELETE("/:id", d.ProfileHandler.RemoveAddress)

	orders := api.Group("/orders")
	orders.POST("/webhook", d.OrderHandler.Webhook)
	orders.POST("/cash/:cartId", d.OrderHandler.CreateCashOrder, authed)
	orders.POST("/checkout-session/:cartId", d.OrderHandler.CreateCheckoutSession, authed)
	orders.GET("/mine", d.OrderHandler.ListMine, authed)
	orders.GET("", d.OrderHandler.ListAll, admin)
	orders.GET("/:id", d.OrderHandler.Get, authed)
	orders.PATCH("/:id/pay", d.OrderHandler.MarkPaid, admin)
	orders.PATCH("/:id/deliver", d.OrderHandler.MarkDelivered, admin)
	orders.GET("/:id/payment-events", d.OrderHandler.PaymentEvents, admin)
}
