package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const webhookSecret = "whsec_test"

func init() {
	hash.SetCost(bcrypt.MinCost)
}

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB

	AccessSecret []byte
	Deps         *httpserver.Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	r := &repo.GormRepo{DB: db}

	env := &testEnv{T: t, E: echo.New(), DB: db, AccessSecret: []byte("access-secret")}

	authSvc := &service.AuthService{
		Repo:          r,
		AccessSecret:  env.AccessSecret,
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	}
	orderSvc := &service.OrderService{
		Repo:           r,
		Gateway:        payment.NewStripe("sk_test_unused", webhookSecret),
		Events:         events.Nop{},
		DBTimeout:      5 * time.Second,
		GatewayTimeout: time.Second,
		Currency:       "usd",
	}

	env.Deps = &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		UserHandler:    &httpserver.UserHTTP{Svc: &service.UserService{Repo: r}},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: events.Nop{}}},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, DBTimeout: 5 * time.Second}},
		CouponHandler:  &httpserver.CouponHTTP{Svc: &service.CouponService{Repo: r}},
		ReviewHandler:  &httpserver.ReviewHTTP{Svc: &service.ReviewService{Repo: r}},
		ProfileHandler: &httpserver.ProfileHTTP{
			Wishlist:  &service.WishlistService{Repo: r},
			Addresses: &service.AddressService{Repo: r},
		},
		OrderHandler: &httpserver.OrderHTTP{Svc: orderSvc},
		Auth: middleware.NewAutoRefreshMiddleware(
			env.AccessSecret,
			authSvc.CheckSubject,
			middleware.RefresherFunc(authSvc.RefreshPair),
		),
	}

	env.E.Validator = httpserver.NewValidator()
	env.E.HTTPErrorHandler = httpserver.ErrorHandler(false)
	env.E.Use(httpserver.Common(logging.Discard(), "http://shop.test")...)
	httpserver.Register(env.E, env.Deps)
	return env
}

type reqOption func(*http.Request)

func withBearer(token string) reqOption {
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+token) }
}

func withCookie(ck *http.Cookie) reqOption {
	return func(r *http.Request) { r.AddCookie(ck) }
}

func withHeader(k, v string) reqOption {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

// doJSONRequest sends body as JSON (raw when it is a []byte) through the full router.
func (env *testEnv) doJSONRequest(method, path string, body any, opts ...reqOption) *httptest.ResponseRecorder {
	env.T.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case []byte:
		buf.Write(b)
	default:
		require.NoError(env.T, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// signUp registers a shopper through the API and returns its access token.
func (env *testEnv) signUp(email string) string {
	env.T.Helper()
	rec := env.doJSONRequest(http.MethodPost, httpserver.APIPrefix+"/auth/signup", map[string]string{
		"name":        "Shopper",
		"email":       email,
		"password":    "password1",
		"re_password": "password1",
	})
	require.Equal(env.T, http.StatusCreated, rec.Code, rec.Body.String())
	tok, _ := decode(env.T, rec)["token"].(string)
	require.NotEmpty(env.T, tok)
	return tok
}

// admin seeds an admin account and mints a token for it directly.
func (env *testEnv) admin() string {
	env.T.Helper()
	u := testutil.User(env.T, env.DB, "admin@example.com", models.RoleAdmin)
	now := time.Now()
	tok, err := tokens.NewAccessToken(env.AccessSecret, u.ID.String(), u.Role, now, now.Add(time.Minute))
	require.NoError(env.T, err)
	return tok
}

func (env *testEnv) countOrders() int64 {
	env.T.Helper()
	var n int64
	require.NoError(env.T, env.DB.WithContext(context.Background()).Model(&models.Order{}).Count(&n).Error)
	return n
}
