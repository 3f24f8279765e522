package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var secret = []byte("mw-secret")

const subject = "0b6f1f0e-8d5c-4a43-9f1e-1d3a8c7f6b21"

func token(t *testing.T, role string, iat, exp time.Time) string {
	t.Helper()
	tok, err := tokens.NewAccessToken(secret, subject, role, iat, exp)
	require.NoError(t, err)
	return tok
}

func serve(mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, echo.Context, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(func(c echo.Context) error {
		id, err := UserID(c)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, id.String()+" "+Role(c))
	})(c)
	return rec, c, err
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "got %v", err)
	return he.Code
}

func TestRequireAuth_Bearer(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil, nil)
	now := time.Now()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, RoleUser, now, now.Add(time.Minute)))
	rec, _, err := serve(m.RequireAuth, req)
	require.NoError(t, err)
	assert.Equal(t, subject+" user", rec.Body.String())

	_, _, err = serve(m.RequireAuth, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, RoleUser, now.Add(-time.Hour), now.Add(-time.Minute)))
	_, _, err = serve(m.RequireAuth, req)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err), "expired bearer tokens are never refreshed")
}

func TestRequireAdmin(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil, nil)
	now := time.Now()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, RoleUser, now, now.Add(time.Minute)))
	_, _, err := serve(m.RequireAdmin, req)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: tokens.AccessCookie, Value: token(t, RoleAdmin, now, now.Add(time.Minute))})
	rec, c, err := serve(m.RequireAdmin, req)
	require.NoError(t, err)
	assert.Equal(t, subject+" admin", rec.Body.String())
	assert.True(t, IsAdmin(c))
}

func TestSubjectCheck(t *testing.T) {
	denied := errors.New("gone")
	m := NewAutoRefreshMiddleware(secret, func(_ context.Context, claims *tokens.AccessClaims) error {
		if claims.Role == RoleUser {
			return denied
		}
		claims.Role = RoleAdmin
		return nil
	}, nil)
	now := time.Now()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, RoleUser, now, now.Add(time.Minute)))
	_, _, err := serve(m.RequireAuth, req)
	assert.ErrorIs(t, err, denied)

	// the checker may promote the role before the admin check runs
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, "support", now, now.Add(time.Minute)))
	_, _, err = serve(m.RequireAdmin, req)
	assert.NoError(t, err)
}

func TestExpiredCookieIsRefreshed(t *testing.T) {
	now := time.Now()
	var got string
	refresher := RefresherFunc(func(_ context.Context, rt string) (*RefreshResult, error) {
		got = rt
		if rt != "good-refresh" {
			return nil, errors.New("revoked")
		}
		return &RefreshResult{
			AccessToken:  token(t, RoleUser, now, now.Add(time.Minute)),
			RefreshToken: "next-refresh",
			AccessExp:    now.Add(time.Minute),
			RefreshExp:   now.Add(time.Hour),
		}, nil
	})
	m := NewAutoRefreshMiddleware(secret, nil, refresher)
	expired := token(t, RoleUser, now.Add(-time.Hour), now.Add(-time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: tokens.AccessCookie, Value: expired})
	req.AddCookie(&http.Cookie{Name: tokens.RefreshCookie, Value: "good-refresh"})
	rec, _, err := serve(m.RequireAuth, req)
	require.NoError(t, err)
	assert.Equal(t, "good-refresh", got)

	cookies := map[string]string{}
	for _, ck := range rec.Result().Cookies() {
		cookies[ck.Name] = ck.Value
	}
	assert.Equal(t, "next-refresh", cookies[tokens.RefreshCookie])
	assert.NotEmpty(t, cookies[tokens.AccessCookie])

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: tokens.AccessCookie, Value: expired})
	req.AddCookie(&http.Cookie{Name: tokens.RefreshCookie, Value: "stale"})
	_, _, err = serve(m.RequireAuth, req)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: tokens.AccessCookie, Value: expired})
	_, _, err = serve(m.RequireAuth, req)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestUserID_NoIdentity(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := UserID(c)
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.False(t, IsAdmin(c))
}
