package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(cfg Config, req *http.Request) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	err := Middleware(cfg)(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})(e.NewContext(req, rec))
	return rec, err
}

func code(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "got %v", err)
	return he.Code
}

func TestSafeMethodIssuesToken(t *testing.T) {
	rec, err := run(DefaultConfig(), httptest.NewRequest(http.MethodGet, "http://shop.test/", nil))
	require.NoError(t, err)

	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "XSRF-TOKEN", cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)
	assert.False(t, cookies[0].HttpOnly)
}

func TestUnsafeMethod(t *testing.T) {
	newReq := func(header string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "http://shop.test/api/v1/cart", nil)
		req.Header.Set("Origin", "http://shop.test")
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
		if header != "" {
			req.Header.Set("X-CSRF-Token", header)
		}
		return req
	}

	_, err := run(DefaultConfig(), newReq("tok"))
	assert.NoError(t, err)

	_, err = run(DefaultConfig(), newReq(""))
	assert.Equal(t, http.StatusForbidden, code(t, err))

	_, err = run(DefaultConfig(), newReq("other"))
	assert.Equal(t, http.StatusForbidden, code(t, err))

	req := newReq("tok")
	req.Header.Set("Origin", "http://evil.test")
	_, err = run(DefaultConfig(), req)
	assert.Equal(t, http.StatusForbidden, code(t, err))
}

func TestSkippers(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://shop.test/api/v1/cart", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
	_, err := run(DefaultConfig(), req)
	assert.NoError(t, err)

	cfg := DefaultConfig().WithSkipper(func(c echo.Context) bool {
		return c.Request().URL.Path == "/hook"
	})
	_, err = run(cfg, httptest.NewRequest(http.MethodPost, "http://shop.test/hook", nil))
	assert.NoError(t, err)

	// replacing the skipper drops the bearer exemption
	_, err = run(cfg, req)
	assert.Equal(t, http.StatusForbidden, code(t, err))
}
